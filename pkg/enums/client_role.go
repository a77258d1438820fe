package enums

import "fmt"

// ClientRole represents the client_role enum in Postgres.
type ClientRole string

const (
	ClientRoleSuperAdmin ClientRole = "superadmin"
	ClientRoleAdmin      ClientRole = "admin"
	ClientRoleClient     ClientRole = "client"
)

var validClientRoles = []ClientRole{
	ClientRoleSuperAdmin,
	ClientRoleAdmin,
	ClientRoleClient,
}

// String implements fmt.Stringer.
func (r ClientRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ClientRole.
func (r ClientRole) IsValid() bool {
	for _, candidate := range validClientRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may operate on other clients' data.
func (r ClientRole) IsStaff() bool {
	return r == ClientRoleAdmin || r == ClientRoleSuperAdmin
}

// ParseClientRole converts raw input into a ClientRole.
func ParseClientRole(value string) (ClientRole, error) {
	for _, candidate := range validClientRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client role %q", value)
}
