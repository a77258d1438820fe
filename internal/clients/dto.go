package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgpagination "github.com/overnite/manifest-backend/pkg/pagination"
)

// ClientDTO is the transport shape that omits credentials.
type ClientDTO struct {
	ID             uuid.UUID        `json:"id"`
	CompanyName    string           `json:"company_name"`
	Email          string           `json:"email"`
	Role           enums.ClientRole `json:"role"`
	ShippingPlanID *uuid.UUID       `json:"shipping_plan_id"`
	ShippingPlan   string           `json:"shipping_plan,omitempty"`
	IsActive       bool             `json:"is_active"`
	LastLoginAt    *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func FromModel(c *models.Client) *ClientDTO {
	if c == nil {
		return nil
	}
	dto := &ClientDTO{
		ID:             c.ID,
		CompanyName:    c.CompanyName,
		Email:          c.Email,
		Role:           c.Role,
		ShippingPlanID: c.ShippingPlanID,
		IsActive:       c.IsActive,
		LastLoginAt:    c.LastLoginAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.ShippingPlan != nil {
		dto.ShippingPlan = c.ShippingPlan.Name
	}
	return dto
}

// CreateInput carries the fields an admin supplies for a new client.
type CreateInput struct {
	CompanyName    string
	Email          string
	Password       string
	Role           enums.ClientRole
	ShippingPlanID *uuid.UUID
}

// CreateResult returns the created client and, when no password was given,
// the generated one. It is shown once and never stored in clear.
type CreateResult struct {
	Client            *ClientDTO `json:"client"`
	TemporaryPassword string     `json:"temporary_password,omitempty"`
}

// UpdateInput holds optional changes; nil fields are left untouched.
type UpdateInput struct {
	CompanyName       *string
	Email             *string
	Password          *string
	Role              *enums.ClientRole
	ShippingPlanID    *uuid.UUID
	ClearShippingPlan bool
	IsActive          *bool
}

type ListParams struct {
	Role   *enums.ClientRole
	Search string
	pkgpagination.Params
}

type ListResult struct {
	Items  []ClientDTO `json:"items"`
	Cursor string      `json:"cursor"`
}

type listQuery struct {
	role   *enums.ClientRole
	search string
	limit  int
	cursor *pkgpagination.Cursor
}
