package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ClientID uuid.UUID
	Role     enums.ClientRole
	// JTI doubles as the refresh session key; a random one is used when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	ClientID uuid.UUID        `json:"client_id"`
	Role     enums.ClientRole `json:"role"`
	jwt.RegisteredClaims
}
