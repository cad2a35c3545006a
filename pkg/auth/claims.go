package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	StoreID  uuid.UUID
	Role     enums.MemberRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by POS clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID        `json:"user_id"`
	TenantID uuid.UUID        `json:"tenant_id"`
	StoreID  uuid.UUID        `json:"store_id"`
	Role     enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts validated claims into the acting context core services expect.
func (c *AccessTokenClaims) Actor() actor.Actor {
	return actor.Actor{
		TenantID: c.TenantID,
		StoreID:  c.StoreID,
		UserID:   c.UserID,
		Role:     c.Role,
	}
}
