package auth

import (
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uint64
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT carried by web (cookie) and
// mobile/courier (bearer) clients.
type AccessTokenClaims struct {
	UserID uint64         `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
