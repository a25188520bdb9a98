package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devrecs/devrecs-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID           uuid.UUID
	IsAdmin          bool
	SubscriptionTier enums.SubscriptionTier
	JTI              string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID           uuid.UUID              `json:"user_id"`
	IsAdmin          bool                   `json:"is_admin"`
	SubscriptionTier enums.SubscriptionTier `json:"subscription_tier"`
	jwt.RegisteredClaims
}
