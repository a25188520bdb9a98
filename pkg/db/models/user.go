package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devrecs/devrecs-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string                 `gorm:"type:text;not null;uniqueIndex"`
	Username         string                 `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash     string                 `gorm:"column:password_hash;not null"`
	IsAdmin          bool                   `gorm:"column:is_admin;not null;default:false"`
	IsActive         bool                   `gorm:"column:is_active;not null;default:true"`
	SubscriptionTier enums.SubscriptionTier `gorm:"column:subscription_tier;type:subscription_tier_enum;not null;default:'free'"`
	TotalEarnings    decimal.Decimal        `gorm:"column:total_earnings;type:numeric(12,4);not null;default:0"`
	LastLoginAt      *time.Time             `gorm:"column:last_login_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
