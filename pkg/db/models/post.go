package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devrecs/devrecs-backend/pkg/enums"
)

// Post is a published recommendation. ClickCount, TotalEarnings, and
// LastEarningsDate are denormalized attribution state maintained by the
// clicks and earnings services; they are never written by post CRUD.
type Post struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Title            string           `gorm:"column:title;type:text;not null"`
	Slug             string           `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Body             string           `gorm:"column:body;type:text;not null"`
	Status           enums.PostStatus `gorm:"column:status;type:post_status_enum;not null;default:'draft'"`
	ClickCount       int64            `gorm:"column:click_count;not null;default:0"`
	TotalEarnings    decimal.Decimal  `gorm:"column:total_earnings;type:numeric(12,4);not null;default:0"`
	LastEarningsDate *time.Time       `gorm:"column:last_earnings_date;type:date"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
