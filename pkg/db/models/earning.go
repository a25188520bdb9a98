package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Earning is one creator's credited share for one post on one day. The
// (user_id, post_id, earnings_date) key makes sweeps additive rather than
// append-only: re-crediting the same day folds into the existing row.
type Earning struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_earnings_user_post_date,priority:1"`
	PostID       uuid.UUID       `gorm:"column:post_id;type:uuid;not null;uniqueIndex:idx_earnings_user_post_date,priority:2"`
	EarningsDate time.Time       `gorm:"column:earnings_date;type:date;not null;uniqueIndex:idx_earnings_user_post_date,priority:3"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(12,4);not null;default:0"`
	ClicksCount  int64           `gorm:"column:clicks_count;not null;default:0"`
	AdRevenue    decimal.Decimal `gorm:"column:ad_revenue;type:numeric(12,4);not null;default:0"`
	PlatformFee  decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
