package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostClickedEvent signals a tracked click on a published post.
type PostClickedEvent struct {
	PostID     uuid.UUID `json:"post_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	ClickCount int64     `json:"click_count"`
	ClickedAt  time.Time `json:"clicked_at"`
}

// EarningsRecordedEvent is emitted when a sweep credits a post for a day.
type EarningsRecordedEvent struct {
	PostID       uuid.UUID       `json:"post_id"`
	UserID       uuid.UUID       `json:"user_id"`
	EarningsDate string          `json:"earnings_date"`
	Clicks       int64           `json:"clicks"`
	AdRevenue    decimal.Decimal `json:"ad_revenue"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	Amount       decimal.Decimal `json:"amount"`
}

// SweepCompletedEvent summarizes one attribution batch run.
type SweepCompletedEvent struct {
	AsOf      string    `json:"as_of"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	RanAt     time.Time `json:"ran_at"`
}
