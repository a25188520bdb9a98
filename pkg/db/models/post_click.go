package models

import (
	"time"

	"github.com/google/uuid"
)

// PostClick records a single outbound click on a post. Rows are append-only.
type PostClick struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index"`
	UserIP    string    `gorm:"column:user_ip;type:text"`
	UserAgent string    `gorm:"column:user_agent;type:text"`
	Referrer  string    `gorm:"column:referrer;type:text"`
	ClickedAt time.Time `gorm:"column:clicked_at;not null;index"`
}
