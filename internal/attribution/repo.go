package attribution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/pkg/db/models"
	"github.com/devrecs/devrecs-backend/pkg/enums"
)

// Repository exposes the read side of the sweep: which posts are due and how
// many clicks arrived since each post's checkpoint.
type Repository interface {
	ListEligible(ctx context.Context, minClicks int64, asOf time.Time) ([]models.Post, error)
	CountClicksAfter(ctx context.Context, postID uuid.UUID, checkpoint time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an attribution repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListEligible(ctx context.Context, minClicks int64, asOf time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.PostStatusPublished).
		Where("click_count >= ?", minClicks).
		Where("last_earnings_date IS NULL OR last_earnings_date < ?", asOf).
		Order("click_count DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CountClicksAfter counts the clicks on days strictly after the checkpoint
// day. Clicks on the checkpoint day itself were already credited.
func (r *repository) CountClicksAfter(ctx context.Context, postID uuid.UUID, checkpoint time.Time) (int64, error) {
	cutoff := checkpoint.AddDate(0, 0, 1)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostClick{}).
		Where("post_id = ?", postID).
		Where("clicked_at >= ?", cutoff).
		Count(&count).Error
	return count, err
}
