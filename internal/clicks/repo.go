package clicks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/pkg/db/models"
)

// Repository manages persistence for click events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	InsertClick(ctx context.Context, click *models.PostClick) error
	IncrementClickCount(ctx context.Context, postID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a clicks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) InsertClick(ctx context.Context, click *models.PostClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *repository) IncrementClickCount(ctx context.Context, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}
