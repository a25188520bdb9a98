package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devrecs/devrecs-backend/pkg/db/models"
)

// Repository manages persistence for the earnings ledger and the denormalized
// totals it owns. No other package writes posts.total_earnings,
// posts.last_earnings_date, or users.total_earnings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertEntry(ctx context.Context, entry *models.Earning) error
	IncrementUserTotal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	IncrementPostTotal(ctx context.Context, postID uuid.UUID, amount decimal.Decimal, checkpoint time.Time) error

	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Earning, error)
	ListPostTotalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Post, error)
	SumAmountByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SumAmountByPost(ctx context.Context, postID uuid.UUID) (decimal.Decimal, error)
	PlatformTotals(ctx context.Context) (*PlatformTotals, error)
	TopEarningPosts(ctx context.Context, limit int) ([]models.Post, error)
}

// PlatformTotals aggregates the whole ledger for the admin dashboard.
type PlatformTotals struct {
	Entries        int64           `json:"entries"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	PlatformFees   decimal.Decimal `json:"platform_fees"`
	CreatorPayouts decimal.Decimal `json:"creator_payouts"`
	ClicksCredited int64           `json:"clicks_credited"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an earnings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertEntry folds the entry into the (user, post, day) row additively so a
// duplicate same-day run credits once per click, never per invocation.
func (r *repository) UpsertEntry(ctx context.Context, entry *models.Earning) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "post_id"},
			{Name: "earnings_date"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":       gorm.Expr("amount + excluded.amount"),
			"clicks_count": gorm.Expr("clicks_count + excluded.clicks_count"),
			"ad_revenue":   gorm.Expr("ad_revenue + excluded.ad_revenue"),
			"platform_fee": gorm.Expr("platform_fee + excluded.platform_fee"),
			"updated_at":   time.Now(),
		}),
	}).Create(entry).Error
}

func (r *repository) IncrementUserTotal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", amount)).Error
}

// IncrementPostTotal bumps the post's running total and advances the
// checkpoint, never moving it backwards.
func (r *repository) IncrementPostTotal(ctx context.Context, postID uuid.UUID, amount decimal.Decimal, checkpoint time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]interface{}{
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
			"last_earnings_date": gorm.Expr(
				"CASE WHEN last_earnings_date IS NULL OR last_earnings_date < ? THEN ? ELSE last_earnings_date END",
				checkpoint, checkpoint,
			),
		}).Error
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByUser returns the user's ledger entries on or after since, newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Earning, error) {
	var entries []models.Earning
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND earnings_date >= ?", userID, since).
		Order("earnings_date DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListPostTotalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Select("id", "title", "slug", "status", "click_count", "total_earnings", "last_earnings_date").
		Where("user_id = ?", userID).
		Order("total_earnings DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) SumAmountByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return r.sumAmount(ctx, "user_id = ?", userID)
}

func (r *repository) SumAmountByPost(ctx context.Context, postID uuid.UUID) (decimal.Decimal, error) {
	return r.sumAmount(ctx, "post_id = ?", postID)
}

func (r *repository) sumAmount(ctx context.Context, cond string, arg any) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.Earning{}).
		Select("SUM(amount)").
		Where(cond, arg).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repository) PlatformTotals(ctx context.Context) (*PlatformTotals, error) {
	var row struct {
		Entries        int64
		GrossRevenue   decimal.NullDecimal
		PlatformFees   decimal.NullDecimal
		CreatorPayouts decimal.NullDecimal
		ClicksCredited int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Earning{}).
		Select(
			"COUNT(*) AS entries",
			"SUM(ad_revenue) AS gross_revenue",
			"SUM(platform_fee) AS platform_fees",
			"SUM(amount) AS creator_payouts",
			"COALESCE(SUM(clicks_count), 0) AS clicks_credited",
		).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	totals := &PlatformTotals{
		Entries:        row.Entries,
		GrossRevenue:   decimal.Zero,
		PlatformFees:   decimal.Zero,
		CreatorPayouts: decimal.Zero,
		ClicksCredited: row.ClicksCredited,
	}
	if row.GrossRevenue.Valid {
		totals.GrossRevenue = row.GrossRevenue.Decimal
	}
	if row.PlatformFees.Valid {
		totals.PlatformFees = row.PlatformFees.Decimal
	}
	if row.CreatorPayouts.Valid {
		totals.CreatorPayouts = row.CreatorPayouts.Decimal
	}
	return totals, nil
}

func (r *repository) TopEarningPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Select("id", "user_id", "title", "slug", "click_count", "total_earnings", "last_earnings_date").
		Order("total_earnings DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
