package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/pkg/config"
	"github.com/devrecs/devrecs-backend/pkg/db/models"
	"github.com/devrecs/devrecs-backend/pkg/enums"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/outbox"
	"github.com/devrecs/devrecs-backend/pkg/outbox/payloads"
)

const (
	amountScale   = 4
	summaryMonths = 12
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the single writer for earnings state. Recording is atomic:
// ledger upsert, both denormalized totals, and the post checkpoint commit
// together or not at all.
type Service interface {
	RecordEarnings(ctx context.Context, input RecordEarningsInput) (*RecordEarningsResult, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	PostEarnings(ctx context.Context, userID uuid.UUID) ([]PostEarningsDTO, error)
	PlatformStats(ctx context.Context) (*PlatformStatsDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
	feeRate decimal.Decimal
	now     func() time.Time
}

// RecordEarningsInput is one post's credit for one day.
type RecordEarningsInput struct {
	UserID       uuid.UUID
	PostID       uuid.UUID
	EarningsDate time.Time
	Clicks       int64
	GrossRevenue decimal.Decimal
}

// RecordEarningsResult reports the split the ledger actually applied, so
// callers never need to redo the fee math themselves.
type RecordEarningsResult struct {
	Amount      decimal.Decimal
	PlatformFee decimal.Decimal
}

// Summary is a user's lifetime total plus the monthly breakdown.
type Summary struct {
	TotalEarnings decimal.Decimal   `json:"total_earnings"`
	Monthly       []MonthlyEarnings `json:"monthly"`
}

// MonthlyEarnings is one month's slice of the breakdown, newest first.
type MonthlyEarnings struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Clicks int64           `json:"clicks"`
}

// PostEarningsDTO surfaces a single post's attribution state to its author.
type PostEarningsDTO struct {
	PostID           uuid.UUID       `json:"post_id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	ClickCount       int64           `json:"click_count"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	LastEarningsDate *string         `json:"last_earnings_date,omitempty"`
}

// PlatformStatsDTO aggregates ledger totals for operators.
type PlatformStatsDTO struct {
	Totals   PlatformTotals    `json:"totals"`
	TopPosts []PostEarningsDTO `json:"top_posts"`
}

// NewService builds the earnings ledger service.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger, cfg config.EarningsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.PlatformFeeRate.IsNegative() || cfg.PlatformFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("platform fee rate must be between 0 and 1")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  ob,
		logg:    logg,
		feeRate: cfg.PlatformFeeRate,
		now:     time.Now,
	}, nil
}

// SplitRevenue applies the platform fee to gross revenue and returns
// (fee, creator share). The share carries any rounding remainder so the two
// parts always sum back to gross.
func SplitRevenue(gross, feeRate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	fee := gross.Mul(feeRate).Round(amountScale)
	share := gross.Sub(fee)
	return fee, share
}

func (s *service) RecordEarnings(ctx context.Context, input RecordEarningsInput) (*RecordEarningsResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.PostID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id required")
	}
	if input.EarningsDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "earnings date required")
	}
	if input.Clicks <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clicks must be positive")
	}
	if input.GrossRevenue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gross revenue must not be negative")
	}

	day := DateOnly(input.EarningsDate)
	fee, share := SplitRevenue(input.GrossRevenue, s.feeRate)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry := &models.Earning{
			UserID:       input.UserID,
			PostID:       input.PostID,
			EarningsDate: day,
			Amount:       share,
			ClicksCount:  input.Clicks,
			AdRevenue:    input.GrossRevenue,
			PlatformFee:  fee,
		}
		if err := repo.UpsertEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert earnings entry")
		}
		if err := repo.IncrementUserTotal(ctx, input.UserID, share); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment user total")
		}
		if err := repo.IncrementPostTotal(ctx, input.PostID, share, day); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment post total")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventEarningsRecorded,
			AggregateType: enums.AggregateEarning,
			AggregateID:   input.PostID,
			Version:       1,
			Data: payloads.EarningsRecordedEvent{
				PostID:       input.PostID,
				UserID:       input.UserID,
				EarningsDate: day.Format(time.DateOnly),
				Clicks:       input.Clicks,
				AdRevenue:    input.GrossRevenue,
				PlatformFee:  fee,
				Amount:       share,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit earnings event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"post_id": input.PostID.String(),
		"user_id": input.UserID.String(),
		"clicks":  input.Clicks,
		"amount":  share.String(),
	})
	s.logg.Info(logCtx, "earnings recorded")
	return &RecordEarningsResult{Amount: share, PlatformFee: fee}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	// The breakdown mirrors the dashboard: only the trailing twelve months,
	// while the lifetime total comes from the denormalized user column.
	since := DateOnly(s.now()).AddDate(0, -summaryMonths, 0)
	entries, err := s.repo.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list earnings")
	}

	return &Summary{
		TotalEarnings: user.TotalEarnings,
		Monthly:       groupByMonth(entries),
	}, nil
}

func (s *service) PostEarnings(ctx context.Context, userID uuid.UUID) ([]PostEarningsDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	posts, err := s.repo.ListPostTotalsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list post totals")
	}
	out := make([]PostEarningsDTO, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostEarningsDTO(post))
	}
	return out, nil
}

func (s *service) PlatformStats(ctx context.Context) (*PlatformStatsDTO, error) {
	totals, err := s.repo.PlatformTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "platform totals")
	}
	topPosts, err := s.repo.TopEarningPosts(ctx, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top earning posts")
	}
	stats := &PlatformStatsDTO{Totals: *totals}
	for _, post := range topPosts {
		stats.TopPosts = append(stats.TopPosts, toPostEarningsDTO(post))
	}
	return stats, nil
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func groupByMonth(entries []models.Earning) []MonthlyEarnings {
	type bucket struct {
		amount decimal.Decimal
		clicks int64
	}
	buckets := map[string]*bucket{}
	order := []string{}
	for _, entry := range entries {
		month := entry.EarningsDate.UTC().Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &bucket{amount: decimal.Zero}
			buckets[month] = b
			order = append(order, month)
		}
		b.amount = b.amount.Add(entry.Amount)
		b.clicks += entry.ClicksCount
	}

	monthly := make([]MonthlyEarnings, 0, len(order))
	for _, month := range order {
		monthly = append(monthly, MonthlyEarnings{
			Month:  month,
			Amount: buckets[month].amount,
			Clicks: buckets[month].clicks,
		})
	}
	return monthly
}

func toPostEarningsDTO(post models.Post) PostEarningsDTO {
	dto := PostEarningsDTO{
		PostID:        post.ID,
		Title:         post.Title,
		Slug:          post.Slug,
		ClickCount:    post.ClickCount,
		TotalEarnings: post.TotalEarnings,
	}
	if post.LastEarningsDate != nil {
		formatted := post.LastEarningsDate.UTC().Format(time.DateOnly)
		dto.LastEarningsDate = &formatted
	}
	return dto
}
