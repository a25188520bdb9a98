package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devrecs/devrecs-backend/internal/earnings"
	"github.com/devrecs/devrecs-backend/internal/revenue"
	"github.com/devrecs/devrecs-backend/pkg/config"
	"github.com/devrecs/devrecs-backend/pkg/db/models"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/metrics"
)

type ledgerRecorder interface {
	RecordEarnings(ctx context.Context, input earnings.RecordEarningsInput) (*earnings.RecordEarningsResult, error)
}

// Engine sweeps eligible posts and converts their uncredited clicks into
// ledger entries. Per-post failures are contained; only the inability to
// enumerate eligible posts aborts a run.
type Engine interface {
	RunBatch(ctx context.Context, asOf time.Time) (*BatchResult, error)
}

// BatchResult summarizes one sweep.
type BatchResult struct {
	AsOf      string          `json:"as_of"`
	Eligible  int             `json:"eligible"`
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Credited  decimal.Decimal `json:"credited"`
}

type engine struct {
	repo      Repository
	estimator revenue.Estimator
	ledger    ledgerRecorder
	logg      *logger.Logger
	sweep     *metrics.SweepMetrics
	minClicks int64
}

// NewEngine builds the attribution engine.
func NewEngine(repo Repository, estimator revenue.Estimator, ledger ledgerRecorder, logg *logger.Logger, sweep *metrics.SweepMetrics, cfg config.EarningsConfig) (Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("attribution repository required")
	}
	if estimator == nil {
		return nil, fmt.Errorf("revenue estimator required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("earnings recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.MinClicks < 0 {
		return nil, fmt.Errorf("min clicks must not be negative")
	}
	return &engine{
		repo:      repo,
		estimator: estimator,
		ledger:    ledger,
		logg:      logg,
		sweep:     sweep,
		minClicks: cfg.MinClicks,
	}, nil
}

func (e *engine) RunBatch(ctx context.Context, asOf time.Time) (*BatchResult, error) {
	if asOf.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "as-of date required")
	}
	asOfDay := earnings.DateOnly(asOf)

	posts, err := e.repo.ListEligible(ctx, e.minClicks, asOfDay)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligible posts")
	}

	result := &BatchResult{
		AsOf:     asOfDay.Format(time.DateOnly),
		Eligible: len(posts),
		Credited: decimal.Zero,
	}

	for _, post := range posts {
		share, err := e.processPost(ctx, post, asOfDay)
		switch {
		case err != nil:
			result.Failed++
			e.sweep.AddFailed(1)
			logCtx := e.logg.WithPostID(ctx, post.ID.String())
			e.logg.Error(logCtx, "earnings attribution failed for post", err)
		case share == nil:
			result.Skipped++
			e.sweep.AddSkipped(1)
		default:
			result.Processed++
			result.Credited = result.Credited.Add(*share)
			e.sweep.AddProcessed(1)
			credited, _ := share.Float64()
			e.sweep.AddCredited(credited)
		}
	}

	logCtx := e.logg.WithFields(ctx, map[string]any{
		"as_of":     result.AsOf,
		"eligible":  result.Eligible,
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})
	e.logg.Info(logCtx, "earnings sweep finished")
	return result, nil
}

// processPost returns the credited share, nil when the post was skipped.
func (e *engine) processPost(ctx context.Context, post models.Post, asOfDay time.Time) (*decimal.Decimal, error) {
	delta, window, err := e.clicksSinceCheckpoint(ctx, post, asOfDay)
	if err != nil {
		return nil, err
	}
	if delta <= 0 {
		// No new clicks: skip without advancing the checkpoint, the next
		// sweep re-evaluates the post.
		return nil, nil
	}

	gross, err := e.estimator.Estimate(ctx, delta, window)
	if err != nil {
		return nil, err
	}

	recorded, err := e.ledger.RecordEarnings(ctx, earnings.RecordEarningsInput{
		UserID:       post.UserID,
		PostID:       post.ID,
		EarningsDate: asOfDay,
		Clicks:       delta,
		GrossRevenue: gross,
	})
	if err != nil {
		return nil, err
	}

	// The ledger owns the fee split; report exactly what it credited.
	return &recorded.Amount, nil
}

func (e *engine) clicksSinceCheckpoint(ctx context.Context, post models.Post, asOfDay time.Time) (int64, revenue.Window, error) {
	window := revenue.Window{
		PostID: post.ID,
		Start:  earnings.DateOnly(post.CreatedAt),
		End:    asOfDay.AddDate(0, 0, 1),
	}

	if post.LastEarningsDate == nil {
		// First calculation credits the whole lifetime counter.
		return post.ClickCount, window, nil
	}

	checkpoint := earnings.DateOnly(*post.LastEarningsDate)
	window.Start = checkpoint.AddDate(0, 0, 1)
	delta, err := e.repo.CountClicksAfter(ctx, post.ID, checkpoint)
	if err != nil {
		return 0, window, err
	}
	return delta, window, nil
}
