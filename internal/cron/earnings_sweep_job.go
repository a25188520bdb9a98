package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/internal/attribution"
	"github.com/devrecs/devrecs-backend/pkg/enums"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/outbox"
	"github.com/devrecs/devrecs-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type batchRunner interface {
	RunBatch(ctx context.Context, asOf time.Time) (*attribution.BatchResult, error)
}

// EarningsSweepJobParams configure the daily attribution sweep.
type EarningsSweepJobParams struct {
	Logger *logger.Logger
	Engine batchRunner
	DB     txRunner
	Outbox outboxEmitter
}

// NewEarningsSweepJob builds the cron job that credits eligible posts.
func NewEarningsSweepJob(params EarningsSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("attribution engine required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &earningsSweepJob{
		logg:   params.Logger,
		engine: params.Engine,
		db:     params.DB,
		outbox: params.Outbox,
		now:    time.Now,
	}, nil
}

type earningsSweepJob struct {
	logg   *logger.Logger
	engine batchRunner
	db     txRunner
	outbox outboxEmitter
	now    func() time.Time
}

func (j *earningsSweepJob) Name() string { return "earnings-sweep" }

func (j *earningsSweepJob) Run(ctx context.Context) error {
	asOf := j.now().UTC()
	result, err := j.engine.RunBatch(ctx, asOf)
	if err != nil {
		return fmt.Errorf("earnings sweep: %w", err)
	}

	ranAt := j.now().UTC()
	if err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventSweepCompleted,
			AggregateType: enums.AggregateEarning,
			AggregateID:   uuid.New(),
			Version:       1,
			OccurredAt:    ranAt,
			Data: payloads.SweepCompletedEvent{
				AsOf:      result.AsOf,
				Processed: result.Processed,
				Skipped:   result.Skipped,
				Failed:    result.Failed,
				RanAt:     ranAt,
			},
		}
		return j.outbox.Emit(ctx, tx, event)
	}); err != nil {
		return fmt.Errorf("emit sweep completion: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":     result.AsOf,
		"eligible":  result.Eligible,
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
		"credited":  result.Credited.String(),
	})
	j.logg.Info(logCtx, "earnings sweep cycle complete")
	return nil
}
