package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/internal/attribution"
	"github.com/devrecs/devrecs-backend/pkg/logger"
	"github.com/devrecs/devrecs-backend/pkg/outbox"
	"github.com/devrecs/devrecs-backend/pkg/outbox/payloads"
)

type fakeBatchRunner struct {
	lastAsOf time.Time
	result   *attribution.BatchResult
	err      error
	calls    int
}

func (f *fakeBatchRunner) RunBatch(_ context.Context, asOf time.Time) (*attribution.BatchResult, error) {
	f.calls++
	f.lastAsOf = asOf
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type capturingEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (c *capturingEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

type sweepTxRunner struct{}

func (sweepTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newSweepJob(t *testing.T, engine *fakeBatchRunner, emitter *capturingEmitter) *earningsSweepJob {
	t.Helper()
	jobIface, err := NewEarningsSweepJob(EarningsSweepJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Engine: engine,
		DB:     sweepTxRunner{},
		Outbox: emitter,
	})
	if err != nil {
		t.Fatalf("NewEarningsSweepJob: %v", err)
	}
	job, ok := jobIface.(*earningsSweepJob)
	if !ok {
		t.Fatalf("expected earningsSweepJob, got %T", jobIface)
	}
	return job
}

func TestEarningsSweepJobRunsEngineAndEmitsCompletion(t *testing.T) {
	now := time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)
	engine := &fakeBatchRunner{result: &attribution.BatchResult{
		AsOf:      "2026-03-05",
		Eligible:  3,
		Processed: 2,
		Skipped:   1,
		Credited:  decimal.RequireFromString("4.20"),
	}}
	emitter := &capturingEmitter{}
	job := newSweepJob(t, engine, emitter)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected engine run once, got %d", engine.calls)
	}
	if !engine.lastAsOf.Equal(now) {
		t.Fatalf("expected asOf %s, got %s", now, engine.lastAsOf)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(emitter.events))
	}
	payload, ok := emitter.events[0].Data.(payloads.SweepCompletedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", emitter.events[0].Data)
	}
	if payload.AsOf != "2026-03-05" || payload.Processed != 2 || payload.Skipped != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestEarningsSweepJobPropagatesEngineError(t *testing.T) {
	engine := &fakeBatchRunner{err: errors.New("db unavailable")}
	emitter := &capturingEmitter{}
	job := newSweepJob(t, engine, emitter)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no completion event expected on failure, got %d", len(emitter.events))
	}
}

func TestEarningsSweepJobPropagatesEmitError(t *testing.T) {
	engine := &fakeBatchRunner{result: &attribution.BatchResult{AsOf: "2026-03-05"}}
	emitter := &capturingEmitter{err: errors.New("insert failed")}
	job := newSweepJob(t, engine, emitter)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
