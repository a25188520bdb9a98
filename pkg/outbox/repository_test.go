package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devrecs/devrecs-backend/pkg/db/models"
	"github.com/devrecs/devrecs-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedOutboxEvent(t *testing.T, conn *gorm.DB, createdAt time.Time, mutate func(*models.OutboxEvent)) models.OutboxEvent {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPostClicked,
		AggregateType: enums.AggregatePost,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     createdAt,
	}
	if mutate != nil {
		mutate(&row)
	}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func TestFetchUnpublishedOrdersAndCapsAttempts(t *testing.T) {
	conn := setupOutboxTestDB(t)
	repo := NewRepository(conn)
	base := time.Now().UTC().Add(-time.Hour)

	second := seedOutboxEvent(t, conn, base.Add(time.Minute), nil)
	first := seedOutboxEvent(t, conn, base, nil)
	seedOutboxEvent(t, conn, base, func(row *models.OutboxEvent) {
		row.AttemptCount = 10
	})
	published := time.Now().UTC()
	seedOutboxEvent(t, conn, base, func(row *models.OutboxEvent) {
		row.PublishedAt = &published
	})

	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, first.ID, rows[0].ID)
	require.Equal(t, second.ID, rows[1].ID)
}

func TestMarkPublishedAndFailed(t *testing.T) {
	conn := setupOutboxTestDB(t)
	repo := NewRepository(conn)
	row := seedOutboxEvent(t, conn, time.Now().UTC(), nil)

	require.NoError(t, repo.MarkFailed(row.ID, errors.New("transient")))
	require.NoError(t, repo.MarkFailed(row.ID, errors.New("still down")))

	var got models.OutboxEvent
	require.NoError(t, conn.First(&got, "id = ?", row.ID).Error)
	require.Equal(t, 2, got.AttemptCount)
	require.NotNil(t, got.LastError)
	require.Equal(t, "still down", *got.LastError)

	require.NoError(t, repo.MarkPublished(row.ID))
	require.NoError(t, conn.First(&got, "id = ?", row.ID).Error)
	require.NotNil(t, got.PublishedAt)
}

func TestDeletePublishedBeforePrunesDeliveredAndExhausted(t *testing.T) {
	conn := setupOutboxTestDB(t)
	repo := NewRepository(conn)
	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	old := cutoff.Add(-time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)

	oldPublished := seedOutboxEvent(t, conn, old, func(row *models.OutboxEvent) {
		row.PublishedAt = &old
	})
	exhausted := seedOutboxEvent(t, conn, old, func(row *models.OutboxEvent) {
		row.AttemptCount = 5
	})
	pendingOld := seedOutboxEvent(t, conn, old, func(row *models.OutboxEvent) {
		row.AttemptCount = 2
	})
	recentPublished := seedOutboxEvent(t, conn, recent, func(row *models.OutboxEvent) {
		row.PublishedAt = &recent
	})

	deleted, err := repo.DeletePublishedBefore(context.Background(), conn, cutoff, 5)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, conn.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := map[uuid.UUID]bool{}
	for _, row := range remaining {
		ids[row.ID] = true
	}
	require.True(t, ids[pendingOld.ID], "pending rows under the attempt cap must survive")
	require.True(t, ids[recentPublished.ID], "recent delivered rows must survive")
	require.False(t, ids[oldPublished.ID])
	require.False(t, ids[exhausted.ID])
}

func TestEmitWritesEnvelopeInsideTransaction(t *testing.T) {
	conn := setupOutboxTestDB(t)
	service := NewService(NewRepository(conn), nil)
	aggregateID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return service.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventEarningsRecorded,
			AggregateType: enums.AggregateEarning,
			AggregateID:   aggregateID,
			Data:          map[string]string{"hello": "world"},
			Version:       1,
		})
	})
	require.NoError(t, err)

	var got models.OutboxEvent
	require.NoError(t, conn.First(&got, "aggregate_id = ?", aggregateID).Error)
	require.Equal(t, enums.EventEarningsRecorded, got.EventType)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(got.Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, "world", data["hello"])
}

func TestEmitRequiresTransaction(t *testing.T) {
	conn := setupOutboxTestDB(t)
	service := NewService(NewRepository(conn), nil)

	err := service.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventPostClicked,
		AggregateType: enums.AggregatePost,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)
}
