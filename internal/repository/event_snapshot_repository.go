package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

const eventSnapshotSchema = `CREATE TABLE IF NOT EXISTS event_snapshots (
	id UUID PRIMARY KEY,
	taken_at TIMESTAMPTZ NOT NULL,
	event_count INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	payload JSONB NOT NULL
)`

const eventSnapshotIndex = `CREATE INDEX IF NOT EXISTS idx_event_snapshots_taken_at ON event_snapshots (taken_at DESC)`

// EventSnapshotRepository archives upstream event lists in Postgres.
type EventSnapshotRepository struct {
	db *sqlx.DB
}

// NewEventSnapshotRepository creates a new instance of EventSnapshotRepository.
func NewEventSnapshotRepository(db *sqlx.DB) *EventSnapshotRepository {
	return &EventSnapshotRepository{db: db}
}

// EnsureSchema creates the snapshot table when missing.
func (r *EventSnapshotRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{eventSnapshotSchema, eventSnapshotIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure event snapshot schema: %w", err)
		}
	}
	return nil
}

// Save inserts a snapshot, assigning an id when absent.
func (r *EventSnapshotRepository) Save(ctx context.Context, snapshot *models.EventSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	const query = `INSERT INTO event_snapshots (id, taken_at, event_count, content_hash, payload) VALUES (:id, :taken_at, :event_count, :content_hash, :payload)`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("insert event snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot or appErrors.ErrNotFound.
func (r *EventSnapshotRepository) Latest(ctx context.Context) (*models.EventSnapshot, error) {
	const query = `SELECT id, taken_at, event_count, content_hash, payload FROM event_snapshots ORDER BY taken_at DESC LIMIT 1`
	var snapshot models.EventSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no event snapshot stored")
		}
		return nil, fmt.Errorf("latest event snapshot: %w", err)
	}
	return &snapshot, nil
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (r *EventSnapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	const query = `DELETE FROM event_snapshots WHERE id NOT IN (SELECT id FROM event_snapshots ORDER BY taken_at DESC LIMIT $1)`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune event snapshots: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune event snapshots rows: %w", err)
	}
	return affected, nil
}
