package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// EventSnapshot is a persisted copy of the upstream event list.
type EventSnapshot struct {
	ID          string         `db:"id"`
	TakenAt     time.Time      `db:"taken_at"`
	EventCount  int            `db:"event_count"`
	ContentHash string         `db:"content_hash"`
	Payload     types.JSONText `db:"payload"`
}
