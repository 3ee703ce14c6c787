package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestEventSnapshotEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventSnapshotRepository(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS event_snapshots").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_event_snapshots_taken_at").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSnapshotSave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventSnapshotRepository(db)

	mock.ExpectExec("INSERT INTO event_snapshots").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 2, "abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	snapshot := &models.EventSnapshot{TakenAt: time.Now(), EventCount: 2, ContentHash: "abc", Payload: []byte(`[{"id":"1"},{"id":"2"}]`)}
	require.NoError(t, repo.Save(context.Background(), snapshot))
	assert.NotEmpty(t, snapshot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSnapshotLatest(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventSnapshotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "taken_at", "event_count", "content_hash", "payload"}).
		AddRow("snap-1", now, 1, "hash", []byte(`[{"id":"1"}]`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, taken_at, event_count, content_hash, payload FROM event_snapshots ORDER BY taken_at DESC LIMIT 1")).
		WillReturnRows(rows)

	snapshot, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snapshot.ID)
	assert.JSONEq(t, `[{"id":"1"}]`, string(snapshot.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSnapshotLatestEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventSnapshotRepository(db)

	mock.ExpectQuery("FROM event_snapshots").WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventSnapshotPrune(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventSnapshotRepository(db)

	mock.ExpectExec("DELETE FROM event_snapshots WHERE id NOT IN").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.Prune(context.Background(), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
