package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

func TestMemorySettingsRepository(t *testing.T) {
	repo := NewMemorySettingsRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "client-a", "ankr_view_mode")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "client-a", "ankr_view_mode", "table"))
	require.NoError(t, repo.Set(ctx, "client-b", "ankr_view_mode", "calendar"))

	value, err := repo.Get(ctx, "client-a", "ankr_view_mode")
	require.NoError(t, err)
	assert.Equal(t, "table", value)

	require.NoError(t, repo.Delete(ctx, "client-a"))
	_, err = repo.Get(ctx, "client-a", "ankr_view_mode")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	value, err = repo.Get(ctx, "client-b", "ankr_view_mode")
	require.NoError(t, err)
	assert.Equal(t, "calendar", value)
}

func TestRedisSettingsRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisSettingsRepository(nil, 0, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "client", "ankr_selected_genres")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "client", "ankr_selected_genres", `["all"]`))
	assert.NoError(t, repo.Delete(ctx, "client"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "ankr:settings:client:ankr_view_mode", settingsKey("client", "ankr_view_mode"))
}
