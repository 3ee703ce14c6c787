package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

// Storage keys of the two persisted preferences.
const (
	SettingsKeySelectedGenres = "ankr_selected_genres"
	SettingsKeyViewMode       = "ankr_view_mode"
)

// SettingsRepository persists raw preference values per client.
type SettingsRepository interface {
	Get(ctx context.Context, clientID, key string) (string, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID string) error
}

// SettingsService loads and updates per-client view preferences.
type SettingsService struct {
	repo      SettingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings store.
func NewSettingsService(repo SettingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Load returns the stored preferences. Absent, unreadable or malformed values
// yield the defaults; Load itself never fails.
func (s *SettingsService) Load(ctx context.Context, clientID string) models.UserSettings {
	settings := models.DefaultUserSettings()

	rawGenres, err := s.read(ctx, clientID, SettingsKeySelectedGenres)
	if err != nil {
		return settings
	}
	if rawGenres != "" {
		var genres []string
		if err := json.Unmarshal([]byte(rawGenres), &genres); err != nil {
			s.logger.Warn("stored genre selection is malformed", zap.String("client_id", clientID), zap.Error(err))
			return models.DefaultUserSettings()
		}
		settings.SelectedGenres = normalizeGenres(genres)
	}

	rawMode, err := s.read(ctx, clientID, SettingsKeyViewMode)
	if err != nil {
		return models.DefaultUserSettings()
	}
	if mode := models.ViewMode(rawMode); mode.Valid() {
		settings.ViewMode = mode
	}
	return settings
}

// Update applies the provided fields and persists the result.
func (s *SettingsService) Update(ctx context.Context, clientID string, req dto.UpdateSettingsRequest) (models.UserSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.UserSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings := s.Load(ctx, clientID)
	if req.SelectedGenres != nil {
		settings.SelectedGenres = normalizeGenres(req.SelectedGenres)
	}
	if req.ViewMode != nil {
		settings.ViewMode = models.ViewMode(*req.ViewMode)
	}
	if err := s.Save(ctx, clientID, settings); err != nil {
		return models.UserSettings{}, err
	}
	return settings, nil
}

// SetViewMode persists only the view mode.
func (s *SettingsService) SetViewMode(ctx context.Context, clientID string, mode models.ViewMode) (models.UserSettings, error) {
	value := string(mode)
	return s.Update(ctx, clientID, dto.UpdateSettingsRequest{ViewMode: &value})
}

// ToggleGenre flips genre in the selection. Choosing "all" resets the
// selection; any other genre clears "all"; removing the last genre restores it.
func (s *SettingsService) ToggleGenre(ctx context.Context, clientID string, req dto.ToggleGenreRequest) (models.UserSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.UserSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid genre")
	}

	settings := s.Load(ctx, clientID)
	settings.SelectedGenres = ToggleGenre(settings.SelectedGenres, req.Genre)
	if err := s.Save(ctx, clientID, settings); err != nil {
		return models.UserSettings{}, err
	}
	return settings, nil
}

// Save writes both preferences.
func (s *SettingsService) Save(ctx context.Context, clientID string, settings models.UserSettings) error {
	payload, err := json.Marshal(normalizeGenres(settings.SelectedGenres))
	if err != nil {
		return fmt.Errorf("marshal genre selection: %w", err)
	}
	if err := s.repo.Set(ctx, clientID, SettingsKeySelectedGenres, string(payload)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to save settings")
	}
	if err := s.repo.Set(ctx, clientID, SettingsKeyViewMode, string(settings.ViewMode)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to save settings")
	}
	return nil
}

// Reset forgets the client's preferences.
func (s *SettingsService) Reset(ctx context.Context, clientID string) error {
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to reset settings")
	}
	return nil
}

// read returns "" for a missing key and an error only when the store failed.
func (s *SettingsService) read(ctx context.Context, clientID, key string) (string, error) {
	value, err := s.repo.Get(ctx, clientID, key)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, appErrors.ErrCacheMiss) {
		return "", nil
	}
	s.logger.Warn("settings store read failed", zap.String("client_id", clientID), zap.String("key", key), zap.Error(err))
	return "", err
}

// ToggleGenre returns the selection after toggling genre.
func ToggleGenre(selected []string, genre string) []string {
	if genre == models.GenreAll {
		return []string{models.GenreAll}
	}
	next := make([]string, 0, len(selected)+1)
	found := false
	for _, g := range selected {
		switch {
		case g == models.GenreAll:
		case g == genre:
			found = true
		default:
			next = append(next, g)
		}
	}
	if !found {
		next = append(next, genre)
	}
	return normalizeGenres(next)
}

func normalizeGenres(genres []string) []string {
	if len(genres) == 0 {
		return []string{models.GenreAll}
	}
	return genres
}
