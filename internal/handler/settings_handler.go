package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/middleware"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type settingsStore interface {
	Load(ctx context.Context, clientID string) models.UserSettings
	Update(ctx context.Context, clientID string, req dto.UpdateSettingsRequest) (models.UserSettings, error)
	ToggleGenre(ctx context.Context, clientID string, req dto.ToggleGenreRequest) (models.UserSettings, error)
	Reset(ctx context.Context, clientID string) error
}

// SettingsHandler reads and writes per-client view preferences.
type SettingsHandler struct {
	service settingsStore
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service settingsStore) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Stored view preferences
// @Description Falls back to all genres and the calendar view when nothing usable is stored
// @Tags Settings
// @Produce json
// @Param X-Client-ID header string false "Client UUID; issued when absent"
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	clientID := middleware.ClientIDFrom(c)
	response.OK(c, toSettingsResponse(clientID, h.service.Load(c.Request.Context(), clientID)))
}

// Update godoc
// @Summary Update view preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}

	clientID := middleware.ClientIDFrom(c)
	settings, err := h.service.Update(c.Request.Context(), clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toSettingsResponse(clientID, settings))
}

// ToggleGenre godoc
// @Summary Toggle one genre in the selection
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.ToggleGenreRequest true "Genre"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/genres/toggle [post]
func (h *SettingsHandler) ToggleGenre(c *gin.Context) {
	var req dto.ToggleGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid genre payload"))
		return
	}

	clientID := middleware.ClientIDFrom(c)
	settings, err := h.service.ToggleGenre(c.Request.Context(), clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toSettingsResponse(clientID, settings))
}

// Reset godoc
// @Summary Forget stored preferences
// @Tags Settings
// @Success 204
// @Router /settings [delete]
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), middleware.ClientIDFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func toSettingsResponse(clientID string, settings models.UserSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		ClientID:       clientID,
		SelectedGenres: settings.SelectedGenres,
		ViewMode:       string(settings.ViewMode),
	}
}
