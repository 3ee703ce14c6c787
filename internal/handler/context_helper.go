package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/middleware"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// holidayYearWindow bounds how far from the current year public requests may
// pull holidays from the upstream API.
const holidayYearWindow = 5

func checkHolidayYear(year int, today time.Time) error {
	minYear, maxYear := today.Year()-holidayYearWindow, today.Year()+holidayYearWindow
	if year < minYear || year > maxYear {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year must be between %d and %d", minYear, maxYear))
	}
	return nil
}

type settingsLoader interface {
	Load(ctx context.Context, clientID string) models.UserSettings
}

// parseGenres reads the comma separated genres parameter. ok is false when
// the parameter is absent; an empty value selects everything.
func parseGenres(c *gin.Context) (genres []string, ok bool) {
	raw, present := c.GetQuery("genres")
	if !present {
		return nil, false
	}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			genres = append(genres, tag)
		}
	}
	if len(genres) == 0 {
		genres = []string{models.GenreAll}
	}
	return genres, true
}

// selectedGenres prefers the query parameter and falls back to the client's
// stored selection.
func selectedGenres(c *gin.Context, settings settingsLoader) []string {
	if genres, ok := parseGenres(c); ok {
		return genres
	}
	if settings != nil {
		if clientID := middleware.ClientIDFrom(c); clientID != "" {
			return settings.Load(c.Request.Context(), clientID).SelectedGenres
		}
	}
	return []string{models.GenreAll}
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}

func feedMeta(c *gin.Context, feed feedStatus) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	if feed != nil {
		meta["feed_loaded"] = feed.Loaded()
		if updated := feed.UpdatedAt(); !updated.IsZero() {
			meta["feed_updated_at"] = updated.UTC().Format(time.RFC3339)
		}
	}
	return meta
}
