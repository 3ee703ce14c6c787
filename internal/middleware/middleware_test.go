package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

type fakeValidator struct {
	claims *models.AdminClaims
	seen   string
}

func (f *fakeValidator) ValidateToken(token string) (*models.AdminClaims, error) {
	f.seen = token
	if f.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return f.claims, nil
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeObserver struct {
	requests []recordedRequest
}

func (f *fakeObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, path: path, status: status})
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := newEngine()
	r.GET("/admin", JWT(&fakeValidator{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Token abc", "Bearer"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestJWTAttachesClaimsAndRoleCheck(t *testing.T) {
	validator := &fakeValidator{claims: &models.AdminClaims{Username: "ops", Role: models.RoleAdmin}}
	r := newEngine()
	r.GET("/admin", JWT(validator), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentAdmin(c).Username)
	})
	r.GET("/root", JWT(validator), RequireRoles("root"), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "bearer token-1")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", rec.Body.String())
	assert.Equal(t, "token-1", validator.seen)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/root", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newEngine()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientIDIssuesAndEchoesIdentifier(t *testing.T) {
	r := newEngine()
	r.Use(ClientID())
	r.GET("/settings", func(c *gin.Context) { c.String(http.StatusOK, ClientIDFrom(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	issued := rec.Header().Get(ClientIDHeader)
	_, err := uuid.Parse(issued)
	require.NoError(t, err)
	assert.Equal(t, issued, rec.Body.String())

	known := uuid.NewString()
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set(ClientIDHeader, known)
	r.ServeHTTP(rec, req)
	assert.Equal(t, known, rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set(ClientIDHeader, "not-a-uuid")
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Body.String())
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	r := newEngine()
	r.Use(Metrics(obs))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, obs.requests, 2)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/events/:id", status: http.StatusNoContent}, obs.requests[0])
	assert.Equal(t, "unmatched", obs.requests[1].path)
}

func TestResponseMeta(t *testing.T) {
	r := newEngine()
	r.Use(WithResponseMeta())
	r.GET("/events", func(c *gin.Context) {
		SetMeta(c, "feed_loaded", true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	var meta map[string]interface{}
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&meta))
	assert.Equal(t, true, meta["feed_loaded"])
}

func TestAuditLogsSuccessfulAdminActions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine()
	r.POST("/ok", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.AdminClaims{Username: "ops"})
	}, Audit(zap.New(core), "holiday_cache_clear"), func(c *gin.Context) { c.Status(http.StatusAccepted) })
	r.POST("/fail", Audit(zap.New(core), "holiday_prefetch"), func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/fail", nil))

	entries := logs.FilterMessage("admin_action").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "holiday_cache_clear", fields["action"])
	assert.Equal(t, "ops", fields["username"])
}
