package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
)

type fakeReceipts struct {
	lastQuery   dto.ReceiptCandidatesQuery
	lastRequest dto.CreateReceiptRequest
	file        string
}

func (f *fakeReceipts) Candidates(query dto.ReceiptCandidatesQuery) ([]dto.ReceiptCandidate, error) {
	f.lastQuery = query
	if query.Quarter == "Q5" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid quarter")
	}
	return []dto.ReceiptCandidate{{ID: "week", EventName: "Vocalo", Quarter: "Q1"}}, nil
}

func (f *fakeReceipts) Generate(_ context.Context, req dto.CreateReceiptRequest) (*models.ReceiptFile, error) {
	f.lastRequest = req
	if len(req.EventIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no events selected")
	}
	return &models.ReceiptFile{
		ReceiptID:   "r-1",
		Year:        2025,
		Format:      models.ReceiptFormat(req.Format),
		URL:         "/api/v1/receipts/download?token=abc",
		ExpiresAt:   time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		TotalEvents: len(req.EventIDs),
	}, nil
}

func (f *fakeReceipts) Open(token string) (*os.File, string, error) {
	if token != "abc" || f.file == "" {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := os.Open(f.file)
	if err != nil {
		return nil, "", err
	}
	return file, filepath.Base(f.file), nil
}

func newReceiptRouter(receipts *fakeReceipts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReceiptHandler(receipts)
	r := gin.New()
	r.GET("/receipts/candidates", h.Candidates)
	r.POST("/receipts", h.Create)
	r.GET("/receipts/download", h.Download)
	return r
}

func TestReceiptHandlerCandidates(t *testing.T) {
	app := newTestApp(t)
	receipts := &fakeReceipts{}
	app.router = newReceiptRouter(receipts)

	rec := app.do(t, http.MethodGet, "/receipts/candidates?year=2025&quarter=Q1&q=voc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ReceiptCandidatesQuery{Year: 2025, Quarter: "Q1", Keyword: "voc"}, receipts.lastQuery)
	assert.EqualValues(t, 1, decode[[]dto.ReceiptCandidate](t, rec).Meta["count"])

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/receipts/candidates?year=twenty", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/receipts/candidates?quarter=Q5", "", nil).Code)
}

func TestReceiptHandlerCreate(t *testing.T) {
	app := newTestApp(t)
	receipts := &fakeReceipts{}
	app.router = newReceiptRouter(receipts)

	rec := app.do(t, http.MethodPost, "/receipts", `{"event_ids":["week","past"],"name":"ANKR","format":"csv"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[dto.ReceiptResponse](t, rec).Data
	assert.Equal(t, 2, res.TotalEvents)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, "ANKR", receipts.lastRequest.Name)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/receipts", `{"event_ids":[],"format":"csv"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/receipts", `not json`, nil).Code)
}

func TestReceiptHandlerDownload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ankr-year-end-receipt-2025-r-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("DATE,EVENT,VENUE\n"), 0o644))

	app := newTestApp(t)
	app.router = newReceiptRouter(&fakeReceipts{file: path})

	rec := app.do(t, http.MethodGet, "/receipts/download?token=abc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ankr-year-end-receipt-2025-r-1.csv")
	assert.Equal(t, "DATE,EVENT,VENUE\n", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/receipts/download?token=forged", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/receipts/download", "", nil).Code)
}

func TestReceiptMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", receiptMimeType("a.PDF"))
	assert.Equal(t, "application/octet-stream", receiptMimeType("a.png"))
}
