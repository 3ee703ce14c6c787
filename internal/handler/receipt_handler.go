package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/response"
)

type receiptGenerator interface {
	Candidates(query dto.ReceiptCandidatesQuery) ([]dto.ReceiptCandidate, error)
	Generate(ctx context.Context, req dto.CreateReceiptRequest) (*models.ReceiptFile, error)
	Open(token string) (*os.File, string, error)
}

// ReceiptHandler serves the year-end receipt flow.
type ReceiptHandler struct {
	service receiptGenerator
}

// NewReceiptHandler constructs the handler.
func NewReceiptHandler(service receiptGenerator) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// Candidates godoc
// @Summary Events offered for a receipt
// @Tags Receipts
// @Produce json
// @Param year query int false "Year; defaults to the current year"
// @Param quarter query string false "all, Q1, Q2, Q3 or Q4"
// @Param q query string false "Event name keyword"
// @Success 200 {object} response.Envelope
// @Router /receipts/candidates [get]
func (h *ReceiptHandler) Candidates(c *gin.Context) {
	query := dto.ReceiptCandidatesQuery{
		Quarter: strings.TrimSpace(c.Query("quarter")),
		Keyword: strings.TrimSpace(c.Query("q")),
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
			return
		}
		query.Year = year
	}

	candidates, err := h.service.Candidates(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, map[string]interface{}{"count": len(candidates)})
}

// Create godoc
// @Summary Render a receipt
// @Tags Receipts
// @Accept json
// @Produce json
// @Param payload body dto.CreateReceiptRequest true "Selection"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid receipt payload"))
		return
	}

	file, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ReceiptResponse{
		ReceiptID:   file.ReceiptID,
		Year:        file.Year,
		Format:      string(file.Format),
		TotalEvents: file.TotalEvents,
		URL:         file.URL,
		ExpiresAt:   file.ExpiresAt,
	})
}

// Download godoc
// @Summary Download a rendered receipt
// @Tags Receipts
// @Produce application/pdf
// @Produce text/csv
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /receipts/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, relPath, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read receipt"))
		return
	}

	filename := filepath.Base(relPath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.DataFromReader(http.StatusOK, info.Size(), receiptMimeType(filename), file, nil)
}

func receiptMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
