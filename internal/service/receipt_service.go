package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ankr-events/ankr-api/internal/dto"
	"github.com/ankr-events/ankr-api/internal/models"
	appErrors "github.com/ankr-events/ankr-api/pkg/errors"
	"github.com/ankr-events/ankr-api/pkg/export"
	"github.com/ankr-events/ankr-api/pkg/storage"
)

const (
	receiptDateLayout    = "06.01.02"
	receiptPrintedLayout = "2006-01-02 15:04:05"
)

type listedEvents interface {
	Listed(confirmed bool) []models.AnnotatedEvent
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReceiptConfig tunes receipt delivery.
type ReceiptConfig struct {
	APIPrefix string
	FileTTL   time.Duration
}

// ReceiptService builds year-end receipts and persists rendered files.
type ReceiptService struct {
	events    listedEvents
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ReceiptConfig
	loc       *time.Location
	now       func() time.Time
}

// NewReceiptService constructs a ReceiptService. Nil renderers fall back to the defaults.
func NewReceiptService(events listedEvents, files fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, metrics *MetricsService, cfg ReceiptConfig, loc *time.Location, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.FileTTL <= 0 {
		cfg.FileTTL = 24 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ReceiptService{
		events:    events,
		storage:   files,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *ReceiptService) WithClock(now func() time.Time) *ReceiptService {
	if now != nil {
		s.now = now
	}
	return s
}

// YearEvents returns the confirmed events of year, most recent first.
func (s *ReceiptService) YearEvents(year int) []models.AnnotatedEvent {
	out := make([]models.AnnotatedEvent, 0)
	for _, event := range s.events.Listed(true) {
		if event.ScheduleDate.In(s.loc).Year() == year {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduleDate.After(out[j].ScheduleDate)
	})
	return out
}

// Candidates lists the events offered for selection.
func (s *ReceiptService) Candidates(query dto.ReceiptCandidatesQuery) ([]dto.ReceiptCandidate, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid receipt filter")
	}
	year := query.Year
	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	quarter := models.Quarter(query.Quarter)
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))

	out := make([]dto.ReceiptCandidate, 0)
	for _, event := range s.YearEvents(year) {
		eventQuarter := models.QuarterOf(event.ScheduleDate.In(s.loc).Month())
		if quarter != "" && quarter != models.QuarterAll && quarter != eventQuarter {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(event.EventName), keyword) {
			continue
		}
		out = append(out, dto.ReceiptCandidate{
			ID:        event.ID,
			EventName: event.EventName,
			Schedule:  event.Schedule,
			DateLabel: event.ScheduleDate.In(s.loc).Format(receiptDateLayout),
			Location:  event.Location,
			Quarter:   string(eventQuarter),
		})
	}
	return out, nil
}

// Build assembles the receipt for the selected ids. Events keep the
// most-recent-first order; unknown ids are ignored.
func (s *ReceiptService) Build(req dto.CreateReceiptRequest) (*models.Receipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid receipt request")
	}
	now := s.now().In(s.loc)
	year := req.Year
	if year == 0 {
		year = now.Year()
	}

	wanted := make(map[string]struct{}, len(req.EventIDs))
	for _, id := range req.EventIDs {
		wanted[id] = struct{}{}
	}
	selected := make([]models.AnnotatedEvent, 0, len(wanted))
	for _, event := range s.YearEvents(year) {
		if _, ok := wanted[event.ID]; ok {
			selected = append(selected, event)
		}
	}
	if len(selected) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "none of the selected events belong to the year")
	}

	role := req.Role
	if role == "" {
		role = models.DefaultReceiptRole
	}
	return &models.Receipt{
		ID:        uuid.NewString(),
		Year:      year,
		Name:      strings.TrimSpace(req.Name),
		Role:      role,
		Events:    selected,
		PrintedAt: now,
	}, nil
}

// Generate renders and stores a receipt, returning a signed download link.
func (s *ReceiptService) Generate(ctx context.Context, req dto.CreateReceiptRequest) (*models.ReceiptFile, error) {
	receipt, err := s.Build(req)
	if err != nil {
		return nil, err
	}
	format := models.ReceiptFormat(req.Format)
	dataset := s.buildDataset(receipt)

	var payload []byte
	switch format {
	case models.ReceiptFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReceiptFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("%d DJ EVENT RECEIPT", receipt.Year))
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}

	relPath, err := s.storage.Save(s.buildFilename(receipt, format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store receipt")
	}

	token, expiresAt, err := s.signer.Generate(receipt.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign receipt link")
	}
	s.metrics.RecordReceipt(format)
	s.logger.Info("receipt generated",
		zap.String("receipt_id", receipt.ID),
		zap.String("format", string(format)),
		zap.Int("events", len(receipt.Events)),
	)

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &models.ReceiptFile{
		ReceiptID:    receipt.ID,
		Year:         receipt.Year,
		Format:       format,
		RelativePath: relPath,
		URL:          fmt.Sprintf("%s/receipts/download?token=%s", prefix, token),
		ExpiresAt:    expiresAt,
		TotalEvents:  len(receipt.Events),
	}, nil
}

// Open validates a download token and returns the stored file.
func (s *ReceiptService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "receipt not found")
	}
	return file, relPath, nil
}

// Cleanup removes files older than ttl (defaults to configured FileTTL when ttl <= 0).
func (s *ReceiptService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.FileTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ReceiptService) buildFilename(receipt *models.Receipt, format models.ReceiptFormat) string {
	return fmt.Sprintf("ankr-year-end-receipt-%d-%s.%s", receipt.Year, receipt.ID, format)
}

func (s *ReceiptService) buildDataset(receipt *models.Receipt) export.Dataset {
	rows := make([]map[string]string, 0, len(receipt.Events))
	for _, event := range receipt.Events {
		rows = append(rows, map[string]string{
			"DATE":  event.ScheduleDate.In(s.loc).Format(receiptDateLayout),
			"EVENT": event.EventName,
			"VENUE": event.Location,
		})
	}
	return export.Dataset{
		Headers: []string{"DATE", "EVENT", "VENUE"},
		Rows:    rows,
		Footer: [][2]string{
			{"NAME", receipt.Name},
			{"ROLE", receipt.Role},
			{"TOTAL EVENTS", strconv.Itoa(len(receipt.Events))},
			{"PRINTED", receipt.PrintedAt.Format(receiptPrintedLayout)},
		},
	}
}
