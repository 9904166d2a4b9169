package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
	"github.com/noah-isme/cleanwave-api/pkg/export"
	"github.com/noah-isme/cleanwave-api/pkg/jobs"
	"github.com/noah-isme/cleanwave-api/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error
}

type exporter interface {
	Render(table export.Table) ([]byte, error)
}

type reportPayload struct {
	ReportID string
	EventID  string
	Format   models.ReportFormat
}

// ReportService generates event impact reports asynchronously. Requests are
// persisted, queued, rendered by a worker, and downloaded later via a signed
// URL so the handler never blocks on rendering.
type ReportService struct {
	reports    reportRepository
	events     eventFinder
	activities eventActivityReader
	store      *storage.ReportStore
	signer     *storage.SignedURLSigner
	queue      *jobs.Queue[reportPayload]
	metrics    *MetricsService
	logger     *zap.Logger

	exporters map[models.ReportFormat]exporter
}

type eventActivityReader interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.ActivityEntry, error)
}

// ReportServiceConfig wires the report pipeline.
type ReportServiceConfig struct {
	Reports    reportRepository
	Events     eventFinder
	Activities eventActivityReader
	Store      *storage.ReportStore
	Signer     *storage.SignedURLSigner
	Metrics    *MetricsService
	Logger     *zap.Logger
	Workers    int
	Retries    int
}

// NewReportService constructs the service and its worker queue. Start must be
// called before Request will accept work.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &ReportService{
		reports:    cfg.Reports,
		events:     cfg.Events,
		activities: cfg.Activities,
		store:      cfg.Store,
		signer:     cfg.Signer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		exporters: map[models.ReportFormat]exporter{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     cfg.Logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request records a report job and queues it for rendering.
func (s *ReportService) Request(ctx context.Context, eventID string, format models.ReportFormat, requestedBy string) (*models.ReportJob, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, mapEventLookupErr(err)
	}

	job := &models.ReportJob{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Format:      format,
		Status:      models.ReportStatusPending,
		RequestedBy: requestedBy,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if err := s.queue.Enqueue(jobs.Task[reportPayload]{
		ID:      job.ID,
		Payload: reportPayload{ReportID: job.ID, EventID: eventID, Format: format},
	}); err != nil {
		now := time.Now().UTC()
		_ = s.reports.MarkFailed(ctx, job.ID, "queue unavailable", now)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report job")
	}
	return job, nil
}

// Status returns the job record, including a signed download token once the
// report is ready.
func (s *ReportService) Status(ctx context.Context, id string) (*models.ReportJob, string, error) {
	job, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	var token string
	if job.Status == models.ReportStatusCompleted && job.FilePath != "" {
		token, _, err = s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download URL")
		}
	}
	return job, token, nil
}

// Download validates the signed token and opens the stored file.
func (s *ReportService) Download(ctx context.Context, token string) (*os.File, *models.ReportJob, error) {
	reportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	job, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if job.Status != models.ReportStatusCompleted || job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report file not available")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return file, job, nil
}

func (s *ReportService) process(ctx context.Context, task jobs.Task[reportPayload]) error {
	payload := task.Payload
	start := time.Now()

	if err := s.reports.MarkProcessing(ctx, payload.ReportID); err != nil {
		return err
	}

	table, err := s.buildTable(ctx, payload.EventID)
	if err != nil {
		s.fail(ctx, payload.ReportID, err)
		return err
	}
	data, err := s.exporters[payload.Format].Render(*table)
	if err != nil {
		s.fail(ctx, payload.ReportID, err)
		return err
	}

	filename := fmt.Sprintf("%s/%s.%s", payload.EventID, payload.ReportID, payload.Format)
	if _, err := s.store.Save(filename, data); err != nil {
		s.fail(ctx, payload.ReportID, err)
		return err
	}
	if err := s.reports.MarkCompleted(ctx, payload.ReportID, filename, time.Now().UTC()); err != nil {
		return err
	}

	s.metrics.ObserveReportGeneration(time.Since(start))
	s.logger.Info("report generated",
		zap.String("report_id", payload.ReportID),
		zap.String("event_id", payload.EventID),
		zap.String("format", string(payload.Format)))
	return nil
}

func (s *ReportService) buildTable(ctx context.Context, eventID string) (*export.Table, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	entries, err := s.activities.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load activity entries: %w", err)
	}

	table := &export.Table{
		Title:   fmt.Sprintf("Impact Report: %s (%s)", event.Title, event.FormatOccurrence()),
		Headers: []string{"Participant", "Waste (kg)", "XP", "Logged At"},
	}
	var totalWaste float64
	var totalXP int
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			entry.ParticipantID,
			strconv.FormatFloat(entry.WasteQuantityKg, 'f', 2, 64),
			strconv.Itoa(entry.XPEarned),
			entry.OccurredAt.Format(time.RFC3339),
		})
		totalWaste += entry.WasteQuantityKg
		totalXP += entry.XPEarned
	}
	table.Rows = append(table.Rows, []string{
		"TOTAL",
		strconv.FormatFloat(totalWaste, 'f', 2, 64),
		strconv.Itoa(totalXP),
		"",
	})
	return table, nil
}

func (s *ReportService) fail(ctx context.Context, reportID string, cause error) {
	if err := s.reports.MarkFailed(ctx, reportID, cause.Error(), time.Now().UTC()); err != nil {
		s.logger.Error("failed to mark report failed", zap.String("report_id", reportID), zap.Error(err))
	}
}
