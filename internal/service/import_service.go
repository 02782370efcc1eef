package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/sheet"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
	"github.com/noah-isme/event-reg-api/pkg/jobs"
)

type sheetSource interface {
	ReadAll(ctx context.Context, sheetName string) ([][]string, error)
}

type registrationWriter interface {
	CreateFromRecord(ctx context.Context, record dto.RegistrationRecord) (*dto.WriteResult, error)
}

type purger interface {
	DeleteAll(ctx context.Context) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ImportService runs the purge-and-reload pipeline that mirrors the
// spreadsheet into the database. A run wipes training references,
// attendees and registrations, then replays every data row through the
// normal registration write path.
type ImportService struct {
	source        sheetSource
	normalizer    *sheet.Normalizer
	registrations registrationWriter
	purgeRefs     purger
	purgeAtt      purger
	purgeRegs     purger
	catalog       catalogInvalidator
	metrics       *MetricsService
	queue         jobEnqueuer
	defaultSheet  string
	rowTimeout    time.Duration
	logger        *zap.Logger

	mu      sync.RWMutex
	jobsLog map[string]*dto.ImportJob
}

// NewImportService constructs ImportService.
func NewImportService(source sheetSource, normalizer *sheet.Normalizer, registrations registrationWriter, purgeRefs, purgeAtt, purgeRegs purger, catalog catalogInvalidator, metrics *MetricsService, defaultSheet string, rowTimeout time.Duration, logger *zap.Logger) *ImportService {
	if rowTimeout <= 0 {
		rowTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		source:        source,
		normalizer:    normalizer,
		registrations: registrations,
		purgeRefs:     purgeRefs,
		purgeAtt:      purgeAtt,
		purgeRegs:     purgeRegs,
		catalog:       catalog,
		metrics:       metrics,
		defaultSheet:  defaultSheet,
		rowTimeout:    rowTimeout,
		logger:        logger,
		jobsLog:       make(map[string]*dto.ImportJob),
	}
}

// SetQueue attaches the background queue used for async imports.
func (s *ImportService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// ImportFromSheet runs a synchronous import from the configured spreadsheet.
func (s *ImportService) ImportFromSheet(ctx context.Context, sheetName string) (*dto.ImportReport, error) {
	if s.source == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet source not configured")
	}
	if sheetName == "" {
		sheetName = s.defaultSheet
	}
	rows, err := s.source.ReadAll(ctx, sheetName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read spreadsheet")
	}
	return s.ImportRows(ctx, rows)
}

// ImportCSV imports an uploaded CSV export of the form responses.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportReport, error) {
	rows, err := sheet.ReadCSV(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse csv upload")
	}
	return s.ImportRows(ctx, rows)
}

// ImportRows replays raw rows through the registration write path. The
// first row must be the header. Individual row failures are collected in
// the report without failing the batch; only cancellation or an empty
// input stops the run.
func (s *ImportService) ImportRows(ctx context.Context, rows [][]string) (*dto.ImportReport, error) {
	report := &dto.ImportReport{StartedAt: time.Now().UTC()}

	// An empty or header-only read would otherwise purge the whole
	// database and reload nothing, so it is rejected before any
	// destructive step.
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet contained no data rows")
	}

	index := sheet.HeaderIndex(rows[0])
	dataRows := rows[1:]
	report.TotalRows = len(dataRows)

	purgeStart := time.Now()
	if err := s.purge(ctx); err != nil {
		return nil, err
	}
	report.PurgeDuration = time.Since(purgeStart).String()

	for i, row := range dataRows {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			break
		}

		record := s.normalizer.Normalize(index, row)
		// Each row write is bounded so one hung statement cannot stall
		// the whole run.
		rowCtx, cancel := context.WithTimeout(ctx, s.rowTimeout)
		result, err := s.registrations.CreateFromRecord(rowCtx, record)
		cancel()
		if err != nil {
			// Sheet row numbers are 1-based and include the header.
			report.Failed++
			report.Failures = append(report.Failures, dto.RowFailure{
				RowNumber: i + 2,
				Error:     err.Error(),
			})
			continue
		}
		report.Imported++
		report.SkippedLines += len(result.SkippedLines)
	}

	report.FinishedAt = time.Now().UTC()
	s.metrics.RecordImportedRows(report.Imported, report.Failed)
	s.metrics.ObserveImportRun(report.FinishedAt.Sub(report.StartedAt))
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}

	s.logger.Sugar().Infow("import finished",
		"total", report.TotalRows, "imported", report.Imported,
		"failed", report.Failed, "aborted", report.Aborted)
	return report, nil
}

// EnqueueSheetImport schedules an async import and returns its tracking job.
// The actor is recorded in the log only; job state carries no identity.
func (s *ImportService) EnqueueSheetImport(sheetName, actor string) (*dto.ImportJob, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "background imports not configured")
	}
	if sheetName == "" {
		sheetName = s.defaultSheet
	}

	job := &dto.ImportJob{
		ID:         uuid.NewString(),
		State:      dto.ImportJobPending,
		Source:     fmt.Sprintf("sheet:%s", sheetName),
		EnqueuedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobsLog[job.ID] = job
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "sheet_import", Payload: sheetName})
	if err != nil {
		s.setJobState(job.ID, dto.ImportJobFailed, nil, err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue import")
	}
	s.logger.Sugar().Infow("import enqueued", "job_id", job.ID, "sheet", sheetName, "actor", actor)
	return s.Job(job.ID), nil
}

// ProcessJob is the queue handler for background sheet imports.
func (s *ImportService) ProcessJob(ctx context.Context, job jobs.Job) error {
	sheetName, _ := job.Payload.(string)
	s.setJobState(job.ID, dto.ImportJobRunning, nil, "")

	report, err := s.ImportFromSheet(ctx, sheetName)
	if err != nil {
		s.setJobState(job.ID, dto.ImportJobFailed, nil, err.Error())
		return err
	}

	state := dto.ImportJobCompleted
	if report.Aborted {
		state = dto.ImportJobFailed
	}
	s.setJobState(job.ID, state, report, "")
	return nil
}

// Job returns a copy of the tracked job, or nil when unknown.
func (s *ImportService) Job(id string) *dto.ImportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsLog[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

// purge wipes references first, then attendees, then registrations, so
// no step can orphan a child row behind a deleted parent.
func (s *ImportService) purge(ctx context.Context) error {
	if err := s.purgeRefs.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge training references")
	}
	if err := s.purgeAtt.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "failed to purge attendees")
	}
	if err := s.purgeRegs.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "failed to purge registrations")
	}
	return nil
}

func (s *ImportService) setJobState(id string, state dto.ImportJobState, report *dto.ImportReport, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobsLog[id]
	if !ok {
		return
	}
	job.State = state
	if report != nil {
		job.Report = report
	}
	if errMsg != "" {
		job.Error = errMsg
	}
}
