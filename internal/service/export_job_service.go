package service

import (
	"context"
	"errors"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/internal/repository"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
	"github.com/noah-isme/preschool-adp-api/pkg/export"
	"github.com/noah-isme/preschool-adp-api/pkg/jobs"
	"github.com/noah-isme/preschool-adp-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	ClearFile(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportJobConfig governs recovery and cleanup of export jobs.
type ExportJobConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload is a resolved download.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobService manages the lifecycle of export jobs.
type ExportJobService struct {
	repo      exportJobStore
	templates templateFinder
	queue     jobDispatcher
	exporter  *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobConfig
}

// NewExportJobService constructs the service. The queue may be attached later
// with SetQueue since the queue's handler needs the worker built from the
// same store.
func NewExportJobService(repo exportJobStore, templates templateFinder, queue jobDispatcher, exporter *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{
		repo:      repo,
		templates: templates,
		queue:     queue,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the dispatcher jobs are enqueued on.
func (s *ExportJobService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob validates the request, persists a queued job and dispatches it.
func (s *ExportJobService) CreateJob(ctx context.Context, req dto.ExportRequest, actor models.AuditActor) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "type and format are required; execution_log needs class_id, from and to; curriculum_plan needs curriculum_id")
	}
	params := models.ExportParams{Format: req.Format}
	switch req.Type {
	case models.ExportTypeExecutionLog:
		from, err := ParseDate(req.From)
		if err != nil {
			return nil, err
		}
		to, err := ParseDate(req.To)
		if err != nil {
			return nil, err
		}
		if to.Before(from) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
		}
		params.ClassID, params.From, params.To = req.ClassID, formatDate(from), formatDate(to)
	case models.ExportTypeCurriculumPlan:
		if _, err := s.templates.FindByID(ctx, req.CurriculumID); err != nil {
			return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
		}
		params.CurriculumID = req.CurriculumID
	}

	job := &models.ExportJob{
		Type:      req.Type,
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Operation(err, "failed to create export job")
	}
	if s.queue == nil {
		return nil, s.failJob(ctx, job, errors.New("export queue unavailable"))
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: string(job.Type)}); err != nil {
		return nil, s.failJob(ctx, job, err)
	}
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

func (s *ExportJobService) failJob(ctx context.Context, job *models.ExportJob, cause error) error {
	s.markFailed(ctx, job.ID, "failed to enqueue job")
	return appErrors.Operation(cause, "failed to enqueue export job")
}

// GetStatus returns job progress. Teachers only see their own jobs.
func (s *ExportJobService) GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "export job not found", "failed to load export job")
	}
	if role != models.RoleAdmin && job.CreatedBy != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	resp := &dto.ExportStatusResponse{
		ID:        job.ID,
		Type:      job.Type,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload checks a signed token and opens the file it grants.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	grant, err := s.exporter.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	job, err := s.repo.GetByID(ctx, grant.JobID)
	if err != nil {
		return nil, storeError(err, "export job not found", "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished || job.FilePath == nil || *job.FilePath != grant.Path {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	file, err := s.exporter.Open(grant.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
		}
		return nil, appErrors.Operation(err, "failed to open export file")
	}
	contentType := "application/octet-stream"
	if renderer, err := export.RendererFor(job.Params.Format); err == nil {
		contentType = renderer.ContentType()
	}
	return &ExportDownload{
		File:        file,
		Filename:    path.Base(grant.Path),
		ContentType: contentType,
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// RecoverPendingJobs re-dispatches jobs left queued by a previous process.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) {
	if s.queue == nil {
		return
	}
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued export jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("requeued export jobs", zap.Int("count", len(pending)))
	}
}

// StartCleanup removes expired export files periodically until ctx is done.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes the files of jobs finished longer than the result
// TTL ago and then sweeps stray files.
func (s *ExportJobService) CleanupExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	const batch = 50
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
		if err != nil {
			s.logger.Warn("export cleanup listing failed", zap.Error(err))
			return
		}
		for _, job := range expired {
			if job.FilePath != nil {
				if err := s.exporter.Delete(*job.FilePath); err != nil {
					s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
					continue
				}
			}
			if err := s.repo.ClearFile(ctx, job.ID); err != nil {
				s.logger.Warn("export cleanup clear failed", zap.String("job_id", job.ID), zap.Error(err))
				return
			}
		}
		if len(expired) < batch {
			break
		}
	}
	if removed, err := s.exporter.Sweep(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export sweep failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("swept export files", zap.Int("count", len(removed)))
	}
}

// HandleFailure is the queue failure hook: it marks a job failed once
// retries are exhausted.
func (s *ExportJobService) HandleFailure(job jobs.Job, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.markFailed(ctx, job.ID, err.Error())
	s.metrics.RecordExport(job.Kind, false)
}

func (s *ExportJobService) markFailed(ctx context.Context, id, message string) {
	failed := models.ExportStatusFailed
	progress := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
}

// ExportWorker bridges queue jobs to the ExportService.
type ExportWorker struct {
	repo     exportJobStore
	exporter exportGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, metrics *MetricsService, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger}
}

// Handle processes one queue job. A failed attempt puts the job back to
// QUEUED with the error so clients can see the retry.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if isNotFound(err) {
			return jobs.Permanent(err)
		}
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		queued := models.ExportStatusQueued
		reset := 0
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &result.URL,
		FilePath:     &result.RelativePath,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		return err
	}
	w.metrics.RecordExport(string(record.Type), true)
	w.logger.Info("export finished", zap.String("job_id", job.ID), zap.String("type", string(record.Type)))
	return nil
}
