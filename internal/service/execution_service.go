package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/database"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type curriculumExecutionRepository interface {
	FindByKey(ctx context.Context, itemID, classID string, date time.Time) (*models.CurriculumExecution, error)
	Create(ctx context.Context, execution *models.CurriculumExecution) error
	Update(ctx context.Context, execution *models.CurriculumExecution) error
	List(ctx context.Context, filter models.ExecutionFilter) ([]models.CurriculumExecutionDetail, error)
}

type itemFinder interface {
	FindByID(ctx context.Context, id string) (*models.CurriculumItem, error)
}

// executionKey identifies the single execution row of an item for a class on a day.
type executionKey struct {
	itemID  string
	classID string
	date    time.Time
}

// ExecutionService records how planned items were carried out.
type ExecutionService struct {
	executions curriculumExecutionRepository
	items      itemFinder
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewExecutionService constructs an ExecutionService.
func NewExecutionService(executions curriculumExecutionRepository, items itemFinder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExecutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionService{
		executions: executions,
		items:      items,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordExecution creates or updates the execution of an item for a class on
// a date and returns its id. Omitted optional fields keep their stored value.
func (s *ExecutionService) RecordExecution(ctx context.Context, req dto.RecordExecutionRequest, actor models.AuditActor) (string, error) {
	req.CurriculumItemID = strings.TrimSpace(req.CurriculumItemID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err, "curriculum_item_id, class_id, execution_date and a valid completion_status are required")
	}
	key, err := s.key(ctx, req.CurriculumItemID, req.ClassID, req.ExecutionDate)
	if err != nil {
		return "", err
	}

	id, err := s.upsert(ctx, key, func(execution *models.CurriculumExecution, created bool) {
		s.applyStatus(execution, req.CompletionStatus, actor)
		switch {
		case req.StudentEngagement != "":
			execution.StudentEngagement = req.StudentEngagement
		case created:
			execution.StudentEngagement = models.EngagementMedium
		}
		setText(&execution.ModificationsMade, req.ModificationsMade)
		setText(&execution.ChallengesFaced, req.ChallengesFaced)
		setText(&execution.Notes, req.Notes)
		setText(&execution.NextSteps, req.NextSteps)
		if req.MaterialsUsed != nil {
			execution.MaterialsUsed = pq.StringArray(cleanList(req.MaterialsUsed))
		}
		if req.Photos != nil {
			execution.Photos = pq.StringArray(cleanList(req.Photos))
		}
	})
	if err != nil {
		return "", err
	}
	s.metrics.RecordExecution(string(req.CompletionStatus))
	return id, nil
}

// QuickSetStatus only moves the completion status. Engagement and notes of an
// existing record are preserved; a new record starts at medium engagement.
func (s *ExecutionService) QuickSetStatus(ctx context.Context, req dto.QuickStatusRequest, actor models.AuditActor) (string, error) {
	req.CurriculumItemID = strings.TrimSpace(req.CurriculumItemID)
	req.ClassID = strings.TrimSpace(req.ClassID)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err, "curriculum_item_id, class_id, execution_date and a valid completion_status are required")
	}
	key, err := s.key(ctx, req.CurriculumItemID, req.ClassID, req.ExecutionDate)
	if err != nil {
		return "", err
	}

	id, err := s.upsert(ctx, key, func(execution *models.CurriculumExecution, created bool) {
		s.applyStatus(execution, req.CompletionStatus, actor)
		if created {
			execution.StudentEngagement = models.EngagementMedium
		}
	})
	if err != nil {
		return "", err
	}
	s.metrics.RecordExecution(string(req.CompletionStatus))
	return id, nil
}

// ListExecutions returns what a class recorded on one day.
func (s *ExecutionService) ListExecutions(ctx context.Context, classID string, date time.Time) ([]models.CurriculumExecutionDetail, error) {
	date = dateOnly(date)
	return s.ListExecutionRange(ctx, classID, date, date)
}

// ListExecutionRange returns the executions of a class between two dates inclusive.
func (s *ExecutionService) ListExecutionRange(ctx context.Context, classID string, from, to time.Time) ([]models.CurriculumExecutionDetail, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	executions, err := s.executions.List(ctx, models.ExecutionFilter{ClassID: classID, From: from, To: to})
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list curriculum executions")
	}
	return executions, nil
}

func (s *ExecutionService) key(ctx context.Context, itemID, classID, rawDate string) (executionKey, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return executionKey{}, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return executionKey{}, storeError(err, "curriculum item not found", "failed to load curriculum item")
	}
	return executionKey{itemID: itemID, classID: classID, date: date}, nil
}

// upsert finds the execution for key or creates it. When a concurrent request
// inserts the same key first, the unique index rejects this insert and the
// winner's row is updated instead.
func (s *ExecutionService) upsert(ctx context.Context, key executionKey, apply func(execution *models.CurriculumExecution, created bool)) (string, error) {
	existing, err := s.executions.FindByKey(ctx, key.itemID, key.classID, key.date)
	switch {
	case err == nil:
		return s.update(ctx, existing, apply)
	case !isNotFound(err):
		return "", appErrors.Operation(err, "failed to load curriculum execution")
	}

	execution := &models.CurriculumExecution{
		CurriculumItemID: key.itemID,
		ClassID:          key.classID,
		ExecutionDate:    key.date,
		MaterialsUsed:    pq.StringArray{},
		Photos:           pq.StringArray{},
	}
	apply(execution, true)
	if err := s.executions.Create(ctx, execution); err != nil {
		if !database.IsUniqueViolation(err) {
			return "", appErrors.Operation(err, "failed to record curriculum execution")
		}
		s.logger.Debug("execution created concurrently, updating instead",
			zap.String("curriculum_item_id", key.itemID), zap.String("class_id", key.classID))
		existing, err := s.executions.FindByKey(ctx, key.itemID, key.classID, key.date)
		if err != nil {
			return "", appErrors.Operation(err, "failed to load curriculum execution")
		}
		return s.update(ctx, existing, apply)
	}
	return execution.ID, nil
}

func (s *ExecutionService) update(ctx context.Context, execution *models.CurriculumExecution, apply func(*models.CurriculumExecution, bool)) (string, error) {
	apply(execution, false)
	if err := s.executions.Update(ctx, execution); err != nil {
		return "", storeError(err, "curriculum execution not found", "failed to update curriculum execution")
	}
	return execution.ID, nil
}

// applyStatus sets the status and stamps actual start and end times. Both
// stamps are written once; any transition is accepted.
func (s *ExecutionService) applyStatus(execution *models.CurriculumExecution, status models.CompletionStatus, actor models.AuditActor) {
	now := s.now()
	execution.CompletionStatus = status
	if actor.UserID != "" {
		execution.TeacherID = actor.UserID
	}
	if status != models.StatusPlanned && execution.ActualStartTime == nil {
		execution.ActualStartTime = &now
	}
	if status == models.StatusCompleted && execution.ActualEndTime == nil {
		execution.ActualEndTime = &now
	}
}

func setText(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
