package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type curriculumAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.CurriculumAssignment) error
	ListActiveByClass(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error)
	Deactivate(ctx context.Context, id string) error
}

type templateFinder interface {
	FindByID(ctx context.Context, id string) (*models.CurriculumTemplate, error)
}

// AssignmentService links curriculum templates to classes.
type AssignmentService struct {
	assignments curriculumAssignmentRepository
	templates   templateFinder
	audit       auditTrail
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(assignments curriculumAssignmentRepository, templates templateFinder, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		templates:   templates,
		audit:       auditTrail{repo: audit, logger: logger},
		validator:   validate,
		logger:      logger,
	}
}

// AssignTemplate creates one assignment per class. Inserts are independent:
// rows that succeeded stay committed when a later class fails. A partial
// failure returns the full result list together with ErrPartialFailure.
func (s *AssignmentService) AssignTemplate(ctx context.Context, curriculumID string, req dto.AssignTemplateRequest, actor models.AuditActor) (*dto.AssignTemplateResponse, error) {
	req.ClassIDs = uniqueIDs(req.ClassIDs)
	req.EndDate = trimPtr(req.EndDate)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "class_ids and start_date (YYYY-MM-DD) are required")
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	assignment := models.CurriculumAssignment{StartDate: start, AssignedBy: actor.UserID}
	if req.EndDate != nil {
		end, err := ParseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
		}
		assignment.EndDate = &end
	}

	tpl, err := s.templates.FindByID(ctx, curriculumID)
	if err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	if !tpl.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "curriculum template is inactive")
	}
	assignment.CurriculumID = tpl.ID

	resp := &dto.AssignTemplateResponse{CurriculumID: tpl.ID, Results: make([]dto.AssignmentResult, 0, len(req.ClassIDs))}
	var lastErr error
	for _, classID := range req.ClassIDs {
		row := assignment
		row.ClassID = classID
		if err := s.assignments.Create(ctx, &row); err != nil {
			lastErr = err
			resp.Failed++
			resp.Results = append(resp.Results, dto.AssignmentResult{ClassID: classID, Error: err.Error()})
			s.logger.Warn("curriculum assignment failed", zap.String("curriculum_id", tpl.ID), zap.String("class_id", classID), zap.Error(err))
			continue
		}
		resp.Succeeded++
		resp.Results = append(resp.Results, dto.AssignmentResult{ClassID: classID, AssignmentID: row.ID})
		s.audit.record(ctx, actor, models.AuditActionTemplateAssign, "curriculum_assignment", row.ID, nil, row)
	}

	switch {
	case resp.Failed == 0:
		return resp, nil
	case resp.Succeeded == 0:
		return nil, appErrors.Operation(lastErr, "failed to assign curriculum template")
	default:
		return resp, appErrors.Clone(appErrors.ErrPartialFailure, fmt.Sprintf("%d of %d classes could not be assigned", resp.Failed, len(req.ClassIDs)))
	}
}

// ListAssignments returns the active assignments of a class.
func (s *AssignmentService) ListAssignments(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	assignments, err := s.assignments.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list curriculum assignments")
	}
	return assignments, nil
}

// DeactivateAssignment ends an assignment. The row is kept.
func (s *AssignmentService) DeactivateAssignment(ctx context.Context, id string, actor models.AuditActor) error {
	if err := s.assignments.Deactivate(ctx, id); err != nil {
		return storeError(err, "curriculum assignment not found", "failed to deactivate curriculum assignment")
	}
	s.audit.record(ctx, actor, models.AuditActionAssignmentDeactivate, "curriculum_assignment", id, map[string]bool{"is_active": true}, map[string]bool{"is_active": false})
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range cleanList(ids) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
