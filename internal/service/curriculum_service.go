package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

const slotClock = "15:04"

type curriculumTemplateRepository interface {
	List(ctx context.Context, filter models.CurriculumTemplateFilter) ([]models.CurriculumTemplate, error)
	FindByID(ctx context.Context, id string) (*models.CurriculumTemplate, error)
	Create(ctx context.Context, tpl *models.CurriculumTemplate) error
	Update(ctx context.Context, tpl *models.CurriculumTemplate) error
	Deactivate(ctx context.Context, id string) error
}

type curriculumItemRepository interface {
	ListByTemplate(ctx context.Context, curriculumID string) ([]models.CurriculumItem, error)
	FindByID(ctx context.Context, id string) (*models.CurriculumItem, error)
	Create(ctx context.Context, item *models.CurriculumItem) error
	Update(ctx context.Context, item *models.CurriculumItem) error
}

type timeSlotRepository interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Deactivate(ctx context.Context, id string) error
}

// CurriculumService manages templates, their items and the school day's time slots.
type CurriculumService struct {
	templates curriculumTemplateRepository
	items     curriculumItemRepository
	slots     timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCurriculumService constructs a CurriculumService.
func NewCurriculumService(templates curriculumTemplateRepository, items curriculumItemRepository, slots timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{
		templates: templates,
		items:     items,
		slots:     slots,
		validator: validate,
		logger:    logger,
	}
}

// ListTemplates returns templates ordered by name. Inactive ones are only
// included on request.
func (s *CurriculumService) ListTemplates(ctx context.Context, filter models.CurriculumTemplateFilter) ([]models.CurriculumTemplate, error) {
	filter.AgeGroup = strings.TrimSpace(filter.AgeGroup)
	filter.SubjectArea = strings.TrimSpace(filter.SubjectArea)
	templates, err := s.templates.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list curriculum templates")
	}
	return templates, nil
}

// GetTemplate returns a template together with its items.
func (s *CurriculumService) GetTemplate(ctx context.Context, id string) (*dto.TemplateDetail, error) {
	tpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	items, err := s.items.ListByTemplate(ctx, id)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list curriculum items")
	}
	return &dto.TemplateDetail{CurriculumTemplate: *tpl, Items: items}, nil
}

// CreateTemplate stores a new active template authored by actor.
func (s *CurriculumService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, actor models.AuditActor) (*models.CurriculumTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "name is required and total_weeks must be at least 1")
	}
	tpl := &models.CurriculumTemplate{CreatedBy: userIDPtr(actor)}
	applyTemplate(tpl, req)
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, appErrors.Operation(err, "failed to create curriculum template")
	}
	return tpl, nil
}

// UpdateTemplate rewrites the editable fields of a template.
func (s *CurriculumService) UpdateTemplate(ctx context.Context, id string, req dto.UpdateTemplateRequest) (*models.CurriculumTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "name is required and total_weeks must be at least 1")
	}
	tpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	applyTemplate(tpl, req)
	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to update curriculum template")
	}
	return tpl, nil
}

// DeactivateTemplate hides a template. Its items stop being due for every
// class it is assigned to.
func (s *CurriculumService) DeactivateTemplate(ctx context.Context, id string) error {
	if err := s.templates.Deactivate(ctx, id); err != nil {
		return storeError(err, "curriculum template not found", "failed to deactivate curriculum template")
	}
	return nil
}

func applyTemplate(tpl *models.CurriculumTemplate, req dto.CreateTemplateRequest) {
	tpl.Name = req.Name
	tpl.Description = strings.TrimSpace(req.Description)
	tpl.AgeGroup = strings.TrimSpace(req.AgeGroup)
	tpl.SubjectArea = strings.TrimSpace(req.SubjectArea)
	tpl.TotalWeeks = req.TotalWeeks
	tpl.LearningObjectives = pq.StringArray(cleanList(req.LearningObjectives))
	tpl.MaterialsList = pq.StringArray(cleanList(req.MaterialsList))
}

// ListItems returns the items of a template ordered by week, day and slot.
func (s *CurriculumService) ListItems(ctx context.Context, templateID string) ([]models.CurriculumItem, error) {
	if _, err := s.templates.FindByID(ctx, templateID); err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	items, err := s.items.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list curriculum items")
	}
	return items, nil
}

// GetItem returns a single item.
func (s *CurriculumService) GetItem(ctx context.Context, id string) (*models.CurriculumItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "curriculum item not found", "failed to load curriculum item")
	}
	return item, nil
}

// CreateItem adds an item to an existing template.
func (s *CurriculumService) CreateItem(ctx context.Context, templateID string, req dto.CurriculumItemRequest) (*models.CurriculumItem, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	if err := s.checkItem(ctx, tpl, &req); err != nil {
		return nil, err
	}
	item := &models.CurriculumItem{CurriculumID: tpl.ID}
	applyItem(item, req)
	if err := s.items.Create(ctx, item); err != nil {
		return nil, appErrors.Operation(err, "failed to create curriculum item")
	}
	return item, nil
}

// UpdateItem rewrites an item in place. The owning template never changes.
func (s *CurriculumService) UpdateItem(ctx context.Context, id string, req dto.CurriculumItemRequest) (*models.CurriculumItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "curriculum item not found", "failed to load curriculum item")
	}
	tpl, err := s.templates.FindByID(ctx, item.CurriculumID)
	if err != nil {
		return nil, storeError(err, "curriculum template not found", "failed to load curriculum template")
	}
	if err := s.checkItem(ctx, tpl, &req); err != nil {
		return nil, err
	}
	applyItem(item, req)
	if err := s.items.Update(ctx, item); err != nil {
		return nil, storeError(err, "curriculum item not found", "failed to update curriculum item")
	}
	return item, nil
}

func (s *CurriculumService) checkItem(ctx context.Context, tpl *models.CurriculumTemplate, req *dto.CurriculumItemRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.TimeSlotID = trimPtr(req.TimeSlotID)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "title, week_number (>=1) and day_number (0-6) are required")
	}
	if req.WeekNumber > tpl.TotalWeeks {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week_number exceeds the template's %d weeks", tpl.TotalWeeks))
	}
	if req.TimeSlotID != nil {
		if _, err := s.slots.FindByID(ctx, *req.TimeSlotID); err != nil {
			if isNotFound(err) {
				return appErrors.Clone(appErrors.ErrValidation, "time slot does not exist")
			}
			return appErrors.Operation(err, "failed to load time slot")
		}
	}
	return nil
}

func applyItem(item *models.CurriculumItem, req dto.CurriculumItemRequest) {
	item.Title = req.Title
	item.Description = strings.TrimSpace(req.Description)
	item.ActivityType = strings.TrimSpace(req.ActivityType)
	item.WeekNumber = req.WeekNumber
	item.DayNumber = *req.DayNumber
	item.TimeSlotID = req.TimeSlotID
	item.EstimatedDuration = req.EstimatedDuration
	item.MaterialsNeeded = pq.StringArray(cleanList(req.MaterialsNeeded))
	item.LearningGoals = pq.StringArray(cleanList(req.LearningGoals))
	item.SkillsDeveloped = pq.StringArray(cleanList(req.SkillsDeveloped))
}

// ListTimeSlots returns the active slots by sort order.
func (s *CurriculumService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list time slots")
	}
	return slots, nil
}

// CreateTimeSlot stores a new active slot.
func (s *CurriculumService) CreateTimeSlot(ctx context.Context, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.checkSlot(&req); err != nil {
		return nil, err
	}
	slot := &models.TimeSlot{}
	applySlot(slot, req)
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Operation(err, "failed to create time slot")
	}
	return slot, nil
}

// UpdateTimeSlot rewrites a slot.
func (s *CurriculumService) UpdateTimeSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.checkSlot(&req); err != nil {
		return nil, err
	}
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "time slot not found", "failed to load time slot")
	}
	applySlot(slot, req)
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, storeError(err, "time slot not found", "failed to update time slot")
	}
	return slot, nil
}

// DeactivateTimeSlot hides a slot from listings.
func (s *CurriculumService) DeactivateTimeSlot(ctx context.Context, id string) error {
	if err := s.slots.Deactivate(ctx, id); err != nil {
		return storeError(err, "time slot not found", "failed to deactivate time slot")
	}
	return nil
}

func (s *CurriculumService) checkSlot(req *dto.TimeSlotRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndTime = strings.TrimSpace(req.EndTime)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "name, start_time and end_time (HH:MM) are required")
	}
	// zero-padded HH:MM compares lexically
	if req.EndTime <= req.StartTime {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	if req.DurationMinutes == 0 {
		start, _ := time.Parse(slotClock, req.StartTime)
		end, _ := time.Parse(slotClock, req.EndTime)
		req.DurationMinutes = int(end.Sub(start).Minutes())
	}
	return nil
}

func applySlot(slot *models.TimeSlot, req dto.TimeSlotRequest) {
	slot.Name = req.Name
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	slot.DurationMinutes = req.DurationMinutes
	slot.SortOrder = req.SortOrder
}
