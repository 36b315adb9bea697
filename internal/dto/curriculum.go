package dto

import "github.com/noah-isme/preschool-adp-api/internal/models"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CreateTemplateRequest describes a new curriculum template.
type CreateTemplateRequest struct {
	Name               string   `json:"name" validate:"required,max=255"`
	Description        string   `json:"description"`
	AgeGroup           string   `json:"age_group" validate:"max=64"`
	SubjectArea        string   `json:"subject_area" validate:"max=64"`
	TotalWeeks         int      `json:"total_weeks" validate:"required,min=1"`
	LearningObjectives []string `json:"learning_objectives"`
	MaterialsList      []string `json:"materials_list"`
}

// UpdateTemplateRequest replaces the editable fields of a template.
type UpdateTemplateRequest = CreateTemplateRequest

// TemplateDetail is a template with its items.
type TemplateDetail struct {
	models.CurriculumTemplate
	Items []models.CurriculumItem `json:"items"`
}

// CurriculumItemRequest creates or updates an item of a template.
type CurriculumItemRequest struct {
	Title             string   `json:"title" validate:"required,max=255"`
	Description       string   `json:"description"`
	ActivityType      string   `json:"activity_type" validate:"max=64"`
	WeekNumber        int      `json:"week_number" validate:"required,min=1"`
	DayNumber         *int     `json:"day_number" validate:"required,min=0,max=6"`
	TimeSlotID        *string  `json:"time_slot_id,omitempty" validate:"omitempty,uuid"`
	EstimatedDuration int      `json:"estimated_duration" validate:"min=0"`
	MaterialsNeeded   []string `json:"materials_needed"`
	LearningGoals     []string `json:"learning_goals"`
	SkillsDeveloped   []string `json:"skills_developed"`
}

// TimeSlotRequest creates or updates a time slot.
type TimeSlotRequest struct {
	Name            string `json:"name" validate:"required,max=64"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime         string `json:"end_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
	SortOrder       int    `json:"sort_order" validate:"min=0"`
}

// AssignTemplateRequest assigns a template to several classes.
type AssignTemplateRequest struct {
	ClassIDs  []string `json:"class_ids" validate:"required,min=1,dive,required"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// AssignmentResult is the outcome of one class in an assign batch.
type AssignmentResult struct {
	ClassID      string `json:"class_id"`
	AssignmentID string `json:"assignment_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// AssignTemplateResponse lists per-class outcomes in request order.
type AssignTemplateResponse struct {
	CurriculumID string             `json:"curriculum_id"`
	Succeeded    int                `json:"succeeded"`
	Failed       int                `json:"failed"`
	Results      []AssignmentResult `json:"results"`
}

// DueItemsResponse is the agenda of a class for one day. WeekNumber is only
// set for calendar week numbering.
type DueItemsResponse struct {
	ClassID    string                 `json:"class_id"`
	Date       string                 `json:"date"`
	DayNumber  int                    `json:"day_number"`
	WeekNumber int                    `json:"week_number,omitempty"`
	WeekMode   string                 `json:"week_mode"`
	Items      []models.ScheduledItem `json:"items"`
}

// AgendaDay groups the items of one weekday.
type AgendaDay struct {
	DayNumber int                    `json:"day_number"`
	Items     []models.ScheduledItem `json:"items"`
}

// WeekAgendaResponse lists items of the computed week for every weekday.
type WeekAgendaResponse struct {
	ClassID    string      `json:"class_id"`
	Date       string      `json:"date"`
	WeekNumber int         `json:"week_number,omitempty"`
	WeekMode   string      `json:"week_mode"`
	Days       []AgendaDay `json:"days"`
}

// RecordExecutionRequest creates or updates the execution of an item.
type RecordExecutionRequest struct {
	CurriculumItemID  string                  `json:"curriculum_item_id" validate:"required"`
	ClassID           string                  `json:"class_id" validate:"required"`
	ExecutionDate     string                  `json:"execution_date" validate:"required,datetime=2006-01-02"`
	CompletionStatus  models.CompletionStatus `json:"completion_status" validate:"required,oneof=planned in_progress completed skipped modified"`
	StudentEngagement models.Engagement       `json:"student_engagement" validate:"omitempty,oneof=low medium high"`
	ModificationsMade *string                 `json:"modifications_made,omitempty"`
	MaterialsUsed     []string                `json:"materials_used,omitempty"`
	ChallengesFaced   *string                 `json:"challenges_faced,omitempty"`
	Notes             *string                 `json:"notes,omitempty"`
	NextSteps         *string                 `json:"next_steps,omitempty"`
	Photos            []string                `json:"photos,omitempty" validate:"omitempty,dive,url"`
}

// QuickStatusRequest only changes the completion status.
type QuickStatusRequest struct {
	CurriculumItemID string                  `json:"curriculum_item_id" validate:"required"`
	ClassID          string                  `json:"class_id" validate:"required"`
	ExecutionDate    string                  `json:"execution_date" validate:"required,datetime=2006-01-02"`
	CompletionStatus models.CompletionStatus `json:"completion_status" validate:"required,oneof=planned in_progress completed skipped modified"`
}

// ExecutionIDResponse is returned after recording an execution.
type ExecutionIDResponse struct {
	ID string `json:"id"`
}
