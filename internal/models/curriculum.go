package models

import (
	"time"

	"github.com/lib/pq"
)

// CompletionStatus is the lifecycle state of an execution record.
type CompletionStatus string

const (
	StatusPlanned    CompletionStatus = "planned"
	StatusInProgress CompletionStatus = "in_progress"
	StatusCompleted  CompletionStatus = "completed"
	StatusSkipped    CompletionStatus = "skipped"
	StatusModified   CompletionStatus = "modified"
)

// Engagement grades how involved the children were.
type Engagement string

const (
	EngagementLow    Engagement = "low"
	EngagementMedium Engagement = "medium"
	EngagementHigh   Engagement = "high"
)

// CurriculumTemplate is a reusable multi-week plan.
type CurriculumTemplate struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Description        string         `db:"description" json:"description"`
	AgeGroup           string         `db:"age_group" json:"age_group"`
	SubjectArea        string         `db:"subject_area" json:"subject_area"`
	TotalWeeks         int            `db:"total_weeks" json:"total_weeks"`
	LearningObjectives pq.StringArray `db:"learning_objectives" json:"learning_objectives"`
	MaterialsList      pq.StringArray `db:"materials_list" json:"materials_list"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	CreatedBy          *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// CurriculumTemplateFilter narrows template listings.
type CurriculumTemplateFilter struct {
	AgeGroup        string
	SubjectArea     string
	IncludeInactive bool
}

// CurriculumItem is a single planned activity of a template. DayNumber uses
// 0 for Sunday.
type CurriculumItem struct {
	ID                string         `db:"id" json:"id"`
	CurriculumID      string         `db:"curriculum_id" json:"curriculum_id"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	ActivityType      string         `db:"activity_type" json:"activity_type"`
	WeekNumber        int            `db:"week_number" json:"week_number"`
	DayNumber         int            `db:"day_number" json:"day_number"`
	TimeSlotID        *string        `db:"time_slot_id" json:"time_slot_id,omitempty"`
	EstimatedDuration int            `db:"estimated_duration" json:"estimated_duration"`
	MaterialsNeeded   pq.StringArray `db:"materials_needed" json:"materials_needed"`
	LearningGoals     pq.StringArray `db:"learning_goals" json:"learning_goals"`
	SkillsDeveloped   pq.StringArray `db:"skills_developed" json:"skills_developed"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// TimeSlot is a named block of the school day.
type TimeSlot struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	SortOrder       int       `db:"sort_order" json:"sort_order"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CurriculumAssignment links a template to a class from StartDate on.
type CurriculumAssignment struct {
	ID           string     `db:"id" json:"id"`
	CurriculumID string     `db:"curriculum_id" json:"curriculum_id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	AssignedBy   string     `db:"assigned_by" json:"assigned_by"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// CurriculumAssignmentDetail is an assignment joined with its template.
type CurriculumAssignmentDetail struct {
	CurriculumAssignment
	CurriculumName   string `db:"curriculum_name" json:"curriculum_name"`
	TotalWeeks       int    `db:"total_weeks" json:"total_weeks"`
	TemplateIsActive bool   `db:"template_is_active" json:"template_is_active"`
}

// ScheduledItem is a curriculum item as seen from a class on a given day,
// carrying its time slot and assignment context.
type ScheduledItem struct {
	CurriculumItem
	CurriculumName      string     `db:"curriculum_name" json:"curriculum_name"`
	AssignmentID        string     `db:"assignment_id" json:"assignment_id"`
	AssignmentStartDate time.Time  `db:"assignment_start_date" json:"-"`
	AssignmentEndDate   *time.Time `db:"assignment_end_date" json:"-"`
	TimeSlotName        *string    `db:"time_slot_name" json:"time_slot_name,omitempty"`
	TimeSlotStart       *string    `db:"time_slot_start" json:"time_slot_start,omitempty"`
	TimeSlotEnd         *string    `db:"time_slot_end" json:"time_slot_end,omitempty"`
	TimeSlotSortOrder   *int       `db:"time_slot_sort_order" json:"time_slot_sort_order,omitempty"`
}

// CurriculumExecution records how an item went for a class on a date.
type CurriculumExecution struct {
	ID                string           `db:"id" json:"id"`
	CurriculumItemID  string           `db:"curriculum_item_id" json:"curriculum_item_id"`
	ClassID           string           `db:"class_id" json:"class_id"`
	TeacherID         string           `db:"teacher_id" json:"teacher_id"`
	ExecutionDate     time.Time        `db:"execution_date" json:"execution_date"`
	ActualStartTime   *time.Time       `db:"actual_start_time" json:"actual_start_time,omitempty"`
	ActualEndTime     *time.Time       `db:"actual_end_time" json:"actual_end_time,omitempty"`
	CompletionStatus  CompletionStatus `db:"completion_status" json:"completion_status"`
	StudentEngagement Engagement       `db:"student_engagement" json:"student_engagement"`
	ModificationsMade string           `db:"modifications_made" json:"modifications_made"`
	MaterialsUsed     pq.StringArray   `db:"materials_used" json:"materials_used"`
	ChallengesFaced   string           `db:"challenges_faced" json:"challenges_faced"`
	Notes             string           `db:"notes" json:"notes"`
	NextSteps         string           `db:"next_steps" json:"next_steps"`
	Photos            pq.StringArray   `db:"photos" json:"photos"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// CurriculumExecutionDetail adds the item title for day views and exports.
type CurriculumExecutionDetail struct {
	CurriculumExecution
	ItemTitle    string `db:"item_title" json:"item_title"`
	ActivityType string `db:"activity_type" json:"activity_type"`
}

// ExecutionFilter selects executions of a class in a date range.
type ExecutionFilter struct {
	ClassID string
	From    time.Time
	To      time.Time
}
