package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

const itemColumns = `ci.id, ci.curriculum_id, ci.title, ci.description, ci.activity_type, ci.week_number, ci.day_number,
ci.time_slot_id, ci.estimated_duration, ci.materials_needed, ci.learning_goals, ci.skills_developed, ci.created_at, ci.updated_at`

// CurriculumItemRepository persists curriculum items and resolves what a
// class has scheduled.
type CurriculumItemRepository struct {
	db *sqlx.DB
}

// NewCurriculumItemRepository constructs the repository.
func NewCurriculumItemRepository(db *sqlx.DB) *CurriculumItemRepository {
	return &CurriculumItemRepository{db: db}
}

// ListByTemplate returns the items of a template in week, day and slot order.
func (r *CurriculumItemRepository) ListByTemplate(ctx context.Context, curriculumID string) ([]models.CurriculumItem, error) {
	query := `SELECT ` + itemColumns + ` FROM curriculum_items ci
LEFT JOIN time_slots ts ON ts.id = ci.time_slot_id
WHERE ci.curriculum_id = $1
ORDER BY ci.week_number ASC, ci.day_number ASC, ts.sort_order ASC NULLS LAST, ci.created_at ASC`
	items := make([]models.CurriculumItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, curriculumID); err != nil {
		return nil, fmt.Errorf("list curriculum items: %w", err)
	}
	return items, nil
}

// ListForClass returns every item of the templates actively assigned to a
// class whose assignment started on or before date. Inactive templates are
// excluded. Rows carry assignment dates so callers can derive week numbers;
// an item assigned through several assignments appears once per assignment,
// earliest start first.
func (r *CurriculumItemRepository) ListForClass(ctx context.Context, classID string, date time.Time) ([]models.ScheduledItem, error) {
	query := `SELECT ` + itemColumns + `,
ct.name AS curriculum_name, ca.id AS assignment_id, ca.start_date AS assignment_start_date, ca.end_date AS assignment_end_date,
ts.name AS time_slot_name, ts.start_time AS time_slot_start, ts.end_time AS time_slot_end, ts.sort_order AS time_slot_sort_order
FROM curriculum_assignments ca
JOIN curriculum_templates ct ON ct.id = ca.curriculum_id AND ct.is_active = TRUE
JOIN curriculum_items ci ON ci.curriculum_id = ca.curriculum_id
LEFT JOIN time_slots ts ON ts.id = ci.time_slot_id
WHERE ca.class_id = $1 AND ca.is_active = TRUE AND ca.start_date <= $2
ORDER BY ci.created_at ASC, ci.id ASC, ca.start_date ASC, ca.id ASC`
	items := make([]models.ScheduledItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, classID, date); err != nil {
		return nil, fmt.Errorf("list curriculum items for class: %w", err)
	}
	return items, nil
}

// FindByID returns a single item.
func (r *CurriculumItemRepository) FindByID(ctx context.Context, id string) (*models.CurriculumItem, error) {
	query := `SELECT ` + itemColumns + ` FROM curriculum_items ci WHERE ci.id = $1`
	var item models.CurriculumItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts an item.
func (r *CurriculumItemRepository) Create(ctx context.Context, item *models.CurriculumItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	const query = `INSERT INTO curriculum_items (id, curriculum_id, title, description, activity_type, week_number, day_number, time_slot_id,
estimated_duration, materials_needed, learning_goals, skills_developed, created_at, updated_at)
VALUES (:id, :curriculum_id, :title, :description, :activity_type, :week_number, :day_number, :time_slot_id,
:estimated_duration, :materials_needed, :learning_goals, :skills_developed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create curriculum item: %w", err)
	}
	return nil
}

// Update rewrites an item. The owning template cannot change.
func (r *CurriculumItemRepository) Update(ctx context.Context, item *models.CurriculumItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE curriculum_items SET title = :title, description = :description, activity_type = :activity_type,
week_number = :week_number, day_number = :day_number, time_slot_id = :time_slot_id, estimated_duration = :estimated_duration,
materials_needed = :materials_needed, learning_goals = :learning_goals, skills_developed = :skills_developed, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update curriculum item: %w", err)
	}
	return requireAffected(res, "update curriculum item")
}
