package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

const executionColumns = `ce.id, ce.curriculum_item_id, ce.class_id, ce.teacher_id, ce.execution_date, ce.actual_start_time, ce.actual_end_time,
ce.completion_status, ce.student_engagement, ce.modifications_made, ce.materials_used, ce.challenges_faced, ce.notes,
ce.next_steps, ce.photos, ce.created_at, ce.updated_at`

// CurriculumExecutionRepository persists execution records. Rows are never deleted.
type CurriculumExecutionRepository struct {
	db *sqlx.DB
}

// NewCurriculumExecutionRepository constructs the repository.
func NewCurriculumExecutionRepository(db *sqlx.DB) *CurriculumExecutionRepository {
	return &CurriculumExecutionRepository{db: db}
}

// FindByKey looks up the execution of an item for a class on a date.
// sql.ErrNoRows is returned when none exists yet.
func (r *CurriculumExecutionRepository) FindByKey(ctx context.Context, itemID, classID string, date time.Time) (*models.CurriculumExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM curriculum_executions ce
WHERE ce.curriculum_item_id = $1 AND ce.class_id = $2 AND ce.execution_date = $3`
	var execution models.CurriculumExecution
	if err := r.db.GetContext(ctx, &execution, query, itemID, classID, date); err != nil {
		return nil, err
	}
	return &execution, nil
}

// Create inserts an execution. A concurrent insert for the same key fails
// with a unique violation.
func (r *CurriculumExecutionRepository) Create(ctx context.Context, execution *models.CurriculumExecution) error {
	if execution.ID == "" {
		execution.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	execution.CreatedAt = now
	execution.UpdatedAt = now
	const query = `INSERT INTO curriculum_executions (id, curriculum_item_id, class_id, teacher_id, execution_date, actual_start_time,
actual_end_time, completion_status, student_engagement, modifications_made, materials_used, challenges_faced, notes, next_steps,
photos, created_at, updated_at)
VALUES (:id, :curriculum_item_id, :class_id, :teacher_id, :execution_date, :actual_start_time, :actual_end_time,
:completion_status, :student_engagement, :modifications_made, :materials_used, :challenges_faced, :notes, :next_steps,
:photos, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, execution); err != nil {
		return fmt.Errorf("create curriculum execution: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an execution.
func (r *CurriculumExecutionRepository) Update(ctx context.Context, execution *models.CurriculumExecution) error {
	execution.UpdatedAt = time.Now().UTC()
	const query = `UPDATE curriculum_executions SET teacher_id = :teacher_id, actual_start_time = :actual_start_time,
actual_end_time = :actual_end_time, completion_status = :completion_status, student_engagement = :student_engagement,
modifications_made = :modifications_made, materials_used = :materials_used, challenges_faced = :challenges_faced,
notes = :notes, next_steps = :next_steps, photos = :photos, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, execution)
	if err != nil {
		return fmt.Errorf("update curriculum execution: %w", err)
	}
	return requireAffected(res, "update curriculum execution")
}

// List returns the executions of a class between two dates inclusive.
func (r *CurriculumExecutionRepository) List(ctx context.Context, filter models.ExecutionFilter) ([]models.CurriculumExecutionDetail, error) {
	query := `SELECT ` + executionColumns + `, ci.title AS item_title, ci.activity_type
FROM curriculum_executions ce
JOIN curriculum_items ci ON ci.id = ce.curriculum_item_id
WHERE ce.class_id = $1 AND ce.execution_date BETWEEN $2 AND $3
ORDER BY ce.execution_date ASC, ce.created_at ASC`
	executions := make([]models.CurriculumExecutionDetail, 0)
	if err := r.db.SelectContext(ctx, &executions, query, filter.ClassID, filter.From, filter.To); err != nil {
		return nil, fmt.Errorf("list curriculum executions: %w", err)
	}
	return executions, nil
}
