package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

// CurriculumAssignmentRepository persists template to class assignments.
// Rows are never deleted.
type CurriculumAssignmentRepository struct {
	db *sqlx.DB
}

// NewCurriculumAssignmentRepository constructs the repository.
func NewCurriculumAssignmentRepository(db *sqlx.DB) *CurriculumAssignmentRepository {
	return &CurriculumAssignmentRepository{db: db}
}

// Create inserts one assignment on its own; callers batching several classes
// get independent commits.
func (r *CurriculumAssignmentRepository) Create(ctx context.Context, assignment *models.CurriculumAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	assignment.IsActive = true
	const query = `INSERT INTO curriculum_assignments (id, curriculum_id, class_id, start_date, end_date, assigned_by, is_active, created_at)
VALUES (:id, :curriculum_id, :class_id, :start_date, :end_date, :assigned_by, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create curriculum assignment: %w", err)
	}
	return nil
}

// ListActiveByClass returns the active assignments of a class with template details.
func (r *CurriculumAssignmentRepository) ListActiveByClass(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error) {
	const query = `SELECT ca.id, ca.curriculum_id, ca.class_id, ca.start_date, ca.end_date, ca.assigned_by, ca.is_active, ca.created_at,
ct.name AS curriculum_name, ct.total_weeks, ct.is_active AS template_is_active
FROM curriculum_assignments ca
JOIN curriculum_templates ct ON ct.id = ca.curriculum_id
WHERE ca.class_id = $1 AND ca.is_active = TRUE
ORDER BY ca.start_date DESC, ca.created_at DESC`
	assignments := make([]models.CurriculumAssignmentDetail, 0)
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list curriculum assignments: %w", err)
	}
	return assignments, nil
}

// Deactivate ends an assignment. sql.ErrNoRows means the id is unknown.
func (r *CurriculumAssignmentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE curriculum_assignments SET is_active = FALSE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate curriculum assignment: %w", err)
	}
	return requireAffected(res, "deactivate curriculum assignment")
}
