package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

const templateColumns = `id, name, description, age_group, subject_area, total_weeks, learning_objectives, materials_list, is_active, created_by, created_at, updated_at`

// CurriculumTemplateRepository persists curriculum templates.
type CurriculumTemplateRepository struct {
	db *sqlx.DB
}

// NewCurriculumTemplateRepository constructs the repository.
func NewCurriculumTemplateRepository(db *sqlx.DB) *CurriculumTemplateRepository {
	return &CurriculumTemplateRepository{db: db}
}

// List returns templates ordered by name.
func (r *CurriculumTemplateRepository) List(ctx context.Context, filter models.CurriculumTemplateFilter) ([]models.CurriculumTemplate, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 2)
	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.AgeGroup != "" {
		args = append(args, filter.AgeGroup)
		conditions = append(conditions, fmt.Sprintf("age_group = $%d", len(args)))
	}
	if filter.SubjectArea != "" {
		args = append(args, filter.SubjectArea)
		conditions = append(conditions, fmt.Sprintf("subject_area = $%d", len(args)))
	}
	query := `SELECT ` + templateColumns + ` FROM curriculum_templates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	templates := make([]models.CurriculumTemplate, 0)
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list curriculum templates: %w", err)
	}
	return templates, nil
}

// FindByID returns a template regardless of its active flag.
func (r *CurriculumTemplateRepository) FindByID(ctx context.Context, id string) (*models.CurriculumTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM curriculum_templates WHERE id = $1`
	var tpl models.CurriculumTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Create inserts a template.
func (r *CurriculumTemplateRepository) Create(ctx context.Context, tpl *models.CurriculumTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	tpl.IsActive = true
	const query = `INSERT INTO curriculum_templates (id, name, description, age_group, subject_area, total_weeks, learning_objectives, materials_list, is_active, created_by, created_at, updated_at)
VALUES (:id, :name, :description, :age_group, :subject_area, :total_weeks, :learning_objectives, :materials_list, :is_active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("create curriculum template: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a template.
func (r *CurriculumTemplateRepository) Update(ctx context.Context, tpl *models.CurriculumTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE curriculum_templates SET name = :name, description = :description, age_group = :age_group,
subject_area = :subject_area, total_weeks = :total_weeks, learning_objectives = :learning_objectives,
materials_list = :materials_list, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, tpl)
	if err != nil {
		return fmt.Errorf("update curriculum template: %w", err)
	}
	return requireAffected(res, "update curriculum template")
}

// Deactivate hides a template. Its items and assignments are kept.
func (r *CurriculumTemplateRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE curriculum_templates SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate curriculum template: %w", err)
	}
	return requireAffected(res, "deactivate curriculum template")
}
