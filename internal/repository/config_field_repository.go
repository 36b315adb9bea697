package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

const configFieldColumns = `id, category, label, value, description, sort_order, is_active, created_at, updated_at`

// ConfigFieldRepository persists option catalog entries.
type ConfigFieldRepository struct {
	db *sqlx.DB
}

// NewConfigFieldRepository constructs the repository.
func NewConfigFieldRepository(db *sqlx.DB) *ConfigFieldRepository {
	return &ConfigFieldRepository{db: db}
}

// ListActiveByCategory returns active options of a category, lowest sort order first.
func (r *ConfigFieldRepository) ListActiveByCategory(ctx context.Context, category string) ([]models.ConfigField, error) {
	query := `SELECT ` + configFieldColumns + ` FROM config_fields
WHERE category = $1 AND is_active = TRUE
ORDER BY sort_order ASC, created_at ASC`
	fields := make([]models.ConfigField, 0)
	if err := r.db.SelectContext(ctx, &fields, query, category); err != nil {
		return nil, fmt.Errorf("list config fields: %w", err)
	}
	return fields, nil
}

// CountActiveByCategory counts active options of a category.
func (r *ConfigFieldRepository) CountActiveByCategory(ctx context.Context, category string) (int, error) {
	const query = `SELECT COUNT(*) FROM config_fields WHERE category = $1 AND is_active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, category); err != nil {
		return 0, fmt.Errorf("count config fields: %w", err)
	}
	return count, nil
}

// ListCategories returns every category that has at least one active option.
func (r *ConfigFieldRepository) ListCategories(ctx context.Context) ([]models.OptionCategory, error) {
	const query = `SELECT category, COUNT(*) AS count FROM config_fields
WHERE is_active = TRUE GROUP BY category ORDER BY category ASC`
	categories := make([]models.OptionCategory, 0)
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list config field categories: %w", err)
	}
	return categories, nil
}

// FindByID returns an option regardless of its active flag.
func (r *ConfigFieldRepository) FindByID(ctx context.Context, id string) (*models.ConfigField, error) {
	query := `SELECT ` + configFieldColumns + ` FROM config_fields WHERE id = $1`
	var field models.ConfigField
	if err := r.db.GetContext(ctx, &field, query, id); err != nil {
		return nil, err
	}
	return &field, nil
}

// Create inserts a new option.
func (r *ConfigFieldRepository) Create(ctx context.Context, field *models.ConfigField) error {
	if field.ID == "" {
		field.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	field.CreatedAt = now
	field.UpdatedAt = now
	field.IsActive = true
	const query = `INSERT INTO config_fields (id, category, label, value, description, sort_order, is_active, created_at, updated_at)
VALUES (:id, :category, :label, :value, :description, :sort_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, field); err != nil {
		return fmt.Errorf("create config field: %w", err)
	}
	return nil
}

// Update rewrites label, value and description of an active option.
// sql.ErrNoRows is returned when no active option has the id.
func (r *ConfigFieldRepository) Update(ctx context.Context, field *models.ConfigField) error {
	field.UpdatedAt = time.Now().UTC()
	const query = `UPDATE config_fields SET label = :label, value = :value, description = :description, updated_at = :updated_at
WHERE id = :id AND is_active = TRUE`
	res, err := r.db.NamedExecContext(ctx, query, field)
	if err != nil {
		return fmt.Errorf("update config field: %w", err)
	}
	return requireAffected(res, "update config field")
}

// Deactivate clears the active flag. Deactivating an inactive option
// succeeds; sql.ErrNoRows means the id is unknown.
func (r *ConfigFieldRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE config_fields SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate config field: %w", err)
	}
	return requireAffected(res, "deactivate config field")
}

func requireAffected(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
