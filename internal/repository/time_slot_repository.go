package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

const timeSlotColumns = `id, name, start_time, end_time, duration_minutes, sort_order, is_active, created_at, updated_at`

// TimeSlotRepository persists the blocks of the school day.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs the repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListActive returns active slots in day order.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE is_active = TRUE ORDER BY sort_order ASC, start_time ASC`
	slots := make([]models.TimeSlot, 0)
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID returns a slot regardless of its active flag.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.IsActive = true
	const query = `INSERT INTO time_slots (id, name, start_time, end_time, duration_minutes, sort_order, is_active, created_at, updated_at)
VALUES (:id, :name, :start_time, :end_time, :duration_minutes, :sort_order, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update rewrites a slot.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET name = :name, start_time = :start_time, end_time = :end_time,
duration_minutes = :duration_minutes, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return requireAffected(res, "update time slot")
}

// Deactivate hides a slot. Items pointing at it keep the reference.
func (r *TimeSlotRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE time_slots SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate time slot: %w", err)
	}
	return requireAffected(res, "deactivate time slot")
}
