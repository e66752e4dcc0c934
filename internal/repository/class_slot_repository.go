package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hexfit/gymops-api/internal/models"
)

const classSlotColumns = "id, schedule_id, class_catalog_id, class_name, location_id, starts_at, ends_at, required_skills, seat_index, assignee_coach_id, version, created_at, updated_at"

// ClassSlotRepository persists the seat-bearing class occurrences of a
// generated schedule.
type ClassSlotRepository struct {
	db *sqlx.DB
}

// NewClassSlotRepository constructs the repository.
func NewClassSlotRepository(db *sqlx.DB) *ClassSlotRepository {
	return &ClassSlotRepository{db: db}
}

func (r *ClassSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreate inserts all slots of a schedule, normally inside the same
// transaction that created the schedule header so the week commits atomically.
func (r *ClassSlotRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, slots []models.ClassSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `INSERT INTO class_slots (id, schedule_id, class_catalog_id, class_name, location_id, starts_at, ends_at, required_skills, seat_index, assignee_coach_id, version, created_at, updated_at)
VALUES (:id, :schedule_id, :class_catalog_id, :class_name, :location_id, :starts_at, :ends_at, :required_skills, :seat_index, :assignee_coach_id, :version, :created_at, :updated_at)`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.Version == 0 {
			slot.Version = 1
		}
		if len(slot.RequiredSkills) == 0 {
			slot.RequiredSkills = []byte("[]")
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("insert class slot: %w", err)
		}
	}
	return nil
}

// ListBySchedule returns slots ordered by start time and seat index.
func (r *ClassSlotRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ClassSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM class_slots WHERE schedule_id = $1 ORDER BY starts_at ASC, seat_index ASC, id ASC", classSlotColumns)
	var slots []models.ClassSlot
	if err := r.db.SelectContext(ctx, &slots, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list class slots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a slot by ID.
func (r *ClassSlotRepository) FindByID(ctx context.Context, id string) (*models.ClassSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM class_slots WHERE id = $1", classSlotColumns)
	var slot models.ClassSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateAssignee sets or clears a slot's assignee guarded by an optimistic
// version check. sql.ErrNoRows signals a missing slot or a stale version.
func (r *ClassSlotRepository) UpdateAssignee(ctx context.Context, slotID string, coachID *string, expectedVersion int) (*models.ClassSlot, error) {
	query := fmt.Sprintf(`UPDATE class_slots SET assignee_coach_id = $2, version = version + 1, updated_at = $3
WHERE id = $1 AND version = $4 RETURNING %s`, classSlotColumns)
	var slot models.ClassSlot
	if err := r.db.GetContext(ctx, &slot, query, slotID, coachID, time.Now().UTC(), expectedVersion); err != nil {
		return nil, err
	}
	return &slot, nil
}
