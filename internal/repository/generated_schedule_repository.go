package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hexfit/gymops-api/internal/models"
)

// ErrDuplicateSchedule is returned when a live schedule already exists for the
// same (team, location, week start) tuple.
var ErrDuplicateSchedule = errors.New("schedule already exists for tuple")

const uniqueViolationCode = "23505"

// GeneratedScheduleRepository persists generated weekly schedules.
type GeneratedScheduleRepository struct {
	db *sqlx.DB
}

// NewGeneratedScheduleRepository constructs the repository.
func NewGeneratedScheduleRepository(db *sqlx.DB) *GeneratedScheduleRepository {
	return &GeneratedScheduleRepository{db: db}
}

func (r *GeneratedScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a schedule header. The unique index on
// (team_id, location_id, week_start) maps to ErrDuplicateSchedule.
func (r *GeneratedScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.GeneratedSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = models.GeneratedScheduleStatusDraft
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}
	if len(schedule.Meta) == 0 {
		schedule.Meta = []byte("{}")
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO generated_schedules (id, team_id, location_id, week_start, status, meta, version, created_at, updated_at)
VALUES (:id, :team_id, :location_id, :week_start, :status, :meta, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, schedule); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return ErrDuplicateSchedule
		}
		return fmt.Errorf("create generated schedule: %w", err)
	}
	return nil
}

// FindByID fetches a schedule by ID.
func (r *GeneratedScheduleRepository) FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error) {
	const query = `SELECT id, team_id, location_id, week_start, status, meta, version, created_at, updated_at FROM generated_schedules WHERE id = $1`
	var schedule models.GeneratedSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByTeamLocation returns schedules for a team/location, newest week first.
func (r *GeneratedScheduleRepository) ListByTeamLocation(ctx context.Context, teamID, locationID string) ([]models.GeneratedSchedule, error) {
	const query = `SELECT id, team_id, location_id, week_start, status, meta, version, created_at, updated_at
FROM generated_schedules WHERE team_id = $1 AND location_id = $2 ORDER BY week_start DESC`
	var schedules []models.GeneratedSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, teamID, locationID); err != nil {
		return nil, fmt.Errorf("list generated schedules: %w", err)
	}
	return schedules, nil
}

// UpdateStatus transitions a schedule's lifecycle status.
func (r *GeneratedScheduleRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.GeneratedScheduleStatus) error {
	const query = `UPDATE generated_schedules SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	return nil
}

// Delete removes a schedule; class slots cascade at the database level.
func (r *GeneratedScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM generated_schedules WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete generated schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// ErrScheduleNotFound is returned when a delete targets a missing schedule.
var ErrScheduleNotFound = errors.New("generated schedule not found")
