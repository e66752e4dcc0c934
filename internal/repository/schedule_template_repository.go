package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hexfit/gymops-api/internal/models"
)

// ScheduleTemplateRepository reads recurring weekly templates. Template CRUD
// lives in the catalog module; the scheduler only consumes them.
type ScheduleTemplateRepository struct {
	db *sqlx.DB
}

// NewScheduleTemplateRepository constructs the repository.
func NewScheduleTemplateRepository(db *sqlx.DB) *ScheduleTemplateRepository {
	return &ScheduleTemplateRepository{db: db}
}

// FindByID fetches a template by ID.
func (r *ScheduleTemplateRepository) FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error) {
	const query = `SELECT id, team_id, name, active, created_at, updated_at FROM schedule_templates WHERE id = $1`
	var template models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListSlots returns a template's slot blueprints in definition order.
func (r *ScheduleTemplateRepository) ListSlots(ctx context.Context, templateID string) ([]models.TemplateSlot, error) {
	const query = `SELECT id, template_id, day_of_week, start_time, end_time, class_catalog_id, class_name, location_id, required_skills, required_coaches, position
FROM schedule_template_slots WHERE template_id = $1 ORDER BY position ASC`
	var slots []models.TemplateSlot
	if err := r.db.SelectContext(ctx, &slots, query, templateID); err != nil {
		return nil, fmt.Errorf("list template slots: %w", err)
	}
	return slots, nil
}
