package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hexfit/gymops-api/internal/models"
)

const coachColumns = "id, user_id, team_id, full_name, skills, blackouts, unavailability, weekly_class_limit, scheduling_preference, active, created_at, updated_at"

// CoachRepository manages persistence for coaches. The roster itself is
// maintained by the membership module; this service only reads it.
type CoachRepository struct {
	db *sqlx.DB
}

// NewCoachRepository constructs a CoachRepository.
func NewCoachRepository(db *sqlx.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

// List returns coaches matching filters along with total count.
func (r *CoachRepository) List(ctx context.Context, filter models.CoachFilter) ([]models.Coach, int, error) {
	base := "FROM coaches WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf("team_id = $%d", len(args)+1))
		args = append(args, filter.TeamID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(full_name) LIKE $%d", len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "full_name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", coachColumns, base, column, order, size, offset)
	var coaches []models.Coach
	if err := r.db.SelectContext(ctx, &coaches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list coaches: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count coaches: %w", err)
	}

	return coaches, total, nil
}

// FindByID fetches a coach by ID.
func (r *CoachRepository) FindByID(ctx context.Context, id string) (*models.Coach, error) {
	query := fmt.Sprintf("SELECT %s FROM coaches WHERE id = $1", coachColumns)
	var coach models.Coach
	if err := r.db.GetContext(ctx, &coach, query, id); err != nil {
		return nil, err
	}
	return &coach, nil
}

// ListActiveByTeam returns the active roster for a team ordered by ID so
// downstream evaluation order is stable.
func (r *CoachRepository) ListActiveByTeam(ctx context.Context, teamID string) ([]models.Coach, error) {
	query := fmt.Sprintf("SELECT %s FROM coaches WHERE team_id = $1 AND active = TRUE ORDER BY id ASC", coachColumns)
	var coaches []models.Coach
	if err := r.db.SelectContext(ctx, &coaches, query, teamID); err != nil {
		return nil, fmt.Errorf("list team roster: %w", err)
	}
	return coaches, nil
}
