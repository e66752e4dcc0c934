package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/hexfit/gymops-api/internal/models"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
)

type coachLister interface {
	List(ctx context.Context, filter models.CoachFilter) ([]models.Coach, int, error)
	FindByID(ctx context.Context, id string) (*models.Coach, error)
}

// CoachService exposes read access to the roster. Coach records are owned by
// the membership system; scheduling only consumes them.
type CoachService struct {
	coaches coachLister
	logger  *zap.Logger
}

// NewCoachService constructs a CoachService.
func NewCoachService(coaches coachLister, logger *zap.Logger) *CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachService{coaches: coaches, logger: logger}
}

// List returns coaches matching the filter with pagination metadata.
func (s *CoachService) List(ctx context.Context, filter models.CoachFilter) ([]models.Coach, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	coaches, total, err := s.coaches.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coaches")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return coaches, pagination, nil
}

// Get fetches a single coach.
func (s *CoachService) Get(ctx context.Context, id string) (*models.Coach, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "coach id is required")
	}
	coach, err := s.coaches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coach")
	}
	return coach, nil
}
