package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/models"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
)

type classSlotEditor interface {
	FindByID(ctx context.Context, id string) (*models.ClassSlot, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ClassSlot, error)
	UpdateAssignee(ctx context.Context, slotID string, coachID *string, expectedVersion int) (*models.ClassSlot, error)
}

type scheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error)
}

type coachReader interface {
	FindByID(ctx context.Context, id string) (*models.Coach, error)
	ListActiveByTeam(ctx context.Context, teamID string) ([]models.Coach, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ReassignmentService supports human overrides against a live schedule: it
// answers which coaches could cover a slot right now, and applies a single
// assignee change guarded by re-validation and an optimistic version check.
type ReassignmentService struct {
	slots     classSlotEditor
	schedules scheduleReader
	coaches   coachReader
	resolver  *AvailabilityResolver
	cache     availabilityCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReassignmentService wires reassignment dependencies.
func NewReassignmentService(
	slots classSlotEditor,
	schedules scheduleReader,
	coaches coachReader,
	resolver *AvailabilityResolver,
	cache availabilityCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReassignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewAvailabilityResolver()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &ReassignmentService{
		slots:     slots,
		schedules: schedules,
		coaches:   coaches,
		resolver:  resolver,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// CheckAvailability rebuilds run state from the slot's schedule (excluding the
// slot under review) and partitions the team roster for the manual-edit UI.
func (s *ReassignmentService) CheckAvailability(ctx context.Context, slotID string) (*dto.AvailabilityBreakdown, error) {
	slot, schedule, err := s.loadSlotAndSchedule(ctx, slotID)
	if err != nil {
		return nil, err
	}

	cacheKey := availabilityCacheKey(schedule.ID, slot.ID, slot.Version)
	if s.cache != nil {
		var cached dto.AvailabilityBreakdown
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	breakdown, err := s.evaluate(ctx, slot, schedule)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, breakdown, s.cacheTTL); err != nil {
			s.logger.Debug("availability cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return breakdown, nil
}

// Reassign sets or clears a slot's assignee. The chosen coach is re-validated
// server-side immediately before the write so a stale client verdict cannot
// break schedule invariants; an ineligible coach yields a structured negative
// verdict, not an error. Version mismatches surface as conflicts.
func (s *ReassignmentService) Reassign(ctx context.Context, slotID string, req dto.ReassignSlotRequest) (*dto.ReassignSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}

	slot, schedule, err := s.loadSlotAndSchedule(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if req.CoachID == nil {
		updated, err := s.applyAssignee(ctx, slotID, nil, req.Version, schedule.ID)
		if err != nil {
			return nil, err
		}
		view := slotView(updated)
		return &dto.ReassignSlotResponse{Applied: true, Slot: &view}, nil
	}

	coach, err := s.coaches.FindByID(ctx, *req.CoachID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coach")
	}
	if coach.TeamID != schedule.TeamID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "coach does not belong to this team")
	}

	committed, err := s.slots.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	tracker := rebuildTracker(committed, slot.ID)
	verdict := s.resolver.Resolve(*coach, *slot, tracker, slot.ID)
	if !verdict.Available {
		return &dto.ReassignSlotResponse{Applied: false, Verdict: &verdict}, nil
	}

	updated, err := s.applyAssignee(ctx, slotID, req.CoachID, req.Version, schedule.ID)
	if err != nil {
		return nil, err
	}
	view := slotView(updated)
	return &dto.ReassignSlotResponse{Applied: true, Verdict: &verdict, Slot: &view}, nil
}

func (s *ReassignmentService) loadSlotAndSchedule(ctx context.Context, slotID string) (*models.ClassSlot, *models.GeneratedSchedule, error) {
	if slotID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "slot id is required")
	}
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class slot not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class slot")
	}
	schedule, err := s.schedules.FindByID(ctx, slot.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return slot, schedule, nil
}

func (s *ReassignmentService) evaluate(ctx context.Context, slot *models.ClassSlot, schedule *models.GeneratedSchedule) (*dto.AvailabilityBreakdown, error) {
	roster, err := s.coaches.ListActiveByTeam(ctx, schedule.TeamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team roster")
	}
	committed, err := s.slots.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	tracker := rebuildTracker(committed, slot.ID)
	breakdown := s.resolver.ResolveAll(*slot, roster, tracker, slot.ID)
	return &breakdown, nil
}

func (s *ReassignmentService) applyAssignee(ctx context.Context, slotID string, coachID *string, expectedVersion int, scheduleID string) (*models.ClassSlot, error) {
	updated, err := s.slots.UpdateAssignee(ctx, slotID, coachID, expectedVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrVersionMismatch, "slot was modified by another edit; reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot assignee")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, availabilityCachePattern(scheduleID)); err != nil {
			s.logger.Debug("availability cache invalidation failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
	}
	return updated, nil
}

func availabilityCacheKey(scheduleID, slotID string, version int) string {
	return fmt.Sprintf("availability:%s:%s:v%d", scheduleID, slotID, version)
}

func availabilityCachePattern(scheduleID string) string {
	return fmt.Sprintf("availability:%s:*", scheduleID)
}

func slotView(slot *models.ClassSlot) dto.ClassSlotView {
	return dto.ClassSlotView{
		SlotID:          slot.ID,
		ClassCatalogID:  slot.ClassCatalogID,
		ClassName:       slot.ClassName,
		LocationID:      slot.LocationID,
		StartsAt:        slot.StartsAt,
		EndsAt:          slot.EndsAt,
		SeatIndex:       slot.SeatIndex,
		AssigneeCoachID: slot.AssigneeCoachID,
		Version:         slot.Version,
	}
}
