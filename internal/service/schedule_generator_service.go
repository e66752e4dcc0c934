package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/models"
	"github.com/hexfit/gymops-api/internal/repository"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
)

type templateReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error)
	ListSlots(ctx context.Context, templateID string) ([]models.TemplateSlot, error)
}

type rosterReader interface {
	ListActiveByTeam(ctx context.Context, teamID string) ([]models.Coach, error)
}

type generatedScheduleRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, schedule *models.GeneratedSchedule) error
	FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error)
	ListByTeamLocation(ctx context.Context, teamID, locationID string) ([]models.GeneratedSchedule, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.GeneratedScheduleStatus) error
	Delete(ctx context.Context, id string) error
}

type classSlotStore interface {
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, slots []models.ClassSlot) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ClassSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(duration time.Duration, unstaffedSeats int)
}

// SeatPicker chooses one coach ID from a non-empty eligible set for a seat.
// Pluggable so the selection policy can evolve without touching the engine.
type SeatPicker func(slot models.ClassSlot, eligible []models.Coach, tracker *Tracker) string

// ScheduleGeneratorService staffs one week of class slots from a template.
type ScheduleGeneratorService struct {
	templates templateReader
	roster    rosterReader
	schedules generatedScheduleRepository
	slots     classSlotStore
	tx        txProvider
	resolver  *AvailabilityResolver
	picker    SeatPicker
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	maxSlots  int
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	MaxTemplateSlots int
	Picker           SeatPicker
	Metrics          generationObserver
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(
	templates templateReader,
	roster rosterReader,
	schedules generatedScheduleRepository,
	slots classSlotStore,
	tx txProvider,
	resolver *AvailabilityResolver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewAvailabilityResolver()
	}
	picker := cfg.Picker
	if picker == nil {
		picker = LoadBalancedPicker
	}
	maxSlots := cfg.MaxTemplateSlots
	if maxSlots <= 0 {
		maxSlots = 256
	}
	return &ScheduleGeneratorService{
		templates: templates,
		roster:    roster,
		schedules: schedules,
		slots:     slots,
		tx:        tx,
		resolver:  resolver,
		picker:    picker,
		metrics:   cfg.Metrics,
		validator: validate,
		logger:    logger,
		maxSlots:  maxSlots,
	}
}

// Generate materializes, staffs and atomically persists one week of class
// slots. Seats with no eligible coach are committed unassigned; partial
// staffing is a successful result, never an error.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	started := time.Now()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart must be a valid YYYY-MM-DD date")
	}

	template, err := s.templates.FindByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule template")
	}
	if template.TeamID != req.TeamID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule template not found for team")
	}

	blueprints, err := s.templates.ListSlots(ctx, template.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template slots")
	}
	blueprints = filterByLocation(blueprints, req.LocationID)
	if len(blueprints) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "template has no slots for this location")
	}
	if len(blueprints) > s.maxSlots {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template exceeds supported slot limit (%d)", s.maxSlots))
	}
	if err := validateBlueprints(blueprints); err != nil {
		return nil, err
	}

	roster, err := s.roster.ListActiveByTeam(ctx, req.TeamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team roster")
	}

	slots, err := materializeWeek(blueprints, weekStart)
	if err != nil {
		return nil, err
	}

	tracker := NewTracker()
	unstaffed := 0
	for i := range slots {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule generation cancelled")
		}
		breakdown := s.resolver.ResolveAll(slots[i], roster, tracker, "")
		eligible := coachesFromVerdicts(breakdown.Available, roster)
		if len(eligible) == 0 {
			unstaffed++
			continue
		}
		chosen := s.picker(slots[i], eligible, tracker)
		slots[i].AssigneeCoachID = &chosen
		tracker.Reserve(chosen, Interval{SlotID: slots[i].ID, Start: slots[i].StartsAt, End: slots[i].EndsAt})
	}

	summary := models.StaffingSummary{
		TotalSeats:     len(slots),
		StaffedSeats:   len(slots) - unstaffed,
		UnstaffedSeats: unstaffed,
	}
	meta, err := json.Marshal(map[string]any{
		"summary":   summary,
		"algorithm": "greedy_loadbalance_v1",
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule metadata")
	}

	record := &models.GeneratedSchedule{
		TeamID:     req.TeamID,
		LocationID: req.LocationID,
		WeekStart:  weekStart,
		Status:     models.GeneratedScheduleStatusDraft,
		Meta:       meta,
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.schedules.Create(ctx, tx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateSchedule) {
			err = appErrors.Clone(appErrors.ErrConflict, "a schedule already exists for this team, location and week")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
		return nil, err
	}
	for i := range slots {
		slots[i].ScheduleID = record.ID
	}
	if err = s.slots.BulkCreate(ctx, tx, slots); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist class slots")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(started), unstaffed)
	}
	s.logger.Info("schedule generated",
		zap.String("schedule_id", record.ID),
		zap.String("team_id", req.TeamID),
		zap.String("location_id", req.LocationID),
		zap.Int("total_seats", summary.TotalSeats),
		zap.Int("unstaffed_seats", unstaffed),
	)

	return &dto.GenerateScheduleResponse{
		ScheduleID:     record.ID,
		WeekStart:      weekStart.Format("2006-01-02"),
		TotalSeats:     summary.TotalSeats,
		StaffedSeats:   summary.StaffedSeats,
		UnstaffedCount: unstaffed,
		Slots:          slotViews(slots),
	}, nil
}

// List returns generated schedules for a team/location pair.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.ScheduleQuery) ([]models.GeneratedSchedule, error) {
	if query.TeamID == "" || query.LocationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teamId and locationId are required")
	}
	list, err := s.schedules.ListByTeamLocation(ctx, query.TeamID, query.LocationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return list, nil
}

// Get fetches a single generated schedule header.
func (s *ScheduleGeneratorService) Get(ctx context.Context, scheduleID string) (*models.GeneratedSchedule, error) {
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	record, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return record, nil
}

// GetSlots returns slot detail plus the derived staffing summary.
func (s *ScheduleGeneratorService) GetSlots(ctx context.Context, scheduleID string) ([]models.ClassSlot, *models.StaffingSummary, error) {
	if scheduleID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "schedule id is required")
	}
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	slots, err := s.slots.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class slots")
	}
	summary := &models.StaffingSummary{TotalSeats: len(slots)}
	for _, slot := range slots {
		if slot.AssigneeCoachID != nil {
			summary.StaffedSeats++
		}
	}
	summary.UnstaffedSeats = summary.TotalSeats - summary.StaffedSeats
	return slots, summary, nil
}

// Publish transitions a draft schedule to published.
func (s *ScheduleGeneratorService) Publish(ctx context.Context, scheduleID string) error {
	record, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if record.Status != models.GeneratedScheduleStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft schedules can be published")
	}
	if err := s.schedules.UpdateStatus(ctx, nil, scheduleID, models.GeneratedScheduleStatusPublished); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish schedule")
	}
	return nil
}

// Delete discards a draft schedule and, via cascade, its class slots.
func (s *ScheduleGeneratorService) Delete(ctx context.Context, scheduleID string) error {
	record, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if record.Status != models.GeneratedScheduleStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft schedules can be deleted")
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

// LoadBalancedPicker is the default seat selection policy: coaches whose
// scheduling preference names the class or location win first, then the coach
// with the fewest assignments this run, then the lowest coach ID.
func LoadBalancedPicker(slot models.ClassSlot, eligible []models.Coach, tracker *Tracker) string {
	candidates := eligible
	var preferred []models.Coach
	for _, coach := range eligible {
		if preferenceMatches(coach, slot) {
			preferred = append(preferred, coach)
		}
	}
	if len(preferred) > 0 {
		candidates = preferred
	}

	best := candidates[0]
	bestCount := tracker.AssignmentCount(best.ID)
	for _, coach := range candidates[1:] {
		count := tracker.AssignmentCount(coach.ID)
		if count < bestCount || (count == bestCount && coach.ID < best.ID) {
			best = coach
			bestCount = count
		}
	}
	return best.ID
}

// --- Week materialization ---

// parseWeekStart parses a YYYY-MM-DD date and normalises it to the Sunday
// opening that week, matching the 0-based day indexing of template slots.
func parseWeekStart(raw string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, -int(day.Weekday())), nil
}

func filterByLocation(blueprints []models.TemplateSlot, locationID string) []models.TemplateSlot {
	filtered := make([]models.TemplateSlot, 0, len(blueprints))
	for _, blueprint := range blueprints {
		if blueprint.LocationID == locationID {
			filtered = append(filtered, blueprint)
		}
	}
	return filtered
}

func validateBlueprints(blueprints []models.TemplateSlot) error {
	for _, blueprint := range blueprints {
		if blueprint.DayOfWeek < 0 || blueprint.DayOfWeek > 6 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template slot %s has invalid day of week", blueprint.ID))
		}
		start, startErr := parseClock(blueprint.StartTime)
		end, endErr := parseClock(blueprint.EndTime)
		if startErr != nil || endErr != nil || !start.Before(end) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template slot %s has an invalid time range", blueprint.ID))
		}
		if blueprint.RequiredCoaches < 1 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template slot %s must require at least one coach", blueprint.ID))
		}
	}
	return nil
}

// materializeWeek expands blueprints into concrete seat-bearing slots for the
// target week, one row per required coach seat, sorted by start time with ties
// broken by template definition order. The ordering is load-bearing: earlier
// slots constrain later ones through the tracker.
func materializeWeek(blueprints []models.TemplateSlot, weekStart time.Time) ([]models.ClassSlot, error) {
	type orderedSlot struct {
		slot     models.ClassSlot
		position int
		seat     int
	}
	ordered := make([]orderedSlot, 0, len(blueprints))
	for _, blueprint := range blueprints {
		day := weekStart.AddDate(0, 0, blueprint.DayOfWeek)
		startsAt, err := atClock(day, blueprint.StartTime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template slot %s has an invalid start time", blueprint.ID))
		}
		endsAt, err := atClock(day, blueprint.EndTime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("template slot %s has an invalid end time", blueprint.ID))
		}
		for seat := 0; seat < blueprint.RequiredCoaches; seat++ {
			ordered = append(ordered, orderedSlot{
				slot: models.ClassSlot{
					ID:             uuid.NewString(),
					ClassCatalogID: blueprint.ClassCatalogID,
					ClassName:      blueprint.ClassName,
					LocationID:     blueprint.LocationID,
					StartsAt:       startsAt,
					EndsAt:         endsAt,
					RequiredSkills: blueprint.RequiredSkills,
					SeatIndex:      seat,
				},
				position: blueprint.Position,
				seat:     seat,
			})
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].slot.StartsAt.Equal(ordered[j].slot.StartsAt) {
			return ordered[i].slot.StartsAt.Before(ordered[j].slot.StartsAt)
		}
		if ordered[i].position != ordered[j].position {
			return ordered[i].position < ordered[j].position
		}
		return ordered[i].seat < ordered[j].seat
	})

	slots := make([]models.ClassSlot, len(ordered))
	for i, item := range ordered {
		slots[i] = item.slot
	}
	return slots, nil
}

func parseClock(raw string) (time.Time, error) {
	return time.Parse("15:04", raw)
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parts, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parts.Hour(), parts.Minute(), 0, 0, day.Location()), nil
}

func coachesFromVerdicts(verdicts []dto.Verdict, roster []models.Coach) []models.Coach {
	byID := make(map[string]models.Coach, len(roster))
	for _, coach := range roster {
		byID[coach.ID] = coach
	}
	eligible := make([]models.Coach, 0, len(verdicts))
	for _, verdict := range verdicts {
		if coach, ok := byID[verdict.CoachID]; ok {
			eligible = append(eligible, coach)
		}
	}
	return eligible
}

func slotViews(slots []models.ClassSlot) []dto.ClassSlotView {
	views := make([]dto.ClassSlotView, len(slots))
	for i, slot := range slots {
		views[i] = dto.ClassSlotView{
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
	return views
}
