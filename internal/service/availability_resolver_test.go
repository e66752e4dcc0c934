package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexfit/gymops-api/internal/models"
)

func mustJSON(t *testing.T, v interface{}) types.JSONText {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func testCoach(t *testing.T, id string, skills []string) models.Coach {
	t.Helper()
	return models.Coach{
		ID:             id,
		TeamID:         "team-1",
		FullName:       "Coach " + id,
		Skills:         mustJSON(t, skills),
		Blackouts:      mustJSON(t, []models.BlackoutRange{}),
		Unavailability: mustJSON(t, []models.RecurringWindow{}),
		Active:         true,
	}
}

// testSlot builds a slot on Monday 2024-12-23 (a known Monday) at the given
// wall-clock hours.
func testSlot(t *testing.T, id string, startHour, endHour int, skills []string) models.ClassSlot {
	t.Helper()
	day := time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)
	return models.ClassSlot{
		ID:             id,
		ScheduleID:     "sched-1",
		ClassCatalogID: "class-yoga",
		ClassName:      "Yoga Flow",
		LocationID:     "loc-1",
		StartsAt:       day.Add(time.Duration(startHour) * time.Hour),
		EndsAt:         day.Add(time.Duration(endHour) * time.Hour),
		RequiredSkills: mustJSON(t, skills),
	}
}

func TestResolveAvailableCoach(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", []string{"yoga"})
	slot := testSlot(t, "slot-1", 9, 10, []string{"yoga"})

	verdict := resolver.Resolve(coach, slot, NewTracker(), "")
	assert.True(t, verdict.Available)
	assert.Nil(t, verdict.Reason)
	assert.Equal(t, "coach-1", verdict.CoachID)
}

func TestResolveMissingSkills(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", []string{"spin"})
	slot := testSlot(t, "slot-1", 9, 10, []string{"yoga", "spin"})

	verdict := resolver.Resolve(coach, slot, NewTracker(), "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Missing required skills", *verdict.Reason)
}

func TestResolveNoRequiredSkillsAlwaysPasses(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)
	slot := testSlot(t, "slot-1", 9, 10, nil)

	verdict := resolver.Resolve(coach, slot, NewTracker(), "")
	assert.True(t, verdict.Available)
}

func TestResolveBlackoutInclusiveBounds(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", []string{"yoga"})
	coach.Blackouts = mustJSON(t, []models.BlackoutRange{
		{StartDate: "2024-12-20", EndDate: "2024-12-27", Reason: "Vacation"},
	})

	// 2024-12-23 falls inside the range.
	inside := testSlot(t, "slot-1", 9, 10, []string{"yoga"})
	verdict := resolver.Resolve(coach, inside, NewTracker(), "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Blackout: Vacation", *verdict.Reason)

	// End date itself is still blacked out.
	onEnd := inside
	onEnd.StartsAt = time.Date(2024, 12, 27, 9, 0, 0, 0, time.UTC)
	onEnd.EndsAt = time.Date(2024, 12, 27, 10, 0, 0, 0, time.UTC)
	verdict = resolver.Resolve(coach, onEnd, NewTracker(), "")
	assert.False(t, verdict.Available)

	// The day after the range is free again.
	after := inside
	after.StartsAt = time.Date(2024, 12, 28, 9, 0, 0, 0, time.UTC)
	after.EndsAt = time.Date(2024, 12, 28, 10, 0, 0, 0, time.UTC)
	verdict = resolver.Resolve(coach, after, NewTracker(), "")
	assert.True(t, verdict.Available)
}

func TestResolveBlackoutDefaultReason(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)
	coach.Blackouts = mustJSON(t, []models.BlackoutRange{
		{StartDate: "2024-12-23", EndDate: "2024-12-23"},
	})

	verdict := resolver.Resolve(coach, testSlot(t, "slot-1", 9, 10, nil), NewTracker(), "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Blackout: Time off", *verdict.Reason)
}

func TestResolveRecurringUnavailability(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)
	// Monday mornings blocked.
	coach.Unavailability = mustJSON(t, []models.RecurringWindow{
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00", Description: "School run"},
	})

	verdict := resolver.Resolve(coach, testSlot(t, "slot-1", 9, 10, nil), NewTracker(), "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Recurring unavailability: School run", *verdict.Reason)

	// Afternoon slot on the same day is fine.
	verdict = resolver.Resolve(coach, testSlot(t, "slot-2", 13, 14, nil), NewTracker(), "")
	assert.True(t, verdict.Available)

	// A slot that starts exactly when the window ends does not collide.
	verdict = resolver.Resolve(coach, testSlot(t, "slot-3", 12, 13, nil), NewTracker(), "")
	assert.True(t, verdict.Available)
}

func TestResolveRecurringWindowOtherDayIgnored(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)
	// Tuesday blocked; test slot is on Monday.
	coach.Unavailability = mustJSON(t, []models.RecurringWindow{
		{DayOfWeek: 2, StartTime: "00:00", EndTime: "24:00"},
	})

	verdict := resolver.Resolve(coach, testSlot(t, "slot-1", 9, 10, nil), NewTracker(), "")
	assert.True(t, verdict.Available)
}

func TestResolveTimeConflict(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)

	tracker := NewTracker()
	committed := testSlot(t, "slot-1", 9, 10, nil)
	tracker.Reserve(coach.ID, Interval{SlotID: committed.ID, Start: committed.StartsAt, End: committed.EndsAt})

	overlapping := testSlot(t, "slot-2", 9, 11, nil)
	verdict := resolver.Resolve(coach, overlapping, tracker, "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Already scheduled for another class", *verdict.Reason)

	// Back-to-back classes are allowed.
	adjacent := testSlot(t, "slot-3", 10, 11, nil)
	verdict = resolver.Resolve(coach, adjacent, tracker, "")
	assert.True(t, verdict.Available)
}

func TestResolveTimeConflictExcludesSlotUnderReview(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)

	tracker := NewTracker()
	committed := testSlot(t, "slot-1", 9, 10, nil)
	tracker.Reserve(coach.ID, Interval{SlotID: committed.ID, Start: committed.StartsAt, End: committed.EndsAt})

	// Re-validating the same slot against its own committed interval passes.
	verdict := resolver.Resolve(coach, committed, tracker, "slot-1")
	assert.True(t, verdict.Available)
}

func TestResolveWeeklyLimit(t *testing.T) {
	resolver := NewAvailabilityResolver()
	limit := 2
	coach := testCoach(t, "coach-1", nil)
	coach.WeeklyClassLimit = &limit

	tracker := NewTracker()
	tracker.Reserve(coach.ID, interval("slot-1", 8, 9))
	tracker.Reserve(coach.ID, interval("slot-2", 10, 11))

	verdict := resolver.Resolve(coach, testSlot(t, "slot-3", 13, 14, nil), tracker, "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Weekly class limit reached (2/2)", *verdict.Reason)
}

func TestResolvePredicateOrderSkillsBeforeConflict(t *testing.T) {
	resolver := NewAvailabilityResolver()
	coach := testCoach(t, "coach-1", nil)

	// Coach both lacks the skill and has a time conflict; the structural
	// reason wins.
	tracker := NewTracker()
	tracker.Reserve(coach.ID, interval("slot-1", 9, 10))

	slot := testSlot(t, "slot-2", 9, 10, []string{"yoga"})
	verdict := resolver.Resolve(coach, slot, tracker, "")
	require.False(t, verdict.Available)
	assert.Equal(t, "Missing required skills", *verdict.Reason)
}

func TestResolveAllPartitionsAndOrders(t *testing.T) {
	resolver := NewAvailabilityResolver()
	roster := []models.Coach{
		testCoach(t, "coach-3", []string{"yoga"}),
		testCoach(t, "coach-1", []string{"yoga"}),
		testCoach(t, "coach-2", []string{"spin"}),
	}
	slot := testSlot(t, "slot-1", 9, 10, []string{"yoga"})

	breakdown := resolver.ResolveAll(slot, roster, NewTracker(), "")
	require.Len(t, breakdown.Available, 2)
	require.Len(t, breakdown.Unavailable, 1)
	assert.Equal(t, "coach-1", breakdown.Available[0].CoachID)
	assert.Equal(t, "coach-3", breakdown.Available[1].CoachID)
	assert.Equal(t, "coach-2", breakdown.Unavailable[0].CoachID)
}

func TestPreferenceMatches(t *testing.T) {
	slot := testSlot(t, "slot-1", 9, 10, nil)

	coach := testCoach(t, "coach-1", nil)
	assert.False(t, preferenceMatches(coach, slot), "no preference set")

	pref := "prefers Yoga Flow classes"
	coach.SchedulingPreference = &pref
	assert.True(t, preferenceMatches(coach, slot))

	locPref := "mornings at loc-1"
	coach.SchedulingPreference = &locPref
	assert.True(t, preferenceMatches(coach, slot))

	other := "pilates only"
	coach.SchedulingPreference = &other
	assert.False(t, preferenceMatches(coach, slot))
}
