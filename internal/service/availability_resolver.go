package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/models"
)

const (
	reasonMissingSkills    = "Missing required skills"
	reasonAlreadyScheduled = "Already scheduled for another class"

	defaultBlackoutReason  = "Time off"
	defaultRecurringReason = "Not available"
)

// availabilityPredicate checks one eligibility rule for a coach against a slot.
// It returns false plus a UI-ready reason when the rule fails.
type availabilityPredicate struct {
	name  string
	check func(coach models.Coach, slot models.ClassSlot, tracker *Tracker, excludeSlotID string) (bool, string)
}

// AvailabilityResolver evaluates a coach against a slot through an ordered
// predicate chain, short-circuiting on the first failure. Structural reasons
// (skills, blackouts, recurring windows) are checked before transient
// scheduling-state reasons (conflicts, weekly limit) so the surfaced reason is
// the most actionable one.
type AvailabilityResolver struct {
	chain []availabilityPredicate
}

// NewAvailabilityResolver builds the default predicate chain.
func NewAvailabilityResolver() *AvailabilityResolver {
	return &AvailabilityResolver{
		chain: []availabilityPredicate{
			{name: "skill_match", check: checkSkillMatch},
			{name: "blackout", check: checkBlackout},
			{name: "recurring_unavailability", check: checkRecurringUnavailability},
			{name: "time_conflict", check: checkTimeConflict},
			{name: "weekly_limit", check: checkWeeklyLimit},
		},
	}
}

// Resolve evaluates one coach against one slot. excludeSlotID skips a committed
// interval when re-validating a slot's current assignee.
func (r *AvailabilityResolver) Resolve(coach models.Coach, slot models.ClassSlot, tracker *Tracker, excludeSlotID string) dto.Verdict {
	for _, predicate := range r.chain {
		ok, reason := predicate.check(coach, slot, tracker, excludeSlotID)
		if !ok {
			return dto.Verdict{CoachID: coach.ID, Name: coach.FullName, Available: false, Reason: &reason}
		}
	}
	return dto.Verdict{CoachID: coach.ID, Name: coach.FullName, Available: true}
}

// ResolveAll partitions a roster into available and unavailable verdicts for
// one slot. The roster is evaluated in coach-ID order so output is stable.
func (r *AvailabilityResolver) ResolveAll(slot models.ClassSlot, roster []models.Coach, tracker *Tracker, excludeSlotID string) dto.AvailabilityBreakdown {
	ordered := make([]models.Coach, len(roster))
	copy(ordered, roster)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	breakdown := dto.AvailabilityBreakdown{
		Available:   make([]dto.Verdict, 0, len(ordered)),
		Unavailable: make([]dto.Verdict, 0),
	}
	for _, coach := range ordered {
		verdict := r.Resolve(coach, slot, tracker, excludeSlotID)
		if verdict.Available {
			breakdown.Available = append(breakdown.Available, verdict)
		} else {
			breakdown.Unavailable = append(breakdown.Unavailable, verdict)
		}
	}
	return breakdown
}

func checkSkillMatch(coach models.Coach, slot models.ClassSlot, _ *Tracker, _ string) (bool, string) {
	required := slot.RequiredSkillList()
	if len(required) == 0 {
		return true, ""
	}
	held := make(map[string]struct{})
	for _, skill := range coach.SkillList() {
		held[skill] = struct{}{}
	}
	for _, skill := range required {
		if _, ok := held[skill]; !ok {
			return false, reasonMissingSkills
		}
	}
	return true, ""
}

func checkBlackout(coach models.Coach, slot models.ClassSlot, _ *Tracker, _ string) (bool, string) {
	// ISO dates compare correctly as strings, both ends inclusive.
	slotDate := slot.StartsAt.Format("2006-01-02")
	for _, blackout := range coach.BlackoutList() {
		if blackout.StartDate == "" || blackout.EndDate == "" {
			continue
		}
		if slotDate >= blackout.StartDate && slotDate <= blackout.EndDate {
			reason := blackout.Reason
			if reason == "" {
				reason = defaultBlackoutReason
			}
			return false, "Blackout: " + reason
		}
	}
	return true, ""
}

func checkRecurringUnavailability(coach models.Coach, slot models.ClassSlot, _ *Tracker, _ string) (bool, string) {
	day := int(slot.StartsAt.Weekday())
	slotStart := slot.StartsAt.Format("15:04")
	slotEnd := slot.EndsAt.Format("15:04")
	if slotEnd == "00:00" {
		slotEnd = "24:00"
	}
	for _, window := range coach.UnavailabilityList() {
		if window.DayOfWeek != day {
			continue
		}
		// Half-open overlap on zero-padded HH:MM strings.
		if window.StartTime < slotEnd && slotStart < window.EndTime {
			reason := window.Description
			if reason == "" {
				reason = defaultRecurringReason
			}
			return false, "Recurring unavailability: " + reason
		}
	}
	return true, ""
}

func checkTimeConflict(coach models.Coach, slot models.ClassSlot, tracker *Tracker, excludeSlotID string) (bool, string) {
	candidate := Interval{SlotID: slot.ID, Start: slot.StartsAt, End: slot.EndsAt}
	for _, committed := range tracker.CommittedIntervals(coach.ID) {
		if excludeSlotID != "" && committed.SlotID == excludeSlotID {
			continue
		}
		if committed.Overlaps(candidate) {
			return false, reasonAlreadyScheduled
		}
	}
	return true, ""
}

func checkWeeklyLimit(coach models.Coach, _ models.ClassSlot, tracker *Tracker, _ string) (bool, string) {
	if coach.WeeklyClassLimit == nil {
		return true, ""
	}
	count := tracker.AssignmentCount(coach.ID)
	if count >= *coach.WeeklyClassLimit {
		return false, fmt.Sprintf("Weekly class limit reached (%d/%d)", count, *coach.WeeklyClassLimit)
	}
	return true, ""
}

// preferenceMatches reports whether a coach's free-text scheduling preference
// explicitly names the slot's class or location. Used only as a soft
// tie-break signal when picking among eligible coaches.
func preferenceMatches(coach models.Coach, slot models.ClassSlot) bool {
	if coach.SchedulingPreference == nil {
		return false
	}
	preference := strings.ToLower(*coach.SchedulingPreference)
	if preference == "" {
		return false
	}
	if slot.ClassName != "" && strings.Contains(preference, strings.ToLower(slot.ClassName)) {
		return true
	}
	return slot.LocationID != "" && strings.Contains(preference, strings.ToLower(slot.LocationID))
}
