package service

import (
	"time"

	"github.com/hexfit/gymops-api/internal/models"
)

// Interval is a committed [start, end) assignment window for one class slot.
type Interval struct {
	SlotID string
	Start  time.Time
	End    time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Tracker records, per coach, the intervals committed so far in one generation
// run plus a running assignment count. It is scoped to a single run or a single
// manual-edit check; the persisted slot rows stay the durable source of truth
// and the tracker is rebuilt from them when validating an existing schedule.
type Tracker struct {
	intervals map[string][]Interval
	counts    map[string]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		intervals: make(map[string][]Interval),
		counts:    make(map[string]int),
	}
}

// Reserve commits an interval for a coach and bumps the assignment count.
// Callers must have validated eligibility first; Reserve has no failure mode.
func (t *Tracker) Reserve(coachID string, iv Interval) {
	t.intervals[coachID] = append(t.intervals[coachID], iv)
	t.counts[coachID]++
}

// CommittedIntervals returns the intervals reserved for a coach so far.
func (t *Tracker) CommittedIntervals(coachID string) []Interval {
	return t.intervals[coachID]
}

// AssignmentCount returns how many seats a coach holds in this run.
func (t *Tracker) AssignmentCount(coachID string) int {
	return t.counts[coachID]
}

// rebuildTracker reconstructs run state from persisted slots, skipping the slot
// under review so its current assignee is evaluated as if the seat were free.
func rebuildTracker(slots []models.ClassSlot, excludeSlotID string) *Tracker {
	tracker := NewTracker()
	for _, slot := range slots {
		if slot.AssigneeCoachID == nil || slot.ID == excludeSlotID {
			continue
		}
		tracker.Reserve(*slot.AssigneeCoachID, Interval{
			SlotID: slot.ID,
			Start:  slot.StartsAt,
			End:    slot.EndsAt,
		})
	}
	return tracker
}
