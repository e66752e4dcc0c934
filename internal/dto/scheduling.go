package dto

import "time"

// GenerateScheduleRequest asks the engine to staff one week from a template.
// WeekStart uses the YYYY-MM-DD layout and is normalised to the week's Sunday.
type GenerateScheduleRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	TeamID     string `json:"teamId" validate:"required"`
	LocationID string `json:"locationId" validate:"required"`
	WeekStart  string `json:"weekStart" validate:"required,datetime=2006-01-02"`
}

// ClassSlotView is the API shape of one seat-bearing class occurrence.
type ClassSlotView struct {
	SlotID          string    `json:"slotId"`
	ClassCatalogID  string    `json:"classCatalogId"`
	ClassName       string    `json:"className"`
	LocationID      string    `json:"locationId"`
	StartsAt        time.Time `json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
	SeatIndex       int       `json:"seatIndex"`
	AssigneeCoachID *string   `json:"assigneeCoachId,omitempty"`
	Version         int       `json:"version"`
}

// GenerateScheduleResponse returns the committed week.
type GenerateScheduleResponse struct {
	ScheduleID     string          `json:"scheduleId"`
	WeekStart      string          `json:"weekStart"`
	TotalSeats     int             `json:"totalSeats"`
	StaffedSeats   int             `json:"staffedSeats"`
	UnstaffedCount int             `json:"unstaffedCount"`
	Slots          []ClassSlotView `json:"slots"`
}

// Verdict is the outcome of evaluating one coach against one slot.
// Reason is set only when the coach is unavailable.
type Verdict struct {
	CoachID   string  `json:"coachId"`
	Name      string  `json:"name,omitempty"`
	Available bool    `json:"available"`
	Reason    *string `json:"reason,omitempty"`
}

// AvailabilityBreakdown partitions a roster for one slot.
type AvailabilityBreakdown struct {
	Available   []Verdict `json:"available"`
	Unavailable []Verdict `json:"unavailable"`
}

// ReassignSlotRequest sets or clears a slot's assignee. A nil CoachID clears
// the seat. Version must match the slot's current version (optimistic lock).
type ReassignSlotRequest struct {
	CoachID *string `json:"coachId"`
	Version int     `json:"version" validate:"required,min=1"`
}

// ReassignSlotResponse reports whether the write was applied. When the chosen
// coach is ineligible the write is skipped and the negative verdict returned.
type ReassignSlotResponse struct {
	Applied bool           `json:"applied"`
	Verdict *Verdict       `json:"verdict,omitempty"`
	Slot    *ClassSlotView `json:"slot,omitempty"`
}

// ScheduleQuery filters generated schedules by team and location.
type ScheduleQuery struct {
	TeamID     string `form:"teamId" json:"teamId"`
	LocationID string `form:"locationId" json:"locationId"`
}
