package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// BlackoutRange is an explicit date range (inclusive both ends) during which a
// coach is off. Dates use the YYYY-MM-DD layout.
type BlackoutRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
}

// RecurringWindow is a weekly-repeating unavailability window. Times are
// zero-padded HH:MM in the schedule's timezone; DayOfWeek is 0 (Sunday) to 6.
type RecurringWindow struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description,omitempty"`
}

// Coach represents a team member eligible for class assignment.
type Coach struct {
	ID                   string         `db:"id" json:"id"`
	UserID               string         `db:"user_id" json:"user_id"`
	TeamID               string         `db:"team_id" json:"team_id"`
	FullName             string         `db:"full_name" json:"full_name"`
	Skills               types.JSONText `db:"skills" json:"skills"`
	Blackouts            types.JSONText `db:"blackouts" json:"blackouts"`
	Unavailability       types.JSONText `db:"unavailability" json:"unavailability"`
	WeeklyClassLimit     *int           `db:"weekly_class_limit" json:"weekly_class_limit,omitempty"`
	SchedulingPreference *string        `db:"scheduling_preference" json:"scheduling_preference,omitempty"`
	Active               bool           `db:"active" json:"active"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// SkillList decodes the stored skill set. Malformed payloads decode to empty.
func (c Coach) SkillList() []string {
	var skills []string
	_ = json.Unmarshal(c.Skills, &skills)
	return skills
}

// BlackoutList decodes the stored blackout ranges.
func (c Coach) BlackoutList() []BlackoutRange {
	var ranges []BlackoutRange
	_ = json.Unmarshal(c.Blackouts, &ranges)
	return ranges
}

// UnavailabilityList decodes the stored recurring windows.
func (c Coach) UnavailabilityList() []RecurringWindow {
	var windows []RecurringWindow
	_ = json.Unmarshal(c.Unavailability, &windows)
	return windows
}

// CoachFilter captures filtering options for listing coaches.
type CoachFilter struct {
	TeamID    string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
