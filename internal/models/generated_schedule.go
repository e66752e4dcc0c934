package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// GeneratedScheduleStatus represents lifecycle phases for generated schedules.
type GeneratedScheduleStatus string

const (
	GeneratedScheduleStatusDraft     GeneratedScheduleStatus = "DRAFT"
	GeneratedScheduleStatusPublished GeneratedScheduleStatus = "PUBLISHED"
	GeneratedScheduleStatusArchived  GeneratedScheduleStatus = "ARCHIVED"
)

// GeneratedSchedule is one concrete week of class slots for a
// (team, location, week start) tuple. At most one live schedule may exist per
// tuple; the unique index on the table enforces it.
type GeneratedSchedule struct {
	ID         string                  `db:"id" json:"id"`
	TeamID     string                  `db:"team_id" json:"team_id"`
	LocationID string                  `db:"location_id" json:"location_id"`
	WeekStart  time.Time               `db:"week_start" json:"week_start"`
	Status     GeneratedScheduleStatus `db:"status" json:"status"`
	Meta       types.JSONText          `db:"meta" json:"meta"`
	Version    int                     `db:"version" json:"version"`
	CreatedAt  time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time               `db:"updated_at" json:"updated_at"`
}

// ClassSlot is one seat-bearing class occurrence inside a generated schedule.
// SeatIndex distinguishes rows when a class needs more than one coach.
type ClassSlot struct {
	ID              string         `db:"id" json:"id"`
	ScheduleID      string         `db:"schedule_id" json:"schedule_id"`
	ClassCatalogID  string         `db:"class_catalog_id" json:"class_catalog_id"`
	ClassName       string         `db:"class_name" json:"class_name"`
	LocationID      string         `db:"location_id" json:"location_id"`
	StartsAt        time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt          time.Time      `db:"ends_at" json:"ends_at"`
	RequiredSkills  types.JSONText `db:"required_skills" json:"required_skills"`
	SeatIndex       int            `db:"seat_index" json:"seat_index"`
	AssigneeCoachID *string        `db:"assignee_coach_id" json:"assignee_coach_id,omitempty"`
	Version         int            `db:"version" json:"version"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// RequiredSkillList decodes the slot's required skill set.
func (s ClassSlot) RequiredSkillList() []string {
	var skills []string
	_ = json.Unmarshal(s.RequiredSkills, &skills)
	return skills
}

// StaffingSummary aggregates seat coverage for a generated schedule.
// Counts are derived from slots, never stored as columns.
type StaffingSummary struct {
	TotalSeats     int `json:"total_seats"`
	StaffedSeats   int `json:"staffed_seats"`
	UnstaffedSeats int `json:"unstaffed_seats"`
}
