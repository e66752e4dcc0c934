package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleTemplate is a recurring weekly class plan for one team.
// Templates are maintained by the catalog module; this service reads them.
type ScheduleTemplate struct {
	ID        string    `db:"id" json:"id"`
	TeamID    string    `db:"team_id" json:"team_id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TemplateSlot is one recurring class-slot blueprint inside a template.
// DayOfWeek is 0 (Sunday) to 6; times are zero-padded HH:MM.
type TemplateSlot struct {
	ID              string         `db:"id" json:"id"`
	TemplateID      string         `db:"template_id" json:"template_id"`
	DayOfWeek       int            `db:"day_of_week" json:"day_of_week"`
	StartTime       string         `db:"start_time" json:"start_time"`
	EndTime         string         `db:"end_time" json:"end_time"`
	ClassCatalogID  string         `db:"class_catalog_id" json:"class_catalog_id"`
	ClassName       string         `db:"class_name" json:"class_name"`
	LocationID      string         `db:"location_id" json:"location_id"`
	RequiredSkills  types.JSONText `db:"required_skills" json:"required_skills"`
	RequiredCoaches int            `db:"required_coaches" json:"required_coaches"`
	Position        int            `db:"position" json:"position"`
}

// RequiredSkillList decodes the slot's required skill set.
func (s TemplateSlot) RequiredSkillList() []string {
	var skills []string
	_ = json.Unmarshal(s.RequiredSkills, &skills)
	return skills
}
