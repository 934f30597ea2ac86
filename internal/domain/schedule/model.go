package schedule

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyRule maps to the doctor_schedule table. Times are clinic-local
// "HH:MM" clock strings; DayOfWeek follows time.Weekday (Sunday = 0).
type WeeklyRule struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	DoctorID            uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	BufferMinutes       int       `db:"buffer_minutes" json:"buffer_minutes"`
	BreakStart          *string   `db:"break_start" json:"break_start,omitempty"`
	BreakEnd            *string   `db:"break_end" json:"break_end,omitempty"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Special date types.
const (
	TypeHoliday = "HOLIDAY"
	TypeBreak   = "BREAK"
)

// SpecialDate maps to the special_date table. A HOLIDAY blocks the whole day;
// a BREAK with times overrides the rule's break window for that date.
type SpecialDate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      string    `db:"date" json:"date"` // "YYYY-MM-DD"
	Type      string    `db:"type" json:"type"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	StartTime *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string   `db:"end_time" json:"end_time,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
