package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// allowedTransitions is the status state machine. COMPLETED, CANCELLED and
// NO_SHOW are terminal.
var allowedTransitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusConfirmed: true,
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
}

// Appointment maps to the appointment table. Date and Time are clinic-local
// "YYYY-MM-DD" and "HH:MM" strings matching the slot generator's output.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	PatientName string     `db:"patient_name" json:"patient_name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	Date        string     `db:"date" json:"date"`
	Time        string     `db:"time" json:"time"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
