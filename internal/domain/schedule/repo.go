package schedule

import (
	"context"

	"github.com/google/uuid"
)

type RuleRepository interface {
	// ReplaceForDoctor atomically swaps the doctor's weekly rules for the
	// given set.
	ReplaceForDoctor(ctx context.Context, doctorID uuid.UUID, rules []*WeeklyRule) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyRule, error)
	GetByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*WeeklyRule, error)
}

type SpecialDateRepository interface {
	Create(ctx context.Context, sd *SpecialDate) error
	// Delete removes the entry and returns it, so callers can invalidate
	// derived state for the affected (doctor, date).
	Delete(ctx context.Context, id uuid.UUID) (*SpecialDate, error)
	GetByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date string) (*SpecialDate, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*SpecialDate, error)
}
