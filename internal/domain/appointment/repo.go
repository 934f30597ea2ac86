package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
	// BookedTimes returns the times already taken for the doctor on the
	// date, excluding cancelled and no-show appointments.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}
