package availability

import (
	"context"
	"errors"
	"time"

	"github.com/clinicdesk/api/internal/domain/schedule"
	"github.com/google/uuid"
)

var ErrDoctorNotFound = errors.New("doctor not found")

// RuleSource resolves the schedule inputs for a doctor and date.
type RuleSource interface {
	ActiveRule(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*schedule.WeeklyRule, error)
	SpecialDate(ctx context.Context, doctorID uuid.UUID, date string) (*schedule.SpecialDate, error)
}

// BookingSource resolves the times already taken for a doctor and date,
// excluding cancelled and no-show appointments.
type BookingSource interface {
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}

// DoctorSource answers whether a doctor id resolves to an active doctor.
type DoctorSource interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service resolves the rule, override, and bookings for a (doctor, date) pair
// and drives the slot generator. It is read-only and safe for concurrent use.
type Service struct {
	rules    RuleSource
	bookings BookingSource
	doctors  DoctorSource
	cache    *SpecialDateCache
	loc      *time.Location
	now      func() time.Time
}

func NewService(rules RuleSource, bookings BookingSource, doctors DoctorSource, cache *SpecialDateCache, loc *time.Location) *Service {
	return &Service{
		rules:    rules,
		bookings: bookings,
		doctors:  doctors,
		cache:    cache,
		loc:      loc,
		now:      time.Now,
	}
}

// AvailableSlots returns the bookable "HH:MM" times for the doctor on the
// date. A day with no rule or a holiday yields an empty list, not an error.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	exists, err := s.doctors.Exists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDoctorNotFound
	}

	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	rule, err := s.rules.ActiveRule(ctx, doctorID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}

	override, err := s.specialDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	times, err := s.bookings.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(times))
	for _, t := range times {
		booked[t] = true
	}

	return Generate(rule, override, booked, date, s.now(), s.loc)
}

// InvalidateSpecialDate drops the cached special-date entry for the doctor
// and date.
func (s *Service) InvalidateSpecialDate(doctorID uuid.UUID, date string) {
	if s.cache != nil {
		s.cache.Invalidate(doctorID, date)
	}
}

func (s *Service) specialDate(ctx context.Context, doctorID uuid.UUID, date string) (*schedule.SpecialDate, error) {
	if s.cache != nil {
		if sd, ok := s.cache.Get(doctorID, date); ok {
			return sd, nil
		}
	}
	sd, err := s.rules.SpecialDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(doctorID, date, sd)
	}
	return sd, nil
}

// ValidationError reports a malformed query parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}
