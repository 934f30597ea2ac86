package appointment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrSlotUnavailable   = errors.New("slot not available")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid appointment request: %s", strings.Join(e.Fields, ", "))
}

// AvailabilityChecker re-derives the bookable slots for a doctor and date.
// Create never trusts a client-supplied slot list.
type AvailabilityChecker interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}

// CreateRequest is the booking payload from the public API.
type CreateRequest struct {
	DoctorID    uuid.UUID  `json:"doctor_id"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	PatientName string     `json:"patient_name"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	repo         Repository
	availability AvailabilityChecker
}

func NewService(repo Repository, availability AvailabilityChecker) *Service {
	return &Service{repo: repo, availability: availability}
}

func validateCreate(req *CreateRequest) error {
	var fields []string

	if req.DoctorID == uuid.Nil {
		fields = append(fields, "doctor_id is required")
	}
	if strings.TrimSpace(req.PatientName) == "" {
		fields = append(fields, "patient_name is required")
	}
	// time.Parse accepts unpadded fields ("9:35"), which would never match a
	// generated slot; round-tripping through Format rejects them up front.
	if req.Date == "" {
		fields = append(fields, "date is required")
	} else if d, err := time.Parse("2006-01-02", req.Date); err != nil || d.Format("2006-01-02") != req.Date {
		fields = append(fields, "date must be YYYY-MM-DD")
	}
	if req.Time == "" {
		fields = append(fields, "time is required")
	} else if tm, err := time.Parse("15:04", req.Time); err != nil || tm.Format("15:04") != req.Time {
		fields = append(fields, "time must be HH:MM")
	}
	if req.Email != nil && !emailRe.MatchString(*req.Email) {
		fields = append(fields, "email is malformed")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates the request, re-derives the doctor's availability, and
// persists the booking with status SCHEDULED. The availability check and the
// insert are not atomic; a concurrent winner surfaces as ErrSlotTaken from
// the storage layer's uniqueness guarantee.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	slots, err := s.availability.AvailableSlots(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, err
	}

	available := false
	for _, slot := range slots {
		if slot == req.Time {
			available = true
			break
		}
	}
	if !available {
		return nil, ErrSlotUnavailable
	}

	a := &Appointment{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		PatientName: strings.TrimSpace(req.PatientName),
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
		Date:        req.Date,
		Time:        req.Time,
		Status:      StatusScheduled,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus transitions the appointment through the status state machine
// and returns the updated record.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("unknown status %q", status)}}
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !allowedTransitions[a.Status][status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}
