package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSpecialDateNotFound  = errors.New("special date not found")
	ErrDuplicateSpecialDate = errors.New("special date already exists for this doctor and date")
)

// ValidationError reports the rule or special-date fields that failed
// validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schedule: %s", strings.Join(e.Fields, ", "))
}

// ParseClock parses an "HH:MM" clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

type Service struct {
	rules        RuleRepository
	specialDates SpecialDateRepository
}

func NewService(rules RuleRepository, specialDates SpecialDateRepository) *Service {
	return &Service{rules: rules, specialDates: specialDates}
}

// validateRule checks a single weekly rule. The index is used to label field
// errors when validating a replacement set.
func validateRule(r *WeeklyRule, label string) []string {
	var fields []string

	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		fields = append(fields, label+"day_of_week must be 0-6")
	}
	if r.SlotDurationMinutes <= 0 {
		fields = append(fields, label+"slot_duration_minutes must be positive")
	}
	if r.BufferMinutes < 0 {
		fields = append(fields, label+"buffer_minutes must not be negative")
	}

	start, errStart := ParseClock(r.StartTime)
	if errStart != nil {
		fields = append(fields, label+"start_time must be HH:MM")
	}
	end, errEnd := ParseClock(r.EndTime)
	if errEnd != nil {
		fields = append(fields, label+"end_time must be HH:MM")
	}
	if errStart == nil && errEnd == nil && start >= end {
		fields = append(fields, label+"start_time must be before end_time")
	}

	if (r.BreakStart == nil) != (r.BreakEnd == nil) {
		fields = append(fields, label+"break_start and break_end must both be set")
	}
	if r.BreakStart != nil && r.BreakEnd != nil {
		bs, errBS := ParseClock(*r.BreakStart)
		be, errBE := ParseClock(*r.BreakEnd)
		switch {
		case errBS != nil || errBE != nil:
			fields = append(fields, label+"break window must be HH:MM")
		case bs >= be:
			fields = append(fields, label+"break_start must be before break_end")
		case errStart == nil && errEnd == nil && (bs < start || be > end):
			fields = append(fields, label+"break window must fall within working hours")
		}
	}

	return fields
}

// ReplaceWeeklyRules swaps out the doctor's entire weekly schedule for the
// given rule set. The whole set is validated before anything is written.
func (s *Service) ReplaceWeeklyRules(ctx context.Context, doctorID uuid.UUID, rules []*WeeklyRule) error {
	var fields []string
	seen := make(map[int]bool)

	for i, rule := range rules {
		label := fmt.Sprintf("rules[%d]: ", i)
		fields = append(fields, validateRule(rule, label)...)
		if seen[rule.DayOfWeek] {
			fields = append(fields, label+fmt.Sprintf("duplicate rule for day_of_week %d", rule.DayOfWeek))
		}
		seen[rule.DayOfWeek] = true
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return s.rules.ReplaceForDoctor(ctx, doctorID, rules)
}

func (s *Service) ListWeeklyRules(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyRule, error) {
	return s.rules.ListByDoctor(ctx, doctorID)
}

// ActiveRule returns the active rule covering the weekday, or nil when no
// rule applies.
func (s *Service) ActiveRule(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*WeeklyRule, error) {
	rule, err := s.rules.GetByDoctorAndDay(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if rule == nil || !rule.Active {
		return nil, nil
	}
	return rule, nil
}

func (s *Service) CreateSpecialDate(ctx context.Context, sd *SpecialDate) error {
	var fields []string

	if _, err := time.Parse("2006-01-02", sd.Date); err != nil {
		fields = append(fields, "date must be YYYY-MM-DD")
	}
	if sd.Type != TypeHoliday && sd.Type != TypeBreak {
		fields = append(fields, "type must be HOLIDAY or BREAK")
	}
	if (sd.StartTime == nil) != (sd.EndTime == nil) {
		fields = append(fields, "start_time and end_time must both be set")
	}
	if sd.StartTime != nil && sd.EndTime != nil {
		st, errST := ParseClock(*sd.StartTime)
		et, errET := ParseClock(*sd.EndTime)
		switch {
		case errST != nil || errET != nil:
			fields = append(fields, "override window must be HH:MM")
		case st >= et:
			fields = append(fields, "start_time must be before end_time")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return s.specialDates.Create(ctx, sd)
}

func (s *Service) DeleteSpecialDate(ctx context.Context, id uuid.UUID) (*SpecialDate, error) {
	return s.specialDates.Delete(ctx, id)
}

func (s *Service) ListSpecialDates(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*SpecialDate, error) {
	return s.specialDates.ListByDoctor(ctx, doctorID, from, to)
}

// SpecialDate returns the entry for the doctor and date, or nil when the date
// has none.
func (s *Service) SpecialDate(ctx context.Context, doctorID uuid.UUID, date string) (*SpecialDate, error) {
	return s.specialDates.GetByDoctorAndDate(ctx, doctorID, date)
}
