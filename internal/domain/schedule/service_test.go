package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockRuleRepo struct {
	rules map[uuid.UUID][]*WeeklyRule
}

func newMockRuleRepo() *mockRuleRepo {
	return &mockRuleRepo{rules: make(map[uuid.UUID][]*WeeklyRule)}
}

func (m *mockRuleRepo) ReplaceForDoctor(_ context.Context, doctorID uuid.UUID, rules []*WeeklyRule) error {
	for _, r := range rules {
		r.ID = uuid.New()
		r.DoctorID = doctorID
	}
	m.rules[doctorID] = rules
	return nil
}

func (m *mockRuleRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*WeeklyRule, error) {
	return m.rules[doctorID], nil
}

func (m *mockRuleRepo) GetByDoctorAndDay(_ context.Context, doctorID uuid.UUID, dayOfWeek int) (*WeeklyRule, error) {
	for _, r := range m.rules[doctorID] {
		if r.DayOfWeek == dayOfWeek {
			return r, nil
		}
	}
	return nil, nil
}

type mockSpecialDateRepo struct {
	dates map[uuid.UUID]*SpecialDate
}

func newMockSpecialDateRepo() *mockSpecialDateRepo {
	return &mockSpecialDateRepo{dates: make(map[uuid.UUID]*SpecialDate)}
}

func (m *mockSpecialDateRepo) Create(_ context.Context, sd *SpecialDate) error {
	for _, existing := range m.dates {
		if existing.DoctorID == sd.DoctorID && existing.Date == sd.Date {
			return ErrDuplicateSpecialDate
		}
	}
	sd.ID = uuid.New()
	sd.CreatedAt = time.Now()
	m.dates[sd.ID] = sd
	return nil
}

func (m *mockSpecialDateRepo) Delete(_ context.Context, id uuid.UUID) (*SpecialDate, error) {
	sd, ok := m.dates[id]
	if !ok {
		return nil, ErrSpecialDateNotFound
	}
	delete(m.dates, id)
	return sd, nil
}

func (m *mockSpecialDateRepo) GetByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date string) (*SpecialDate, error) {
	for _, sd := range m.dates {
		if sd.DoctorID == doctorID && sd.Date == date {
			return sd, nil
		}
	}
	return nil, nil
}

func (m *mockSpecialDateRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, from, to string) ([]*SpecialDate, error) {
	var result []*SpecialDate
	for _, sd := range m.dates {
		if sd.DoctorID != doctorID {
			continue
		}
		if from != "" && sd.Date < from {
			continue
		}
		if to != "" && sd.Date > to {
			continue
		}
		result = append(result, sd)
	}
	return result, nil
}

func newTestService() (*Service, *mockRuleRepo, *mockSpecialDateRepo) {
	rules := newMockRuleRepo()
	dates := newMockSpecialDateRepo()
	return NewService(rules, dates), rules, dates
}

func strPtr(s string) *string { return &s }

// -- Tests --

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30am", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestReplaceWeeklyRules(t *testing.T) {
	svc, repo, _ := newTestService()
	doctorID := uuid.New()

	rules := []*WeeklyRule{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30, Active: true},
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "14:00", SlotDurationMinutes: 20, BufferMinutes: 5, Active: true},
	}
	if err := svc.ReplaceWeeklyRules(context.Background(), doctorID, rules); err != nil {
		t.Fatalf("ReplaceWeeklyRules: %v", err)
	}
	if len(repo.rules[doctorID]) != 2 {
		t.Fatalf("expected 2 rules stored, got %d", len(repo.rules[doctorID]))
	}

	// Replacement drops the old set entirely.
	replacement := []*WeeklyRule{
		{DayOfWeek: 3, StartTime: "08:00", EndTime: "12:00", SlotDurationMinutes: 15, Active: true},
	}
	if err := svc.ReplaceWeeklyRules(context.Background(), doctorID, replacement); err != nil {
		t.Fatalf("ReplaceWeeklyRules (second): %v", err)
	}
	if len(repo.rules[doctorID]) != 1 {
		t.Fatalf("expected old rules to be replaced, got %d rules", len(repo.rules[doctorID]))
	}
	if repo.rules[doctorID][0].DayOfWeek != 3 {
		t.Errorf("expected replacement rule for day 3, got day %d", repo.rules[doctorID][0].DayOfWeek)
	}
}

func TestReplaceWeeklyRules_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	doctorID := uuid.New()

	cases := []struct {
		name string
		rule *WeeklyRule
		want string
	}{
		{
			"zero slot duration",
			&WeeklyRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 0},
			"slot_duration_minutes",
		},
		{
			"negative buffer",
			&WeeklyRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30, BufferMinutes: -5},
			"buffer_minutes",
		},
		{
			"start after end",
			&WeeklyRule{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00", SlotDurationMinutes: 30},
			"start_time must be before end_time",
		},
		{
			"malformed clock",
			&WeeklyRule{DayOfWeek: 1, StartTime: "9am", EndTime: "17:00", SlotDurationMinutes: 30},
			"start_time must be HH:MM",
		},
		{
			"bad day of week",
			&WeeklyRule{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30},
			"day_of_week",
		},
		{
			"break outside working hours",
			&WeeklyRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30,
				BreakStart: strPtr("08:00"), BreakEnd: strPtr("08:30")},
			"break window must fall within working hours",
		},
		{
			"inverted break",
			&WeeklyRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30,
				BreakStart: strPtr("14:00"), BreakEnd: strPtr("13:00")},
			"break_start must be before break_end",
		},
		{
			"half break window",
			&WeeklyRule{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30,
				BreakStart: strPtr("13:00")},
			"break_start and break_end must both be set",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ReplaceWeeklyRules(context.Background(), doctorID, []*WeeklyRule{tc.rule})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %q", tc.want, ve.Error())
			}
		})
	}
}

func TestReplaceWeeklyRules_DuplicateDay(t *testing.T) {
	svc, _, _ := newTestService()

	rules := []*WeeklyRule{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", SlotDurationMinutes: 30},
		{DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", SlotDurationMinutes: 30},
	}
	err := svc.ReplaceWeeklyRules(context.Background(), uuid.New(), rules)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for duplicate day, got %v", err)
	}
}

func TestActiveRule(t *testing.T) {
	svc, _, _ := newTestService()
	doctorID := uuid.New()

	rules := []*WeeklyRule{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30, Active: true},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "17:00", SlotDurationMinutes: 30, Active: false},
	}
	if err := svc.ReplaceWeeklyRules(context.Background(), doctorID, rules); err != nil {
		t.Fatalf("ReplaceWeeklyRules: %v", err)
	}

	rule, err := svc.ActiveRule(context.Background(), doctorID, 1)
	if err != nil || rule == nil {
		t.Fatalf("expected active rule for Monday, got rule=%v err=%v", rule, err)
	}

	// Inactive rules are treated as absent.
	rule, err = svc.ActiveRule(context.Background(), doctorID, 2)
	if err != nil || rule != nil {
		t.Fatalf("expected no active rule for Tuesday, got rule=%v err=%v", rule, err)
	}

	// Uncovered day.
	rule, err = svc.ActiveRule(context.Background(), doctorID, 5)
	if err != nil || rule != nil {
		t.Fatalf("expected no rule for Friday, got rule=%v err=%v", rule, err)
	}
}

func TestCreateSpecialDate(t *testing.T) {
	svc, _, _ := newTestService()
	doctorID := uuid.New()

	sd := &SpecialDate{DoctorID: doctorID, Date: "2026-09-15", Type: TypeHoliday, Reason: strPtr("clinic closed")}
	if err := svc.CreateSpecialDate(context.Background(), sd); err != nil {
		t.Fatalf("CreateSpecialDate: %v", err)
	}

	// A second entry for the same date is rejected.
	dup := &SpecialDate{DoctorID: doctorID, Date: "2026-09-15", Type: TypeBreak}
	if err := svc.CreateSpecialDate(context.Background(), dup); !errors.Is(err, ErrDuplicateSpecialDate) {
		t.Fatalf("expected ErrDuplicateSpecialDate, got %v", err)
	}
}

func TestCreateSpecialDate_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name string
		sd   *SpecialDate
	}{
		{"bad date", &SpecialDate{Date: "15-09-2026", Type: TypeHoliday}},
		{"bad type", &SpecialDate{Date: "2026-09-15", Type: "VACATION"}},
		{"half window", &SpecialDate{Date: "2026-09-15", Type: TypeBreak, StartTime: strPtr("13:00")}},
		{"inverted window", &SpecialDate{Date: "2026-09-15", Type: TypeBreak,
			StartTime: strPtr("14:00"), EndTime: strPtr("13:00")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CreateSpecialDate(context.Background(), tc.sd)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestListSpecialDates_Range(t *testing.T) {
	svc, _, _ := newTestService()
	doctorID := uuid.New()

	for _, date := range []string{"2026-09-01", "2026-09-15", "2026-10-01"} {
		sd := &SpecialDate{DoctorID: doctorID, Date: date, Type: TypeHoliday}
		if err := svc.CreateSpecialDate(context.Background(), sd); err != nil {
			t.Fatalf("CreateSpecialDate(%s): %v", date, err)
		}
	}

	dates, err := svc.ListSpecialDates(context.Background(), doctorID, "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("ListSpecialDates: %v", err)
	}
	if len(dates) != 2 {
		t.Errorf("expected 2 dates in September, got %d", len(dates))
	}
}
