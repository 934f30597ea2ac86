package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/clinicdesk/api/internal/domain/schedule"
)

// ErrInvalidScheduleConfig marks a weekly rule whose stored clock strings or
// step size cannot produce slots. This is a data-integrity problem, not a
// caller mistake.
var ErrInvalidScheduleConfig = errors.New("invalid schedule configuration")

// Generate computes the bookable "HH:MM" start times for one doctor on one
// date, given already-resolved inputs. It is pure: no I/O, no clock reads
// beyond the supplied now.
//
// A nil or inactive rule yields no slots, as does a HOLIDAY override. A BREAK
// override carrying its own window replaces the rule's break window for that
// date. Times start at the rule's start and advance by slot duration plus
// buffer; the working window is half-open, so no slot starts at or after the
// end time. Slot starts inside [breakStart, breakEnd) are skipped, as are
// already-booked times. When date is today in the clinic's timezone, times at
// or before the current wall clock are dropped.
func Generate(rule *schedule.WeeklyRule, override *schedule.SpecialDate, booked map[string]bool, date string, now time.Time, loc *time.Location) ([]string, error) {
	if rule == nil || !rule.Active {
		return nil, nil
	}
	if override != nil && override.Type == schedule.TypeHoliday {
		return nil, nil
	}

	start, err := schedule.ParseClock(rule.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleConfig, err)
	}
	end, err := schedule.ParseClock(rule.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleConfig, err)
	}

	step := rule.SlotDurationMinutes + rule.BufferMinutes
	if step <= 0 {
		return nil, fmt.Errorf("%w: non-positive step size %d", ErrInvalidScheduleConfig, step)
	}

	breakStart, breakEnd, err := effectiveBreak(rule, override)
	if err != nil {
		return nil, err
	}

	// Same-day bookings cannot target elapsed times.
	cutoff := -1
	local := now.In(loc)
	if date == local.Format("2006-01-02") {
		cutoff = local.Hour()*60 + local.Minute()
	}

	var slots []string
	for t := start; t < end; t += step {
		if breakStart >= 0 && t >= breakStart && t < breakEnd {
			continue
		}
		clock := fmt.Sprintf("%02d:%02d", t/60, t%60)
		if booked[clock] {
			continue
		}
		if t <= cutoff {
			continue
		}
		slots = append(slots, clock)
	}
	return slots, nil
}

// effectiveBreak resolves the break window for the date: a BREAK override with
// times wins over the rule's own window. Returns -1 bounds when no break
// applies.
func effectiveBreak(rule *schedule.WeeklyRule, override *schedule.SpecialDate) (int, int, error) {
	var startStr, endStr *string

	if override != nil && override.Type == schedule.TypeBreak && override.StartTime != nil && override.EndTime != nil {
		startStr, endStr = override.StartTime, override.EndTime
	} else if rule.BreakStart != nil && rule.BreakEnd != nil {
		startStr, endStr = rule.BreakStart, rule.BreakEnd
	}

	if startStr == nil {
		return -1, -1, nil
	}

	bs, err := schedule.ParseClock(*startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidScheduleConfig, err)
	}
	be, err := schedule.ParseClock(*endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidScheduleConfig, err)
	}
	return bs, be, nil
}
