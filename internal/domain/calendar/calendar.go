package calendar

import "time"

// HolidaySet is a snapshot of registered holiday dates, keyed by the date
// truncated to midnight UTC.
type HolidaySet map[time.Time]struct{}

func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[DateOnly(d)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[DateOnly(d)]
	return ok
}

// DateOnly drops the time-of-day and location from a timestamp.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay reports whether d is a weekday that is not a holiday.
func IsWorkingDay(d time.Time, holidays HolidaySet) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holidays.Contains(d)
}

// WorkingDays returns the ordered working days in [start, end] inclusive.
// An inverted range yields nil rather than an error; callers validate
// start <= end before a request is ever stored.
func WorkingDays(start, end time.Time, holidays HolidaySet) []time.Time {
	start = DateOnly(start)
	end = DateOnly(end)
	if start.After(end) {
		return nil
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d, holidays) {
			days = append(days, d)
		}
	}
	return days
}

func CountWorkingDays(start, end time.Time, holidays HolidaySet) int {
	return len(WorkingDays(start, end, holidays))
}

// CarryforwardEligibleDays counts the working days in [start, end] that
// fall inside the carryforward window (January through March).
func CarryforwardEligibleDays(start, end time.Time, holidays HolidaySet) int {
	count := 0
	for _, d := range WorkingDays(start, end, holidays) {
		if d.Month() <= time.March {
			count++
		}
	}
	return count
}
