package leave

import (
	"testing"
	"time"

	"github.com/swalih2233/hr.employee/internal/domain/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationSkipsWeekendsAndHolidays(t *testing.T) {
	// Mon 2026-01-05 through Sun 2026-01-11, with a holiday on Wednesday.
	holidays := calendar.NewHolidaySet([]time.Time{date(2026, time.January, 7)})

	got := Duration(date(2026, time.January, 5), date(2026, time.January, 11), holidays)
	if got != 4 {
		t.Fatalf("duration = %d, want 4", got)
	}
}

func TestCarryforwardSplitCapsAtAvailable(t *testing.T) {
	if got := CarryforwardSplit(5, 3); got != 3 {
		t.Fatalf("split = %d, want 3", got)
	}
	if got := CarryforwardSplit(5, 10); got != 5 {
		t.Fatalf("split = %d, want 5", got)
	}
	if got := CarryforwardSplit(5, 0); got != 0 {
		t.Fatalf("split = %d, want 0", got)
	}
	if got := CarryforwardSplit(0, 6); got != 0 {
		t.Fatalf("split = %d, want 0", got)
	}
}

func TestCarryforwardSplitWithWindowDays(t *testing.T) {
	// Mon 2026-03-30 through Fri 2026-04-03: two working days in March,
	// three in April. Only the March days qualify for the pool.
	start, end := date(2026, time.March, 30), date(2026, time.April, 3)
	eligible := calendar.CarryforwardEligibleDays(start, end, nil)

	if got := CarryforwardSplit(eligible, 6); got != 2 {
		t.Fatalf("split = %d, want 2", got)
	}
}
