package jobs

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestNextOccurrenceBeforeTrigger(t *testing.T) {
	grant := triggers[0]

	next := nextOccurrence(at(2026, time.June, 1, 12), grant, time.UTC)
	if want := at(2026, time.December, 31, 0); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrenceAfterTriggerRollsToNextYear(t *testing.T) {
	cleanup := triggers[1]

	next := nextOccurrence(at(2026, time.April, 1, 0), cleanup, time.UTC)
	if want := at(2027, time.March, 31, 0); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrenceAtExactInstant(t *testing.T) {
	grant := triggers[0]

	now := at(2026, time.December, 31, 0)
	if next := nextOccurrence(now, grant, time.UTC); !next.Equal(now) {
		t.Fatalf("next = %v, want the instant itself", next)
	}
}

func TestNextOccurrenceReminderTime(t *testing.T) {
	reminder := triggers[2]

	next := nextOccurrence(at(2026, time.March, 15, 8), reminder, time.UTC)
	if want := at(2026, time.March, 15, 9); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	next = nextOccurrence(at(2026, time.March, 15, 10), reminder, time.UTC)
	if want := at(2027, time.March, 15, 9); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrenceHonoursTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	grant := triggers[0]

	// Already past midnight of 31 December in Colombo, though still 30
	// December in UTC.
	now := time.Date(2026, time.December, 30, 20, 0, 0, 0, time.UTC)
	next := nextOccurrence(now, grant, loc)
	if next.Year() != 2027 {
		t.Fatalf("next = %v, want the 2027 trigger", next)
	}
}

func TestValidJobType(t *testing.T) {
	for _, jt := range []string{JobYearEndGrant, JobCarryforwardCleanup, JobCarryforwardReminder} {
		if !ValidJobType(jt) {
			t.Fatalf("%q should be valid", jt)
		}
	}
	if ValidJobType("payroll") {
		t.Fatal("unknown type accepted")
	}
}
