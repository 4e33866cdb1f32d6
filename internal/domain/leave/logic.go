package leave

import (
	"time"

	"github.com/swalih2233/hr.employee/internal/domain/calendar"
)

// Duration counts the working days a request spans. Weekend days and
// company holidays inside the range cost nothing.
func Duration(start, end time.Time, holidays calendar.HolidaySet) int {
	return calendar.CountWorkingDays(start, end, holidays)
}

// CarryforwardSplit decides how many of an annual request's working days
// draw from the carryforward pool: the days inside the use-by window
// (January through March), capped at what the pool still holds.
func CarryforwardSplit(eligibleDays, available int) int {
	if available <= 0 || eligibleDays <= 0 {
		return 0
	}
	if eligibleDays < available {
		return eligibleDays
	}
	return available
}
