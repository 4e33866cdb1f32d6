package shared

import "time"

// ParseDate accepts the two shapes clients send for leave ranges and
// holiday dates: a full RFC3339 timestamp or a bare calendar date. Empty
// input means "no bound" and parses to the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.DateOnly, value)
}
