package utils

import (
	"time"

	"github.com/quintaverde/taskroster/internal/constants"
)

// Day normalizes a timestamp to midnight UTC so that date-valued columns
// compare and key consistently regardless of the driver's location handling.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date for use in map keys and logs
func DateKey(t time.Time) string {
	return t.Format(constants.DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// WeekdayIndex maps a date's weekday to the Monday=0 .. Sunday=6 convention
// used by the recurrence arrays.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FortnightDay maps a calendar day to a 1-15 cycle: days 1-15 map to
// themselves, days 16-30 map back to 1-15, and the 31st wraps to 1.
func FortnightDay(dayOfMonth int) int {
	return ((dayOfMonth - 1) % 15) + 1
}

// WeekOfMonth returns the 1-based week number within the month for a
// calendar day (1-7 → 1, 8-14 → 2, ...).
func WeekOfMonth(dayOfMonth int) int {
	return ((dayOfMonth - 1) / 7) + 1
}
