package letters

import (
	"time"

	"github.com/edgard/letterbot/internal/database"
)

// DueDate returns the day key months calendar months after now, as seen in
// loc. When the target month is shorter, the day is clamped to its last day,
// so 31 August plus six months is the end of February.
func DueDate(now time.Time, months int, loc *time.Location) string {
	t := now.In(loc)
	year, month, day := t.Date()

	// Noon keeps DST transitions away from the date arithmetic.
	first := time.Date(year, month+time.Month(months), 1, 12, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, 12, 0, 0, 0, loc).Format(database.DayLayout)
}

// Today returns the day key of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(database.DayLayout)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, loc).Day()
}

// MonthsFor returns the delay in months selected by a button action.
func MonthsFor(action string) (int, bool) {
	switch action {
	case ActionSixMonths:
		return 6, true
	case ActionNineMonths:
		return 9, true
	case ActionYear:
		return 12, true
	default:
		return 0, false
	}
}
