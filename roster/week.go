package roster

import "time"

// DateLayout is the ISO calendar date format used for roster keys and upstream requests.
const DateLayout = "2006-01-02"

const workWeekDays = 5

// ComputeDisplayedWeekDates returns Monday to Friday of the week to show for ref,
// evaluated on ref's UTC calendar date. Weekends roll forward to the next week.
func ComputeDisplayedWeekDates(ref time.Time) []string {
	monday := DisplayedMonday(ref)

	dates := make([]string, 0, workWeekDays)
	for i := 0; i < workWeekDays; i++ {
		dates = append(dates, monday.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// DisplayedMonday returns midnight UTC of the first day in ComputeDisplayedWeekDates.
func DisplayedMonday(ref time.Time) time.Time {
	utc := ref.UTC()
	day := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	switch day.Weekday() {
	case time.Sunday:
		return day.AddDate(0, 0, 1)
	case time.Saturday:
		return day.AddDate(0, 0, 2)
	default:
		return day.AddDate(0, 0, -(int(day.Weekday()) - int(time.Monday)))
	}
}
