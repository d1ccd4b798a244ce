package dates

import "time"

const ISODate = "2006-01-02"

// DayOf truncates t to its calendar day in UTC. Ledger keys compare by
// day, so every date crossing a package boundary goes through this.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := DayOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday of the week containing t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// Between returns every day from start to end inclusive. Callers rendering
// tables iterate this so days without entries still appear.
func Between(start, end time.Time) []time.Time {
	start, end = DayOf(start), DayOf(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func Parse(value string) (time.Time, error) {
	return time.Parse(ISODate, value)
}

func Format(t time.Time) string {
	return t.Format(ISODate)
}
