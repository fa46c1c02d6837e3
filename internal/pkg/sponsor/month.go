package sponsor

import "time"

// monthLayout is the calendar-month key format used as the unit of sale
// and expiry. Keys compare correctly as plain strings.
const monthLayout = "2006-01"

// MonthKey formats a point in time as its calendar-month key.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// CurrentMonth returns the month key for now.
func CurrentMonth() string {
	return MonthKey(time.Now())
}

// NextMonth returns the month key following the current one. Purchases are
// only opened for this month in the UI flow.
func NextMonth() string {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey(first.AddDate(0, 1, 0))
}

// ValidMonthKey reports whether s is a well-formed month key.
func ValidMonthKey(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}
