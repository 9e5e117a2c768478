package utils

import (
	"time"
)

// All day-boundary math runs in the business timezone. Visit dates and
// commission periods coming from clients are YYYY-MM-DD strings with no
// zone, so servers in other regions must not shift them.
var BusinessLocation = mustLoadLocation("Asia/Dubai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("cannot load business timezone " + name + ": " + err.Error())
	}
	return loc
}

// ParseDate parses a YYYY-MM-DD string in the business timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, BusinessLocation)
}

// FormatDate renders t as YYYY-MM-DD in the business timezone.
func FormatDate(t time.Time) string {
	return t.In(BusinessLocation).Format("2006-01-02")
}

// DayBounds returns [start, end) of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(BusinessLocation)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, BusinessLocation)
	return start, start.AddDate(0, 0, 1)
}

// WeekStart returns the Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	start, _ := DayBounds(t)
	weekday := int(start.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return start.AddDate(0, 0, -(weekday - 1))
}

// MonthStart returns the first of the month containing t.
func MonthStart(t time.Time) time.Time {
	t = t.In(BusinessLocation)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, BusinessLocation)
}

// PeriodWindow returns the [start, end) window of the given target type
// containing t. Weeks start on Monday, months on the 1st.
func PeriodWindow(targetType string, t time.Time) (time.Time, time.Time) {
	switch targetType {
	case "weekly":
		start := WeekStart(t)
		return start, start.AddDate(0, 0, 7)
	case "monthly":
		start := MonthStart(t)
		return start, start.AddDate(0, 1, 0)
	default: // daily
		return DayBounds(t)
	}
}
