package models

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day format used on the wire by the record backend.
const DayLayout = "2006-01-02"

// MonthLayout identifies a calendar month, e.g. 2024-03.
const MonthLayout = "2006-01"

var dayLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ParseDay parses an ISO 8601 date or timestamp and truncates it to its UTC
// calendar day. Values carrying an offset are converted to UTC first.
func ParseDay(value string) (time.Time, bool) {
	parsed, ok := parseTimestamp(value)
	if !ok {
		return time.Time{}, false
	}
	return DayOf(parsed.UTC()), true
}

// ParseCalendarDay is ParseDay without the UTC conversion: the day is the
// one written in the value, whatever its offset. Compare it against DayOf a
// clock reading taken in the same zone the dates are written in.
func ParseCalendarDay(value string) (time.Time, bool) {
	parsed, ok := parseTimestamp(value)
	if !ok {
		return time.Time{}, false
	}
	return DayOf(parsed), true
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dayLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// DayOf keeps the calendar date of t as seen in t's own location, at UTC midnight.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses a YYYY-MM key into the first day of that month.
func ParseMonth(value string) (time.Time, bool) {
	parsed, err := time.Parse(MonthLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
