package reminder

import (
	"time"

	"github.com/rpmontada/equinos/internal/domain/models"
)

// DefaultWindowDays is the lookahead used to flag upcoming deadlines.
const DefaultWindowDays = 15

// Status classifies nextDueDate relative to today at day granularity. Both
// sides keep their wall-clock date: today in its own location and the due date
// as written. A non-positive windowDays falls back to DefaultWindowDays.
func Status(nextDueDate string, today time.Time, windowDays int) models.DueStatus {
	due, ok := models.ParseCalendarDay(nextDueDate)
	if !ok {
		return models.DueNone
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	delta := DaysBetween(today, due)
	switch {
	case delta < 0:
		return models.DueOverdue
	case delta == 0:
		return models.DueToday
	case delta <= windowDays:
		return models.DueSoon
	default:
		return models.DueNotYet
	}
}

// NeedsAttention reports whether the status is highlighted as due.
func NeedsAttention(status models.DueStatus) bool {
	return status == models.DueToday || status == models.DueSoon
}

// DaysBetween counts calendar days from one day to another, ignoring time of day.
func DaysBetween(from, to time.Time) int {
	return int(models.DayOf(to).Sub(models.DayOf(from)).Hours() / 24)
}

// Policy decides which statuses a listing highlights.
type Policy struct {
	WindowDays  int
	FlagOverdue bool
}

// Highlight applies the policy to a status.
func (p Policy) Highlight(status models.DueStatus) bool {
	if p.FlagOverdue && status == models.DueOverdue {
		return true
	}
	return NeedsAttention(status)
}
