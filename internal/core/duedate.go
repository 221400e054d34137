package core

import "time"

// dateOnly reduces a time to its calendar day, anchored in UTC. Stored due
// dates parse as midnight UTC while "today" arrives in the server's zone, so
// comparisons must go through the calendar components, not the instants.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days in the month containing t.
func daysInMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// clampDay bounds a configured day-of-month to what the target month actually has,
// so a charge configured for day 31 falls due on Feb 28 rather than spilling over.
func clampDay(day, year int, month time.Month, loc *time.Location) int {
	if day < 1 {
		day = 1
	}
	if max := daysInMonth(year, month, loc); day > max {
		day = max
	}
	return day
}

// NextOccurrence returns the next due date for a recurring charge configured
// on the given day of month. If the day has already passed in today's month
// the occurrence rolls to the next month; a charge due today stays in the
// current month.
func NextOccurrence(day int, today time.Time) time.Time {
	today = dateOnly(today)
	loc := today.Location()

	d := clampDay(day, today.Year(), today.Month(), loc)
	candidate := time.Date(today.Year(), today.Month(), d, 0, 0, 0, 0, loc)
	if candidate.Before(today) {
		next := today.AddDate(0, 1, -today.Day()+1) // first day of next month
		d = clampDay(day, next.Year(), next.Month(), loc)
		candidate = time.Date(next.Year(), next.Month(), d, 0, 0, 0, 0, loc)
	}
	return candidate
}

// DaysUntil returns the number of calendar days from today to due.
// Negative values mean the date is in the past.
func DaysUntil(due, today time.Time) int {
	return int(dateOnly(due).Sub(dateOnly(today)).Hours() / 24)
}

// DisplayStatus projects the read-time status of a due: a stored PENDING with
// a past due date displays as OVERDUE. The projection is idempotent and never
// mutates the stored status.
func DisplayStatus(status DueStatus, dueDate, today time.Time) DueStatus {
	if status == StatusPending && dateOnly(dueDate).Before(dateOnly(today)) {
		return StatusOverdue
	}
	return status
}

// DerivePriority computes the display priority as a pure function of
// (dueDate, status): URGENT when overdue or due today, HIGH within 7 days,
// MEDIUM within 30, LOW otherwise. Settled dues are always LOW.
func DerivePriority(status DueStatus, dueDate, today time.Time) DuePriority {
	if status == StatusPaid || status == StatusReceived {
		return PriorityLow
	}
	switch days := DaysUntil(dueDate, today); {
	case days <= 0:
		return PriorityUrgent
	case days <= 7:
		return PriorityHigh
	case days <= 30:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
