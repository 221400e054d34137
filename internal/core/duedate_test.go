package core_test

import (
	"testing"
	"time"

	"finance-backoffice/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		day   int
		today time.Time
		want  time.Time
	}{
		{"later this month", 20, date(2026, time.March, 15), date(2026, time.March, 20)},
		{"already passed rolls over", 10, date(2026, time.March, 15), date(2026, time.April, 10)},
		{"due today stays", 15, date(2026, time.March, 15), date(2026, time.March, 15)},
		{"day 31 clamped to april 30", 31, date(2026, time.April, 1), date(2026, time.April, 30)},
		{"day 31 clamped to feb 28", 31, date(2026, time.February, 1), date(2026, time.February, 28)},
		{"day 31 clamped to feb 29 leap", 31, date(2028, time.February, 1), date(2028, time.February, 29)},
		{"clamp then roll", 30, date(2026, time.April, 30), date(2026, time.April, 30)},
		{"jan 31 passed rolls to clamped feb", 31, date(2026, time.February, 2), date(2026, time.February, 28)},
		{"december rolls into january", 5, date(2026, time.December, 10), date(2027, time.January, 5)},
		{"day zero clamps to first", 0, date(2026, time.March, 1), date(2026, time.March, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.NextOccurrence(tt.day, tt.today)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence(%d, %s) = %s, want %s",
					tt.day, tt.today.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	today := date(2026, time.March, 15)
	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"today", today, 0},
		{"tomorrow", date(2026, time.March, 16), 1},
		{"yesterday", date(2026, time.March, 14), -1},
		{"next month", date(2026, time.April, 14), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.DaysUntil(tt.due, today); got != tt.want {
				t.Errorf("DaysUntil = %d, want %d", got, tt.want)
			}
		})
	}
}

// Stored due dates are midnight UTC while "today" comes from the server
// clock in its own zone. The calendar day must win over the instants: a due
// dated today is not overdue just because local midnight lags UTC midnight.
func TestDayComparisonsAcrossZones(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	today := time.Date(2026, time.August, 30, 12, 0, 0, 0, brt)

	if got := core.DisplayStatus(core.StatusPending, date(2026, time.August, 30), today); got != core.StatusPending {
		t.Errorf("due today in BRT displays %s, want PENDING", got)
	}
	if got := core.DisplayStatus(core.StatusPending, date(2026, time.August, 29), today); got != core.StatusOverdue {
		t.Errorf("due yesterday in BRT displays %s, want OVERDUE", got)
	}
	if got := core.DaysUntil(date(2026, time.August, 31), today); got != 1 {
		t.Errorf("DaysUntil tomorrow in BRT = %d, want 1", got)
	}
	if got := core.DaysUntil(date(2026, time.August, 30), today); got != 0 {
		t.Errorf("DaysUntil today in BRT = %d, want 0", got)
	}

	// East of UTC the local calendar day runs ahead of the UTC day; the
	// local day is still the one that counts.
	jst := time.FixedZone("JST", 9*60*60)
	late := time.Date(2026, time.August, 31, 1, 0, 0, 0, jst) // still Aug 30 in UTC
	if got := core.DaysUntil(date(2026, time.August, 31), late); got != 0 {
		t.Errorf("DaysUntil today in JST = %d, want 0", got)
	}
}

func TestDisplayStatus(t *testing.T) {
	today := date(2026, time.March, 15)
	past := date(2026, time.March, 1)
	future := date(2026, time.March, 30)

	tests := []struct {
		name    string
		status  core.DueStatus
		dueDate time.Time
		want    core.DueStatus
	}{
		{"pending past is overdue", core.StatusPending, past, core.StatusOverdue},
		{"pending today stays pending", core.StatusPending, today, core.StatusPending},
		{"pending future stays pending", core.StatusPending, future, core.StatusPending},
		{"paid past stays paid", core.StatusPaid, past, core.StatusPaid},
		{"received past stays received", core.StatusReceived, past, core.StatusReceived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.DisplayStatus(tt.status, tt.dueDate, today)
			if got != tt.want {
				t.Errorf("DisplayStatus(%s) = %s, want %s", tt.status, got, tt.want)
			}
			// Projecting twice must give the same answer.
			if again := core.DisplayStatus(got, tt.dueDate, today); again != got {
				t.Errorf("DisplayStatus is not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestDerivePriority(t *testing.T) {
	today := date(2026, time.March, 15)
	tests := []struct {
		name    string
		status  core.DueStatus
		dueDate time.Time
		want    core.DuePriority
	}{
		{"overdue is urgent", core.StatusPending, date(2026, time.March, 1), core.PriorityUrgent},
		{"due today is urgent", core.StatusPending, today, core.PriorityUrgent},
		{"within a week is high", core.StatusPending, date(2026, time.March, 20), core.PriorityHigh},
		{"boundary day 7 is high", core.StatusPending, date(2026, time.March, 22), core.PriorityHigh},
		{"day 8 is medium", core.StatusPending, date(2026, time.March, 23), core.PriorityMedium},
		{"day 30 is medium", core.StatusPending, date(2026, time.April, 14), core.PriorityMedium},
		{"far out is low", core.StatusPending, date(2026, time.June, 1), core.PriorityLow},
		{"settled overdue is low", core.StatusPaid, date(2026, time.March, 1), core.PriorityLow},
		{"received is low", core.StatusReceived, today, core.PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.DerivePriority(tt.status, tt.dueDate, today); got != tt.want {
				t.Errorf("DerivePriority = %s, want %s", got, tt.want)
			}
		})
	}
}
