package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finance-backoffice/internal/core"
)

func pendingDue(id string, dueType core.DueType, amount int64, dueDate time.Time) core.FinancialDue {
	return core.FinancialDue{
		ID:      id,
		Type:    dueType,
		Amount:  decimal.NewFromInt(amount),
		DueDate: dueDate,
		Status:  core.StatusPending,
	}
}

func TestComputeOverview_Empty(t *testing.T) {
	o := core.ComputeOverview(nil, date(2026, time.March, 15))

	if o.Overdue.Count != 0 || o.DueToday.Count != 0 || o.DueWithin7Days.Count != 0 {
		t.Errorf("expected empty buckets, got %+v", o)
	}
	if !o.CollectionRate.IsZero() || !o.PaymentRate.IsZero() || !o.DefaultRate.IsZero() {
		t.Errorf("rates over empty denominators must be 0, got %s/%s/%s",
			o.CollectionRate, o.PaymentRate, o.DefaultRate)
	}
	if !o.ProjectedCashFlow30d.IsZero() {
		t.Errorf("cash flow = %s, want 0", o.ProjectedCashFlow30d)
	}
}

func TestComputeOverview_Buckets(t *testing.T) {
	today := date(2026, time.March, 15)
	dues := []core.FinancialDue{
		pendingDue("overdue-1", core.DueTypePayable, 100, date(2026, time.March, 10)),
		pendingDue("overdue-2", core.DueTypeReceivable, 50, date(2026, time.March, 1)),
		pendingDue("today-1", core.DueTypePayable, 200, today),
		pendingDue("week-1", core.DueTypeReceivable, 300, date(2026, time.March, 20)),
		pendingDue("week-edge", core.DueTypePayable, 10, date(2026, time.March, 22)),
		pendingDue("later", core.DueTypePayable, 999, date(2026, time.May, 1)),
		// Settled dues never land in urgency buckets.
		{ID: "paid", Type: core.DueTypePayable, Amount: decimal.NewFromInt(77),
			DueDate: date(2026, time.March, 1), Status: core.StatusPaid},
	}

	o := core.ComputeOverview(dues, today)

	if o.Overdue.Count != 2 || !o.Overdue.Amount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("overdue = %d/%s, want 2/150", o.Overdue.Count, o.Overdue.Amount)
	}
	if o.DueToday.Count != 1 || !o.DueToday.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("due today = %d/%s, want 1/200", o.DueToday.Count, o.DueToday.Amount)
	}
	if o.DueWithin7Days.Count != 2 || !o.DueWithin7Days.Amount.Equal(decimal.NewFromInt(310)) {
		t.Errorf("due within 7 days = %d/%s, want 2/310", o.DueWithin7Days.Count, o.DueWithin7Days.Amount)
	}
	if o.PendingPayables.Count != 4 {
		t.Errorf("pending payables count = %d, want 4", o.PendingPayables.Count)
	}
	if o.PendingReceivables.Count != 2 {
		t.Errorf("pending receivables count = %d, want 2", o.PendingReceivables.Count)
	}
}

// A payable of 1000 due in 3 days against a receivable of 500 due in 40 days
// must project -1000 for the next 30 days: the far receivable is out of window.
func TestComputeOverview_ProjectedCashFlow(t *testing.T) {
	today := date(2026, time.March, 15)
	dues := []core.FinancialDue{
		pendingDue("pay-soon", core.DueTypePayable, 1000, today.AddDate(0, 0, 3)),
		pendingDue("recv-far", core.DueTypeReceivable, 500, today.AddDate(0, 0, 40)),
	}

	o := core.ComputeOverview(dues, today)
	if !o.ProjectedCashFlow30d.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("cash flow = %s, want -1000", o.ProjectedCashFlow30d)
	}

	// Pull the receivable into the window and the projection improves.
	dues[1].DueDate = today.AddDate(0, 0, 20)
	o = core.ComputeOverview(dues, today)
	if !o.ProjectedCashFlow30d.Equal(decimal.NewFromInt(-500)) {
		t.Errorf("cash flow = %s, want -500", o.ProjectedCashFlow30d)
	}
}

// Overdue pending dues still count toward the 30-day projection: they are
// expected to move, not to vanish.
func TestComputeOverview_OverdueInWindow(t *testing.T) {
	today := date(2026, time.March, 15)
	dues := []core.FinancialDue{
		pendingDue("late-recv", core.DueTypeReceivable, 300, date(2026, time.February, 1)),
	}

	o := core.ComputeOverview(dues, today)
	if !o.ProjectedCashFlow30d.Equal(decimal.NewFromInt(300)) {
		t.Errorf("cash flow = %s, want 300", o.ProjectedCashFlow30d)
	}
}

func TestComputeOverview_Rates(t *testing.T) {
	today := date(2026, time.March, 15)
	dues := []core.FinancialDue{
		{ID: "r1", Type: core.DueTypeReceivable, Amount: decimal.NewFromInt(250),
			DueDate: date(2026, time.March, 1), Status: core.StatusReceived},
		pendingDue("r2", core.DueTypeReceivable, 250, date(2026, time.March, 1)), // overdue
		pendingDue("r3", core.DueTypeReceivable, 500, date(2026, time.April, 1)),
		{ID: "p1", Type: core.DueTypePayable, Amount: decimal.NewFromInt(400),
			DueDate: date(2026, time.March, 1), Status: core.StatusPaid},
		pendingDue("p2", core.DueTypePayable, 600, date(2026, time.April, 1)),
	}

	o := core.ComputeOverview(dues, today)

	// 250 of 1000 receivable collected.
	if !o.CollectionRate.Equal(decimal.NewFromInt(25)) {
		t.Errorf("collection rate = %s, want 25", o.CollectionRate)
	}
	// 400 of 1000 payable paid.
	if !o.PaymentRate.Equal(decimal.NewFromInt(40)) {
		t.Errorf("payment rate = %s, want 40", o.PaymentRate)
	}
	// 250 of 1000 receivable is overdue.
	if !o.DefaultRate.Equal(decimal.NewFromInt(25)) {
		t.Errorf("default rate = %s, want 25", o.DefaultRate)
	}

	for name, r := range map[string]decimal.Decimal{
		"collection": o.CollectionRate, "payment": o.PaymentRate, "default": o.DefaultRate,
	} {
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(100)) {
			t.Errorf("%s rate %s outside [0,100]", name, r)
		}
	}

	// Settling the overdue receivable raises the collection rate.
	dues[1].Status = core.StatusReceived
	after := core.ComputeOverview(dues, today)
	if !after.CollectionRate.GreaterThan(o.CollectionRate) {
		t.Errorf("collection rate did not increase after settlement: %s -> %s",
			o.CollectionRate, after.CollectionRate)
	}
	if !after.CollectionRate.Equal(decimal.NewFromInt(50)) {
		t.Errorf("collection rate = %s, want 50", after.CollectionRate)
	}
}
