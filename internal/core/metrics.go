package core

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Bucket is a count/amount pair for one dashboard metric.
type Bucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (b *Bucket) add(amount decimal.Decimal) {
	b.Count++
	b.Amount = b.Amount.Add(amount)
}

// Overview holds the dashboard statistics derived from the unified due list.
// Rates are percentages in [0, 100]; ProjectedCashFlow30d is signed
// (positive = net inflow over the next 30 days).
type Overview struct {
	Overdue            Bucket `json:"overdue"`
	DueToday           Bucket `json:"due_today"`
	DueWithin7Days     Bucket `json:"due_within_7_days"`
	PendingReceivables Bucket `json:"pending_receivables"`
	PendingPayables    Bucket `json:"pending_payables"`

	CollectionRate decimal.Decimal `json:"collection_rate"`
	PaymentRate    decimal.Decimal `json:"payment_rate"`
	DefaultRate    decimal.Decimal `json:"default_rate"`

	ProjectedCashFlow30d decimal.Decimal `json:"projected_cash_flow_30d"`
}

// rate returns part/whole × 100, or 0 when the denominator is zero.
// Never NaN, never a division-by-zero artifact.
func rate(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(oneHundred).Round(2)
}

// ComputeOverview derives all dashboard metrics from the due list in one pass.
// It is a pure function: no side effects, no store access, and every monetary
// aggregate uses the entity's stored amount rather than any reformatted value.
func ComputeOverview(dues []FinancialDue, today time.Time) Overview {
	var o Overview
	o.Overdue.Amount = decimal.Zero
	o.DueToday.Amount = decimal.Zero
	o.DueWithin7Days.Amount = decimal.Zero
	o.PendingReceivables.Amount = decimal.Zero
	o.PendingPayables.Amount = decimal.Zero

	var (
		totalReceivable    = decimal.Zero
		totalPayable       = decimal.Zero
		receivedAmount     = decimal.Zero
		paidAmount         = decimal.Zero
		overdueReceivables = decimal.Zero
		inflow30           = decimal.Zero
		outflow30          = decimal.Zero
	)

	for i := range dues {
		d := &dues[i]
		days := DaysUntil(d.DueDate, today)
		display := DisplayStatus(d.Status, d.DueDate, today)

		switch d.Type {
		case DueTypeReceivable:
			totalReceivable = totalReceivable.Add(d.Amount)
			if d.Status == StatusReceived {
				receivedAmount = receivedAmount.Add(d.Amount)
			}
			if display == StatusOverdue {
				overdueReceivables = overdueReceivables.Add(d.Amount)
			}
		case DueTypePayable:
			totalPayable = totalPayable.Add(d.Amount)
			if d.Status == StatusPaid {
				paidAmount = paidAmount.Add(d.Amount)
			}
		}

		if d.Status != StatusPending {
			continue
		}

		switch d.Type {
		case DueTypeReceivable:
			o.PendingReceivables.add(d.Amount)
			if days <= 30 {
				inflow30 = inflow30.Add(d.Amount)
			}
		case DueTypePayable:
			o.PendingPayables.add(d.Amount)
			if days <= 30 {
				outflow30 = outflow30.Add(d.Amount)
			}
		}

		switch {
		case days < 0:
			o.Overdue.add(d.Amount)
		case days == 0:
			o.DueToday.add(d.Amount)
		case days <= 7:
			o.DueWithin7Days.add(d.Amount)
		}
	}

	o.CollectionRate = rate(receivedAmount, totalReceivable)
	o.PaymentRate = rate(paidAmount, totalPayable)
	o.DefaultRate = rate(overdueReceivables, totalReceivable)
	o.ProjectedCashFlow30d = inflow30.Sub(outflow30)
	return o
}
