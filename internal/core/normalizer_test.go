package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finance-backoffice/internal/core"
)

func d100() decimal.Decimal { return decimal.NewFromInt(100) }

func TestNormalizeDues_StatusTranslation(t *testing.T) {
	today := date(2026, time.March, 15)
	payables := []core.AccountPayable{
		{ID: "p1", Description: "Aluguel", Amount: d100(), DueDate: "2026-03-20", Status: "pago"},
		{ID: "p2", Description: "Energia", Amount: d100(), DueDate: "2026-03-21", Status: "quitado"},
		{ID: "p3", Description: "Internet", Amount: d100(), DueDate: "2026-03-22", Status: "algo estranho"},
	}
	receivables := []core.AccountReceivable{
		{ID: "r1", Description: "Mensalidade", Amount: d100(), DueDate: "2026-03-23", Status: "recebido"},
		{ID: "r2", Description: "Consultoria", Amount: d100(), DueDate: "2026-03-24", Status: "settled"},
	}

	dues := core.NormalizeDues(payables, receivables, nil, nil, today)
	if len(dues) != 5 {
		t.Fatalf("expected 5 dues, got %d", len(dues))
	}

	byID := make(map[string]core.FinancialDue)
	for _, due := range dues {
		byID[due.ID] = due
	}

	want := map[string]core.DueStatus{
		"ap-p1": core.StatusPaid,
		"ap-p2": core.StatusPaid,
		"ap-p3": core.StatusPending,
		"ar-r1": core.StatusReceived,
		"ar-r2": core.StatusReceived,
	}
	for id, status := range want {
		if byID[id].Status != status {
			t.Errorf("%s: status = %s, want %s", id, byID[id].Status, status)
		}
	}
}

func TestNormalizeDues_SkipsMalformedRecords(t *testing.T) {
	today := date(2026, time.March, 15)
	payables := []core.AccountPayable{
		{ID: "ok", Description: "Válido", Amount: d100(), DueDate: "2026-03-20", Status: "pending"},
		{ID: "no-amount", Description: "Sem valor", DueDate: "2026-03-20", Status: "pending"},
		{ID: "neg-amount", Description: "Negativo", Amount: decimal.NewFromInt(-5), DueDate: "2026-03-20"},
		{ID: "bad-date", Description: "Data ruim", Amount: d100(), DueDate: "20/03/2026"},
		{ID: "no-date", Description: "Sem data", Amount: d100()},
	}

	dues := core.NormalizeDues(payables, nil, nil, nil, today)
	if len(dues) != 1 {
		t.Fatalf("expected only the valid record, got %d dues", len(dues))
	}
	if dues[0].ID != "ap-ok" {
		t.Errorf("surviving due = %s, want ap-ok", dues[0].ID)
	}
}

func TestNormalizeDues_RecurringSynthesis(t *testing.T) {
	today := date(2026, time.March, 15)
	suppliers := []core.Supplier{
		{ID: "s1", Name: "Hospedagem", RecurringPayment: true, MonthlyValue: d100(), PaymentDay: 20, Active: true},
		{ID: "s2", Name: "Passado", RecurringPayment: true, MonthlyValue: d100(), PaymentDay: 10, Active: true},
		{ID: "s3", Name: "Inativo", RecurringPayment: true, MonthlyValue: d100(), PaymentDay: 20, Active: false},
		{ID: "s4", Name: "Sem recorrência", RecurringPayment: false, MonthlyValue: d100(), PaymentDay: 20, Active: true},
		{ID: "s5", Name: "Sem valor", RecurringPayment: true, PaymentDay: 20, Active: true},
	}
	clients := []core.Client{
		{ID: "c1", Name: "Studio", RecurringCharge: true, MonthlyValue: d100(), BillingDay: 31, Active: true},
	}

	dues := core.NormalizeDues(nil, nil, suppliers, clients, today)
	if len(dues) != 3 {
		t.Fatalf("expected 3 synthesized dues, got %d", len(dues))
	}

	byID := make(map[string]core.FinancialDue)
	for _, due := range dues {
		byID[due.ID] = due
	}

	// Day 20 has not passed: stays in March.
	s1, ok := byID["sup-s1-2026-03"]
	if !ok {
		t.Fatalf("missing synthesized due for s1: have %v", dues)
	}
	if !s1.DueDate.Equal(date(2026, time.March, 20)) {
		t.Errorf("s1 due date = %s, want 2026-03-20", s1.DueDate.Format("2006-01-02"))
	}
	if s1.Status != core.StatusPending || s1.Type != core.DueTypePayable {
		t.Errorf("s1 = %s/%s, want PENDING payable", s1.Status, s1.Type)
	}

	// Day 10 already passed: rolls to April.
	s2, ok := byID["sup-s2-2026-04"]
	if !ok {
		t.Fatalf("missing rolled-over due for s2")
	}
	if !s2.DueDate.Equal(date(2026, time.April, 10)) {
		t.Errorf("s2 due date = %s, want 2026-04-10", s2.DueDate.Format("2006-01-02"))
	}

	// Billing day 31 clamps to March 31 (valid) — but today is the 15th so it stays.
	c1, ok := byID["cli-c1-2026-03"]
	if !ok {
		t.Fatalf("missing synthesized due for c1")
	}
	if !c1.DueDate.Equal(date(2026, time.March, 31)) {
		t.Errorf("c1 due date = %s, want 2026-03-31", c1.DueDate.Format("2006-01-02"))
	}
	if c1.Type != core.DueTypeReceivable {
		t.Errorf("c1 type = %s, want RECEIVABLE", c1.Type)
	}
}

func TestNormalizeDues_MaterializedOccurrenceSuppressesSynthesis(t *testing.T) {
	today := date(2026, time.March, 15)
	suppliers := []core.Supplier{
		{ID: "s1", Name: "Hospedagem", RecurringPayment: true, MonthlyValue: d100(), PaymentDay: 20, Active: true},
	}
	// The March occurrence was settled and materialized as a one-off payable.
	payables := []core.AccountPayable{
		{
			ID: "m1", Description: "Pagamento recorrente — Hospedagem", Amount: d100(),
			DueDate: "2026-03-20", Status: "paid", RecurringSourceID: "s1",
		},
	}

	dues := core.NormalizeDues(payables, nil, suppliers, nil, today)
	if len(dues) != 1 {
		t.Fatalf("expected only the materialized record, got %d dues", len(dues))
	}
	if dues[0].ID != "ap-m1" || dues[0].Status != core.StatusPaid {
		t.Errorf("got %s/%s, want ap-m1 PAID", dues[0].ID, dues[0].Status)
	}
}

func TestNormalizeDues_Ordering(t *testing.T) {
	today := date(2026, time.March, 15)
	payables := []core.AccountPayable{
		{ID: "late", Description: "Depois", Amount: d100(), DueDate: "2026-04-01"},
		{ID: "early", Description: "Antes", Amount: d100(), DueDate: "2026-03-01"},
	}
	receivables := []core.AccountReceivable{
		{ID: "mid", Description: "Meio", Amount: d100(), DueDate: "2026-03-20"},
		{ID: "same-day", Description: "Mesmo dia", Amount: d100(), DueDate: "2026-04-01"},
	}

	dues := core.NormalizeDues(payables, receivables, nil, nil, today)
	gotOrder := make([]string, len(dues))
	for i, due := range dues {
		gotOrder[i] = due.ID
	}

	wantOrder := []string{"ap-early", "ar-mid", "ap-late", "ar-same-day"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}
}
