package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// translateStatus maps a source record's status vocabulary into the unified
// enum. Unknown values default to PENDING so a stray label never hides a due.
func translateStatus(raw string, dueType DueType) DueStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "pago", "paga":
		return StatusPaid
	case "received", "recebido", "recebida":
		return StatusReceived
	case "settled", "quitado":
		if dueType == DueTypeReceivable {
			return StatusReceived
		}
		return StatusPaid
	default:
		return StatusPending
	}
}

// parseDueDate parses a stored YYYY-MM-DD date string.
func parseDueDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return t, nil
}

// NormalizeDues maps the four heterogeneous source collections into one
// ordered due list. Malformed records (missing amount or date) are skipped
// with a logged warning; they never fail the batch. Recurring suppliers and
// clients each contribute exactly one synthesized instance for their next
// occurrence, always with a PENDING stored status — OVERDUE is left to the
// read-time projection.
func NormalizeDues(
	payables []AccountPayable,
	receivables []AccountReceivable,
	suppliers []Supplier,
	clients []Client,
	today time.Time,
) []FinancialDue {
	dues := make([]FinancialDue, 0, len(payables)+len(receivables)+len(suppliers)+len(clients))

	// Occurrence months already materialized from recurring sources; keyed by
	// "<sourceID>|<YYYY-MM>". Synthesis skips these to avoid duplicates.
	materialized := make(map[string]bool)
	for _, ap := range payables {
		if ap.RecurringSourceID != "" {
			if t, err := parseDueDate(ap.DueDate); err == nil {
				materialized[ap.RecurringSourceID+"|"+t.Format("2006-01")] = true
			}
		}
	}
	for _, ar := range receivables {
		if ar.RecurringSourceID != "" {
			if t, err := parseDueDate(ar.DueDate); err == nil {
				materialized[ar.RecurringSourceID+"|"+t.Format("2006-01")] = true
			}
		}
	}

	for _, ap := range payables {
		due, err := normalizePayable(ap, today)
		if err != nil {
			log.Warn().Str("collection", CollectionAccountsPayable).Str("id", ap.ID).
				Err(err).Msg("skipping malformed payable")
			continue
		}
		dues = append(dues, due)
	}

	for _, ar := range receivables {
		due, err := normalizeReceivable(ar, today)
		if err != nil {
			log.Warn().Str("collection", CollectionAccountsReceivable).Str("id", ar.ID).
				Err(err).Msg("skipping malformed receivable")
			continue
		}
		dues = append(dues, due)
	}

	for _, sup := range suppliers {
		if !sup.Active || !sup.RecurringPayment {
			continue
		}
		if !sup.MonthlyValue.IsPositive() || sup.PaymentDay < 1 || sup.PaymentDay > 31 {
			log.Warn().Str("collection", CollectionSuppliers).Str("id", sup.ID).
				Msg("skipping recurring supplier with no usable monthly value or payment day")
			continue
		}
		dueDate := NextOccurrence(sup.PaymentDay, today)
		if materialized[sup.ID+"|"+dueDate.Format("2006-01")] {
			continue
		}
		dues = append(dues, FinancialDue{
			ID:           fmt.Sprintf("sup-%s-%s", sup.ID, dueDate.Format("2006-01")),
			Type:         DueTypePayable,
			Source:       SourceSupplierRecurring,
			SourceID:     sup.ID,
			Description:  fmt.Sprintf("Pagamento recorrente — %s", sup.Name),
			SupplierName: sup.Name,
			Amount:       sup.MonthlyValue,
			DueDate:      dueDate,
			Status:       StatusPending,
			Priority:     DerivePriority(StatusPending, dueDate, today),
		})
	}

	for _, cl := range clients {
		if !cl.Active || !cl.RecurringCharge {
			continue
		}
		if !cl.MonthlyValue.IsPositive() || cl.BillingDay < 1 || cl.BillingDay > 31 {
			log.Warn().Str("collection", CollectionClients).Str("id", cl.ID).
				Msg("skipping recurring client with no usable monthly value or billing day")
			continue
		}
		dueDate := NextOccurrence(cl.BillingDay, today)
		if materialized[cl.ID+"|"+dueDate.Format("2006-01")] {
			continue
		}
		dues = append(dues, FinancialDue{
			ID:          fmt.Sprintf("cli-%s-%s", cl.ID, dueDate.Format("2006-01")),
			Type:        DueTypeReceivable,
			Source:      SourceClientRecurring,
			SourceID:    cl.ID,
			Description: fmt.Sprintf("Cobrança recorrente — %s", cl.Name),
			ClientName:  cl.Name,
			Amount:      cl.MonthlyValue,
			DueDate:     dueDate,
			Status:      StatusPending,
			Priority:    DerivePriority(StatusPending, dueDate, today),
		})
	}

	sort.SliceStable(dues, func(i, j int) bool {
		if !dues[i].DueDate.Equal(dues[j].DueDate) {
			return dues[i].DueDate.Before(dues[j].DueDate)
		}
		return dues[i].ID < dues[j].ID
	})
	return dues
}

func normalizePayable(ap AccountPayable, today time.Time) (FinancialDue, error) {
	if !ap.Amount.IsPositive() {
		return FinancialDue{}, fmt.Errorf("missing or non-positive amount")
	}
	dueDate, err := parseDueDate(ap.DueDate)
	if err != nil {
		return FinancialDue{}, err
	}

	status := translateStatus(ap.Status, DueTypePayable)
	due := FinancialDue{
		ID:                "ap-" + ap.ID,
		Type:              DueTypePayable,
		Source:            SourceAccountPayable,
		SourceID:          ap.ID,
		Description:       ap.Description,
		SupplierName:      ap.SupplierName,
		Amount:            ap.Amount,
		DueDate:           dueDate,
		Status:            status,
		Priority:          DerivePriority(status, dueDate, today),
		PaymentAmount:     ap.PaymentAmount,
		PaymentMethod:     ap.PaymentMethod,
		Observations:      ap.Observations,
		InstallmentNumber: ap.InstallmentNumber,
		TotalInstallments: ap.TotalInstallments,
		Attachments:       ap.Attachments,
	}
	if t, err := parseDueDate(ap.PaymentDate); err == nil {
		due.PaymentDate = &t
	}
	return due, nil
}

func normalizeReceivable(ar AccountReceivable, today time.Time) (FinancialDue, error) {
	if !ar.Amount.IsPositive() {
		return FinancialDue{}, fmt.Errorf("missing or non-positive amount")
	}
	dueDate, err := parseDueDate(ar.DueDate)
	if err != nil {
		return FinancialDue{}, err
	}

	status := translateStatus(ar.Status, DueTypeReceivable)
	due := FinancialDue{
		ID:                "ar-" + ar.ID,
		Type:              DueTypeReceivable,
		Source:            SourceAccountReceivable,
		SourceID:          ar.ID,
		Description:       ar.Description,
		ClientName:        ar.ClientName,
		Amount:            ar.Amount,
		DueDate:           dueDate,
		Status:            status,
		Priority:          DerivePriority(status, dueDate, today),
		PaymentAmount:     ar.PaymentAmount,
		PaymentMethod:     ar.PaymentMethod,
		Observations:      ar.Observations,
		InstallmentNumber: ar.InstallmentNumber,
		TotalInstallments: ar.TotalInstallments,
		Attachments:       ar.Attachments,
	}
	if t, err := parseDueDate(ar.PaymentDate); err == nil {
		due.PaymentDate = &t
	}
	return due, nil
}
