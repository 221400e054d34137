package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"
)

// Export kinds, used to build the download filename.
const (
	ExportKindDues    = "vencimentos"
	ExportKindSummary = "resumo_mensal"
	ExportKindPayroll = "folha_pagamento"
)

// ExportFilename builds the conventional download name: <type>_<date>.csv.
func ExportFilename(kind string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind, now.Format("2006-01-02"))
}

// statusLabel renders a due's read-time status for export, localized.
func statusLabel(d *FinancialDue, today time.Time) string {
	switch DisplayStatus(d.Status, d.DueDate, today) {
	case StatusOverdue:
		return "Vencido"
	case StatusPaid:
		return "Pago"
	case StatusReceived:
		return "Recebido"
	default:
		return "Pendente"
	}
}

func typeLabel(t DueType) string {
	if t == DueTypeReceivable {
		return "A Receber"
	}
	return "A Pagar"
}

func partyName(d *FinancialDue) string {
	if d.ClientName != "" {
		return d.ClientName
	}
	return d.SupplierName
}

// DuesCSV renders the due-date ledger export. Amounts use the Brazilian
// locale (comma decimal separator), dates are dd/mm/yyyy.
func DuesCSV(dues []FinancialDue, today time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Descrição", "Tipo", "Cliente/Fornecedor", "Valor", "Vencimento", "Status", "Prioridade", "Parcela"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for i := range dues {
		d := &dues[i]
		installment := ""
		if d.TotalInstallments > 0 {
			installment = fmt.Sprintf("%d/%d", d.InstallmentNumber, d.TotalInstallments)
		}
		row := []string{
			d.Description,
			typeLabel(d.Type),
			partyName(d),
			FormatBRL(d.Amount),
			d.DueDate.Format("02/01/2006"),
			statusLabel(d, today),
			string(d.Priority),
			installment,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlySummaryCSV renders per-month totals over the full due list:
// receivable/received and payable/paid amounts plus the projected balance.
func MonthlySummaryCSV(dues []FinancialDue) ([]byte, error) {
	type monthTotals struct {
		receivable, received, payable, paid Bucket
	}
	byMonth := make(map[string]*monthTotals)

	for i := range dues {
		d := &dues[i]
		key := d.DueDate.Format("2006-01")
		mt := byMonth[key]
		if mt == nil {
			mt = &monthTotals{}
			byMonth[key] = mt
		}
		switch d.Type {
		case DueTypeReceivable:
			mt.receivable.add(d.Amount)
			if d.Status == StatusReceived {
				mt.received.add(d.Amount)
			}
		case DueTypePayable:
			mt.payable.add(d.Amount)
			if d.Status == StatusPaid {
				mt.paid.add(d.Amount)
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Mês", "A Receber", "Recebido", "A Pagar", "Pago", "Saldo Previsto"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range months {
		mt := byMonth[m]
		balance := mt.receivable.Amount.Sub(mt.payable.Amount)
		row := []string{
			m,
			FormatBRL(mt.receivable.Amount),
			FormatBRL(mt.received.Amount),
			FormatBRL(mt.payable.Amount),
			FormatBRL(mt.paid.Amount),
			FormatBRL(balance),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PayrollCSV renders the payroll export for one period.
func PayrollCSV(records []PayrollRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Colaborador", "Nível", "Período", "Salário Base", "Adicionais", "Descontos", "Salário Líquido", "Status"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.CollaboratorName,
			r.Level,
			r.Period,
			FormatBRL(r.BaseSalary),
			FormatBRL(r.Allowances),
			FormatBRL(r.Deductions),
			FormatBRL(r.NetSalary),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
