package app

import "finance-backoffice/internal/core"

// DueView is a due with its read-time projections attached. DisplayStatus
// may be OVERDUE even though OVERDUE is never stored.
type DueView struct {
	core.FinancialDue
	DisplayStatus core.DueStatus `json:"display_status"`
	DaysUntil     int            `json:"days_until"`
}

// DueListResult is returned by ListDues and UpdateDue.
type DueListResult struct {
	Dues []DueView
}

// DueResult is returned by single-due transitions.
type DueResult struct {
	Due DueView
}

// OverviewResult is returned by GetOverview.
type OverviewResult struct {
	Overview core.Overview
}

// PayrollConfigResult is returned by the payroll config operations.
type PayrollConfigResult struct {
	Config core.PayrollConfig
}

// PayrollListResult is returned by payroll list/generate/recalculate.
type PayrollListResult struct {
	Period  string
	Records []core.PayrollRecord
}

// PayrollRecordResult is returned by UpdatePayrollRecord.
type PayrollRecordResult struct {
	Record core.PayrollRecord
}

// ExportResult is a rendered downloadable file.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ChatResult is returned by ChatMessage. Exactly one of Answer, Question
// or Proposal is the primary payload; Proposal carries the structured due
// transition awaiting confirmation.
type ChatResult struct {
	AssistantName string
	Answer        string
	Question      string
	Proposal      *core.DueActionProposal
	Confidence    float64
	Reasoning     string
}
