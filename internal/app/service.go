package app

import (
	"context"

	"finance-backoffice/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// HTTP types and no display logic of any kind.
type ApplicationService interface {
	// ListDues returns the normalized due list with read-time display
	// status and urgency projections applied.
	ListDues(ctx context.Context) (*DueListResult, error)

	// GetOverview returns the aggregated financial metrics over the
	// current due list.
	GetOverview(ctx context.Context) (*OverviewResult, error)

	// SettleDue marks a due as paid or received depending on its type.
	// Settling a synthesized recurring due materializes a one-off record.
	SettleDue(ctx context.Context, id string, req SettleDueRequest) (*DueResult, error)

	// ReopenDue returns a settled due to pending. Payment metadata and
	// observations are kept for the audit trail.
	ReopenDue(ctx context.Context, id string) (*DueResult, error)

	// BulkSettle settles the given dues sequentially, continuing past
	// individual failures and reporting per-id errors.
	BulkSettle(ctx context.Context, ids []string, req SettleDueRequest) (*core.BatchResult, error)

	// BulkReopen reopens the given dues with the same failure semantics
	// as BulkSettle.
	BulkReopen(ctx context.Context, ids []string) (*core.BatchResult, error)

	// UpdateDue applies a partial edit to a due and returns the re-fetched
	// full list, so the caller always renders persisted state.
	UpdateDue(ctx context.Context, id string, req UpdateDueRequest) (*DueListResult, error)

	// AddAttachment stores an uploaded proof-of-payment file and appends
	// its metadata to the due.
	AddAttachment(ctx context.Context, id string, req AttachmentRequest) (*DueResult, error)

	// ExportDuesCSV renders the current due list as a downloadable CSV.
	ExportDuesCSV(ctx context.Context) (*ExportResult, error)

	// ExportMonthlySummaryCSV renders per-month totals as CSV.
	ExportMonthlySummaryCSV(ctx context.Context) (*ExportResult, error)

	// GetPayrollConfig returns the stored payroll configuration, or the
	// built-in defaults when none has been saved.
	GetPayrollConfig(ctx context.Context) (*PayrollConfigResult, error)

	// SavePayrollConfig persists the configuration. Existing payroll
	// records are not touched.
	SavePayrollConfig(ctx context.Context, req PayrollConfigRequest) (*PayrollConfigResult, error)

	// ListPayrollRecords returns payroll records, optionally filtered by
	// period ("YYYY-MM").
	ListPayrollRecords(ctx context.Context, period string) (*PayrollListResult, error)

	// GeneratePayroll creates records for every active collaborator that
	// has none for the period, computed from the current configuration.
	GeneratePayroll(ctx context.Context, period string) (*PayrollListResult, error)

	// UpdatePayrollRecord applies a manual edit. Salary edits mark the
	// record as overridden so recalculation intent stays visible.
	UpdatePayrollRecord(ctx context.Context, id string, req PayrollRecordRequest) (*PayrollRecordResult, error)

	// RecalculatePayroll recomputes every record of the period from the
	// current configuration, discarding manual overrides but preserving
	// status and bank info. Callers confirm once for the whole batch.
	RecalculatePayroll(ctx context.Context, period string) (*PayrollListResult, error)

	// ExportPayrollCSV renders the period's records as CSV.
	ExportPayrollCSV(ctx context.Context, period string) (*ExportResult, error)

	// ExportPayrollXLSX renders the period's records as an XLSX workbook.
	ExportPayrollXLSX(ctx context.Context, period string) (*ExportResult, error)

	// ListCollaborators returns all collaborators.
	ListCollaborators(ctx context.Context) ([]core.Collaborator, error)

	// SaveCollaborator creates or updates a collaborator.
	SaveCollaborator(ctx context.Context, c core.Collaborator) (*core.Collaborator, error)

	// DeleteCollaborator removes a collaborator. Existing payroll records
	// referencing it are kept.
	DeleteCollaborator(ctx context.Context, id string) error

	// ListClients returns all clients.
	ListClients(ctx context.Context) ([]core.Client, error)

	// SaveClient creates or updates a client.
	SaveClient(ctx context.Context, c core.Client) (*core.Client, error)

	// DeleteClient removes a client.
	DeleteClient(ctx context.Context, id string) error

	// ListSuppliers returns all suppliers.
	ListSuppliers(ctx context.Context) ([]core.Supplier, error)

	// SaveSupplier creates or updates a supplier.
	SaveSupplier(ctx context.Context, s core.Supplier) (*core.Supplier, error)

	// DeleteSupplier removes a supplier.
	DeleteSupplier(ctx context.Context, id string) error

	// ListAssistants returns the selectable chat profiles.
	ListAssistants(ctx context.Context) ([]core.Assistant, error)

	// ChatMessage routes a user message through the selected assistant.
	// For the finance assistant it may return a proposed due transition
	// instead of (or alongside) a plain answer; proposals are never
	// executed without ExecuteDueAction.
	ChatMessage(ctx context.Context, req ChatRequest) (*ChatResult, error)

	// ExecuteDueAction applies a previously proposed due transition after
	// explicit user confirmation.
	ExecuteDueAction(ctx context.Context, proposal *core.DueActionProposal) (*DueResult, error)

	// GetChatHistory returns the persisted conversation for an assistant.
	GetChatHistory(ctx context.Context, userID, assistantID string) ([]core.ChatMessage, error)

	// ClearChatHistory deletes the persisted conversation for an assistant.
	ClearChatHistory(ctx context.Context, userID, assistantID string) error

	// SubmitForm relays a form submission to the workflow webhook.
	SubmitForm(ctx context.Context, form string, data map[string]any) error

	// AuthenticateUser verifies a username/password pair.
	AuthenticateUser(ctx context.Context, username, password string) (*core.User, error)

	// GetUser returns a user by id.
	GetUser(ctx context.Context, id string) (*core.User, error)

	// EnsureAdminUser creates an admin account when the user collection is
	// empty. Used at startup bootstrap.
	EnsureAdminUser(ctx context.Context, username, password string) error
}
