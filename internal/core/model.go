package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection names in the document store.
const (
	CollectionClients            = "clients"
	CollectionSuppliers          = "suppliers"
	CollectionAccountsPayable    = "accounts_payable"
	CollectionAccountsReceivable = "accounts_receivable"
	CollectionCollaborators      = "collaborators"
	CollectionPayrollRecords     = "payroll_records"
	CollectionPayrollConfig      = "payroll_config"
	CollectionUsers              = "users"
	CollectionChatMessages       = "chat_messages"
	CollectionAssistants         = "assistants"
)

type DueType string

const (
	DueTypeReceivable DueType = "RECEIVABLE"
	DueTypePayable    DueType = "PAYABLE"
)

type DueSource string

const (
	SourceAccountPayable    DueSource = "ACCOUNT_PAYABLE"
	SourceAccountReceivable DueSource = "ACCOUNT_RECEIVABLE"
	SourceSupplierRecurring DueSource = "SUPPLIER_RECURRING"
	SourceClientRecurring   DueSource = "CLIENT_RECURRING"
)

// DueStatus is the unified status vocabulary. Only PENDING, PAID and RECEIVED
// are ever stored; OVERDUE is a read-time projection computed by DisplayStatus
// and must never be written back to the store.
type DueStatus string

const (
	StatusPending  DueStatus = "PENDING"
	StatusOverdue  DueStatus = "OVERDUE"
	StatusPaid     DueStatus = "PAID"
	StatusReceived DueStatus = "RECEIVED"
)

type DuePriority string

const (
	PriorityLow    DuePriority = "LOW"
	PriorityMedium DuePriority = "MEDIUM"
	PriorityHigh   DuePriority = "HIGH"
	PriorityUrgent DuePriority = "URGENT"
)

// Attachment is proof-of-payment metadata attached to a due.
type Attachment struct {
	FileName   string    `json:"file_name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FinancialDue is the unified representation of any money movement with a
// calendar due date, regardless of its originating record type. One-off
// payables and receivables map 1:1; recurring supplier/client charges are
// synthesized per occurrence and exist only in memory until acted upon.
type FinancialDue struct {
	ID           string    `json:"id"`
	Type         DueType   `json:"type"`
	Source       DueSource `json:"source"`
	SourceID     string    `json:"source_id"`
	Description  string    `json:"description"`
	ClientName   string    `json:"client_name,omitempty"`
	SupplierName string    `json:"supplier_name,omitempty"`

	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`

	Status   DueStatus   `json:"status"`
	Priority DuePriority `json:"priority"`

	PaymentDate   *time.Time       `json:"payment_date,omitempty"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Observations  string           `json:"observations,omitempty"`

	InstallmentNumber int `json:"installment_number,omitempty"`
	TotalInstallments int `json:"total_installments,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Settled reports whether the due has reached its terminal status.
func (d *FinancialDue) Settled() bool {
	return d.Status == StatusPaid || d.Status == StatusReceived
}

// SettledStatus returns the terminal status appropriate for the due's type.
func (d *FinancialDue) SettledStatus() DueStatus {
	if d.Type == DueTypeReceivable {
		return StatusReceived
	}
	return StatusPaid
}

// ── Source record shapes (as stored in the document store) ───────────────────

// AccountPayable is a one-off payable document. Dates are stored as
// YYYY-MM-DD strings; the status field uses the source vocabulary
// ("pending"/"pendente", "paid"/"pago") and is translated by the normalizer.
type AccountPayable struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	SupplierName      string           `json:"supplier_name"`
	Amount            decimal.Decimal  `json:"amount"`
	DueDate           string           `json:"due_date"`
	Status            string           `json:"status"`
	PaymentDate       string           `json:"payment_date,omitempty"`
	PaymentAmount     *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentMethod     string           `json:"payment_method,omitempty"`
	Observations      string           `json:"observations,omitempty"`
	InstallmentNumber int              `json:"installment_number,omitempty"`
	TotalInstallments int              `json:"total_installments,omitempty"`
	Attachments       []Attachment     `json:"attachments,omitempty"`

	// RecurringSourceID links a payable materialized from a recurring
	// supplier back to that supplier, so the normalizer does not synthesize
	// a duplicate instance for the same occurrence month.
	RecurringSourceID string `json:"recurring_source_id,omitempty"`
}

// AccountReceivable is a one-off receivable document, symmetric to
// AccountPayable ("received"/"recebido" marks settlement).
type AccountReceivable struct {
	ID                string           `json:"id"`
	Description       string           `json:"description"`
	ClientName        string           `json:"client_name"`
	Amount            decimal.Decimal  `json:"amount"`
	DueDate           string           `json:"due_date"`
	Status            string           `json:"status"`
	PaymentDate       string           `json:"payment_date,omitempty"`
	PaymentAmount     *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentMethod     string           `json:"payment_method,omitempty"`
	Observations      string           `json:"observations,omitempty"`
	InstallmentNumber int              `json:"installment_number,omitempty"`
	TotalInstallments int              `json:"total_installments,omitempty"`
	Attachments       []Attachment     `json:"attachments,omitempty"`

	// RecurringSourceID links a receivable materialized from a recurring
	// client back to that client; see AccountPayable.RecurringSourceID.
	RecurringSourceID string `json:"recurring_source_id,omitempty"`
}

// Supplier is a supplier master record. When RecurringPayment is enabled and
// MonthlyValue is positive, the normalizer synthesizes one due for the next
// occurrence of PaymentDay.
type Supplier struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category,omitempty"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	RecurringPayment bool            `json:"recurring_payment"`
	MonthlyValue     decimal.Decimal `json:"monthly_value"`
	PaymentDay       int             `json:"payment_day"`
	Active           bool            `json:"active"`
}

// Client is a client master record with an optional recurring monthly charge
// on BillingDay.
type Client struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	RecurringCharge bool            `json:"recurring_charge"`
	MonthlyValue    decimal.Decimal `json:"monthly_value"`
	BillingDay      int             `json:"billing_day"`
	Active          bool            `json:"active"`
}

// ── Payroll ──────────────────────────────────────────────────────────────────

type PayrollStatus string

const (
	PayrollStatusPending    PayrollStatus = "PENDING"
	PayrollStatusCalculated PayrollStatus = "CALCULADO"
	PayrollStatusPaid       PayrollStatus = "PAGO"
)

// BankInfo holds a collaborator's payment destination.
type BankInfo struct {
	BankName      string `json:"bank_name,omitempty"`
	Agency        string `json:"agency,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	PixKey        string `json:"pix_key,omitempty"`
}

// PayrollRecord is one collaborator's salary for one YYYY-MM period.
// ManualOverride marks records whose salary fields were hand-edited; such
// records are never silently recomputed — only an explicit recalculation
// resets them.
type PayrollRecord struct {
	ID               string          `json:"id"`
	CollaboratorID   string          `json:"collaborator_id"`
	CollaboratorName string          `json:"collaborator_name"`
	Level            string          `json:"level"`
	Period           string          `json:"period"` // YYYY-MM
	BaseSalary       decimal.Decimal `json:"base_salary"`
	Allowances       decimal.Decimal `json:"allowances"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	ManualOverride   bool            `json:"manual_override"`
	Status           PayrollStatus   `json:"status"`
	BankInfo         *BankInfo       `json:"bank_info,omitempty"`
}

// PayrollConfig maps hierarchy levels to base salaries plus the global
// allowance/deduction percentages applied to every level. Saving the config
// never rewrites existing PayrollRecords; only RecalculateAll does.
type PayrollConfig struct {
	SalaryByLevel        map[string]decimal.Decimal `json:"salary_by_level"`
	AllowancesPercentage decimal.Decimal            `json:"allowances_percentage"`
	DeductionsPercentage decimal.Decimal            `json:"deductions_percentage"`
}

// Collaborator is an employee master record used to generate payroll periods.
type Collaborator struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Level    string    `json:"level"`
	Active   bool      `json:"active"`
	BankInfo *BankInfo `json:"bank_info,omitempty"`
}

// ── Users ────────────────────────────────────────────────────────────────────

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // "admin" or "user"
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ── Chat ─────────────────────────────────────────────────────────────────────

// Assistant is a selectable chat profile. Model, temperature and max tokens
// are passed straight through to the completion request.
type Assistant struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int64   `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`

	// FinanceActions marks the assistant that can propose due transitions.
	// Messages to it go through structured interpretation before plain chat.
	FinanceActions bool `json:"finance_actions"`
}

// ChatMessage is one persisted message in a conversation.
type ChatMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AssistantID string    `json:"assistant_id"`
	Role        string    `json:"role"` // "user" or "assistant"
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
