package app

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettleDueRequest carries the optional overrides for a settlement. Zero
// values fall back to "now" and the due's own amount.
type SettleDueRequest struct {
	PaymentDate   *time.Time
	PaymentAmount *decimal.Decimal
	PaymentMethod string
	Observations  string
}

// UpdateDueRequest is a partial edit; nil fields stay untouched. Priority is
// not here on purpose: it derives from due date and status.
type UpdateDueRequest struct {
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	DueDate       *string          `json:"due_date"` // YYYY-MM-DD
	Status        *string          `json:"status"`
	PaymentDate   *string          `json:"payment_date"` // YYYY-MM-DD
	PaymentAmount *decimal.Decimal `json:"payment_amount"`
	PaymentMethod *string          `json:"payment_method"`
	Observations  *string          `json:"observations"`
}

// AttachmentRequest is an uploaded proof-of-payment file.
type AttachmentRequest struct {
	FileName   string
	MimeType   string
	Data       []byte
	UploadedBy string
}

// PayrollConfigRequest replaces the stored payroll configuration.
type PayrollConfigRequest struct {
	SalaryByLevel        map[string]decimal.Decimal
	AllowancesPercentage decimal.Decimal
	DeductionsPercentage decimal.Decimal
}

// PayrollRecordRequest is a partial edit of one payroll record.
type PayrollRecordRequest struct {
	BaseSalary *decimal.Decimal `json:"base_salary"`
	Allowances *decimal.Decimal `json:"allowances"`
	Deductions *decimal.Decimal `json:"deductions"`
	NetSalary  *decimal.Decimal `json:"net_salary"`
	Status     *string          `json:"status"`
	BankInfo   *BankInfoInput   `json:"bank_info"`
}

// BankInfoInput replaces a record's bank details.
type BankInfoInput struct {
	BankName      string `json:"bank_name"`
	Agency        string `json:"agency"`
	AccountNumber string `json:"account_number"`
	PixKey        string `json:"pix_key"`
}

// ChatRequest is one user message addressed to a selected assistant.
type ChatRequest struct {
	UserID      string
	AssistantID string
	Text        string
}
