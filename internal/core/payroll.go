package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finance-backoffice/internal/store"
)

// DefaultBaseSalary is the fallback when a hierarchy level has no configured
// base salary (the 2025 Brazilian minimum wage).
var DefaultBaseSalary = decimal.NewFromFloat(1518.00)

// payrollConfigDocID is the fixed id of the singleton config document.
const payrollConfigDocID = "global"

// SalaryBreakdown is the result of one salary computation.
type SalaryBreakdown struct {
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	NetSalary  decimal.Decimal `json:"net_salary"`
}

// ComputeSalary applies the configured base salary for a hierarchy level plus
// the global allowance/deduction percentages. Amounts are rounded to cents;
// net = base + allowances − deductions always holds on the rounded values.
func ComputeSalary(level string, cfg PayrollConfig) SalaryBreakdown {
	base, ok := cfg.SalaryByLevel[level]
	if !ok || !base.IsPositive() {
		base = DefaultBaseSalary
	}
	base = base.Round(2)

	allowances := base.Mul(cfg.AllowancesPercentage).Div(oneHundred).Round(2)
	deductions := base.Mul(cfg.DeductionsPercentage).Div(oneHundred).Round(2)

	return SalaryBreakdown{
		BaseSalary: base,
		Allowances: allowances,
		Deductions: deductions,
		NetSalary:  base.Add(allowances).Sub(deductions),
	}
}

// PayrollPatch is a partial edit of a payroll record. Editing any salary
// field marks the record as manually overridden.
type PayrollPatch struct {
	BaseSalary *decimal.Decimal
	Allowances *decimal.Decimal
	Deductions *decimal.Decimal
	NetSalary  *decimal.Decimal
	Status     *PayrollStatus
	BankInfo   *BankInfo
}

// PayrollService manages the payroll config singleton and per-period records.
// Config persistence is decoupled from recalculation: SaveConfig never
// touches existing records, and only RecalculateAll discards manual overrides.
type PayrollService interface {
	// GetConfig loads the global config, returning an empty default when
	// none has been saved yet.
	GetConfig(ctx context.Context) (*PayrollConfig, error)

	// SaveConfig persists the global config without touching records.
	SaveConfig(ctx context.Context, cfg PayrollConfig) error

	// ListRecords returns the records for one YYYY-MM period, or all records
	// when period is empty.
	ListRecords(ctx context.Context, period string) ([]PayrollRecord, error)

	// GeneratePeriod creates a record for every active collaborator that has
	// none for the period yet; existing records are left alone.
	GeneratePeriod(ctx context.Context, period string) ([]PayrollRecord, error)

	// UpdateRecord applies a manual edit. Salary edits set ManualOverride
	// and are persisted as-is, even when they break the net invariant.
	UpdateRecord(ctx context.Context, id string, patch PayrollPatch) (*PayrollRecord, error)

	// RecalculateAll recomputes every record of the period from the current
	// config, discarding manual overrides but preserving each record's
	// Status and BankInfo. Callers must have confirmed the action with the
	// user first.
	RecalculateAll(ctx context.Context, period string) ([]PayrollRecord, error)
}

type payrollService struct {
	store store.DocumentStore
}

// NewPayrollService constructs a PayrollService backed by the document store.
func NewPayrollService(st store.DocumentStore) PayrollService {
	return &payrollService{store: st}
}

func (s *payrollService) GetConfig(ctx context.Context) (*PayrollConfig, error) {
	doc, err := s.store.Get(ctx, CollectionPayrollConfig, payrollConfigDocID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &PayrollConfig{SalaryByLevel: map[string]decimal.Decimal{}}, nil
		}
		return nil, fmt.Errorf("load payroll config: %w", err)
	}
	var cfg PayrollConfig
	if err := doc.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode payroll config: %w", err)
	}
	if cfg.SalaryByLevel == nil {
		cfg.SalaryByLevel = map[string]decimal.Decimal{}
	}
	return &cfg, nil
}

func (s *payrollService) SaveConfig(ctx context.Context, cfg PayrollConfig) error {
	if cfg.AllowancesPercentage.IsNegative() || cfg.DeductionsPercentage.IsNegative() {
		return fmt.Errorf("allowance and deduction percentages must not be negative")
	}
	for level, salary := range cfg.SalaryByLevel {
		if salary.IsNegative() {
			return fmt.Errorf("base salary for level %q must not be negative", level)
		}
	}

	err := s.store.Update(ctx, CollectionPayrollConfig, payrollConfigDocID, cfg)
	if errors.Is(err, store.ErrNotFound) {
		err = s.store.Create(ctx, CollectionPayrollConfig, payrollConfigDocID, cfg)
	}
	if err != nil {
		return fmt.Errorf("persist payroll config: %w", err)
	}
	return nil
}

func (s *payrollService) ListRecords(ctx context.Context, period string) ([]PayrollRecord, error) {
	docs, err := s.store.GetAll(ctx, CollectionPayrollRecords)
	if err != nil {
		return nil, fmt.Errorf("load payroll records: %w", err)
	}
	all, err := store.DecodeAll[PayrollRecord](docs)
	if err != nil {
		return nil, fmt.Errorf("decode payroll records: %w", err)
	}
	if period == "" {
		return all, nil
	}

	records := all[:0]
	for _, r := range all {
		if r.Period == period {
			records = append(records, r)
		}
	}
	return records, nil
}

func validatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return fmt.Errorf("invalid period %q, expected YYYY-MM", period)
	}
	return nil
}

func (s *payrollService) GeneratePeriod(ctx context.Context, period string) ([]PayrollRecord, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.ListRecords(ctx, period)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.CollaboratorID] = true
	}

	docs, err := s.store.GetAll(ctx, CollectionCollaborators)
	if err != nil {
		return nil, fmt.Errorf("load collaborators: %w", err)
	}
	collaborators, err := store.DecodeAll[Collaborator](docs)
	if err != nil {
		return nil, fmt.Errorf("decode collaborators: %w", err)
	}

	for _, c := range collaborators {
		if !c.Active || have[c.ID] {
			continue
		}
		breakdown := ComputeSalary(c.Level, *cfg)
		record := PayrollRecord{
			ID:               uuid.NewString(),
			CollaboratorID:   c.ID,
			CollaboratorName: c.Name,
			Level:            c.Level,
			Period:           period,
			BaseSalary:       breakdown.BaseSalary,
			Allowances:       breakdown.Allowances,
			Deductions:       breakdown.Deductions,
			NetSalary:        breakdown.NetSalary,
			Status:           PayrollStatusCalculated,
			BankInfo:         c.BankInfo,
		}
		if err := s.store.Create(ctx, CollectionPayrollRecords, record.ID, record); err != nil {
			return nil, fmt.Errorf("create payroll record for %s: %w", c.ID, err)
		}
	}

	return s.ListRecords(ctx, period)
}

func (s *payrollService) UpdateRecord(ctx context.Context, id string, patch PayrollPatch) (*PayrollRecord, error) {
	doc, err := s.store.Get(ctx, CollectionPayrollRecords, id)
	if err != nil {
		return nil, fmt.Errorf("payroll record %s: %w", id, err)
	}
	var record PayrollRecord
	if err := doc.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode payroll record %s: %w", id, err)
	}

	salaryEdited := false
	if patch.BaseSalary != nil {
		record.BaseSalary = *patch.BaseSalary
		salaryEdited = true
	}
	if patch.Allowances != nil {
		record.Allowances = *patch.Allowances
		salaryEdited = true
	}
	if patch.Deductions != nil {
		record.Deductions = *patch.Deductions
		salaryEdited = true
	}
	if patch.NetSalary != nil {
		record.NetSalary = *patch.NetSalary
		salaryEdited = true
	} else if salaryEdited {
		record.NetSalary = record.BaseSalary.Add(record.Allowances).Sub(record.Deductions)
	}
	if salaryEdited {
		// The override must survive reloads; only RecalculateAll clears it.
		record.ManualOverride = true
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.BankInfo != nil {
		record.BankInfo = patch.BankInfo
	}

	if err := s.store.Update(ctx, CollectionPayrollRecords, id, record); err != nil {
		return nil, fmt.Errorf("persist payroll record %s: %w", id, err)
	}
	return &record, nil
}

func (s *payrollService) RecalculateAll(ctx context.Context, period string) ([]PayrollRecord, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ListRecords(ctx, period)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		breakdown := ComputeSalary(record.Level, *cfg)
		record.BaseSalary = breakdown.BaseSalary
		record.Allowances = breakdown.Allowances
		record.Deductions = breakdown.Deductions
		record.NetSalary = breakdown.NetSalary
		record.ManualOverride = false
		// Status and BankInfo survive regeneration untouched.
		if err := s.store.Update(ctx, CollectionPayrollRecords, record.ID, record); err != nil {
			return nil, fmt.Errorf("persist recalculated record %s: %w", record.ID, err)
		}
	}

	return s.ListRecords(ctx, period)
}
