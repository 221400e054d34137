package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"finance-backoffice/internal/app"
)

// getPayrollConfig handles GET /api/payroll/config.
func (h *Handler) getPayrollConfig(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPayrollConfig(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Config)
}

// savePayrollConfig handles PUT /api/payroll/config.
func (h *Handler) savePayrollConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SalaryByLevel        map[string]decimal.Decimal `json:"salary_by_level"`
		AllowancesPercentage decimal.Decimal            `json:"allowances_percentage"`
		DeductionsPercentage decimal.Decimal            `json:"deductions_percentage"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.SavePayrollConfig(r.Context(), app.PayrollConfigRequest{
		SalaryByLevel:        req.SalaryByLevel,
		AllowancesPercentage: req.AllowancesPercentage,
		DeductionsPercentage: req.DeductionsPercentage,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Config)
}

// listPayrollRecords handles GET /api/payroll/records?period=YYYY-MM.
func (h *Handler) listPayrollRecords(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPayrollRecords(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"period": result.Period, "records": result.Records})
}

type payrollPeriodRequest struct {
	Period string `json:"period"` // YYYY-MM
}

// generatePayroll handles POST /api/payroll/generate.
func (h *Handler) generatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollPeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.GeneratePayroll(r.Context(), req.Period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"period": result.Period, "records": result.Records})
}

// recalculatePayroll handles POST /api/payroll/recalculate. The frontend
// confirms once for the whole batch before calling this.
func (h *Handler) recalculatePayroll(w http.ResponseWriter, r *http.Request) {
	var req payrollPeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.RecalculatePayroll(r.Context(), req.Period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"period": result.Period, "records": result.Records})
}

// updatePayrollRecord handles PATCH /api/payroll/records/{id}.
func (h *Handler) updatePayrollRecord(w http.ResponseWriter, r *http.Request) {
	var req app.PayrollRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdatePayrollRecord(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Record)
}
