package web

import (
	"context"
	"fmt"
	"net/http"

	"finance-backoffice/internal/app"
)

// writeDownload sends an ExportResult as a file download.
func writeDownload(w http.ResponseWriter, result *app.ExportResult) {
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	_, _ = w.Write(result.Content)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, fn func(context.Context) (*app.ExportResult, error)) {
	result, err := fn(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDownload(w, result)
}

// exportDues handles GET /api/export/dues.
func (h *Handler) exportDues(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.svc.ExportDuesCSV)
}

// exportSummary handles GET /api/export/summary.
func (h *Handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.svc.ExportMonthlySummaryCSV)
}

// exportPayrollCSV handles GET /api/export/payroll?period=YYYY-MM.
func (h *Handler) exportPayrollCSV(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	h.export(w, r, func(ctx context.Context) (*app.ExportResult, error) {
		return h.svc.ExportPayrollCSV(ctx, period)
	})
}

// exportPayrollXLSX handles GET /api/export/payroll.xlsx?period=YYYY-MM.
func (h *Handler) exportPayrollXLSX(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	h.export(w, r, func(ctx context.Context) (*app.ExportResult, error) {
		return h.svc.ExportPayrollXLSX(ctx, period)
	})
}
