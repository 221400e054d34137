package web

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"finance-backoffice/internal/app"
)

// maxAttachmentBytes caps individual proof-of-payment uploads.
const maxAttachmentBytes = 10 << 20 // 10 MB

type settleRequest struct {
	PaymentDate   string           `json:"payment_date,omitempty"` // YYYY-MM-DD
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Observations  string           `json:"observations,omitempty"`
}

func (req settleRequest) toApp(w http.ResponseWriter, r *http.Request) (app.SettleDueRequest, bool) {
	out := app.SettleDueRequest{
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		Observations:  req.Observations,
	}
	if req.PaymentDate != "" {
		d, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			writeError(w, r, "invalid payment_date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return out, false
		}
		out.PaymentDate = &d
	}
	return out, true
}

// listDues handles GET /api/dues.
func (h *Handler) listDues(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListDues(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"dues": result.Dues})
}

// getOverview handles GET /api/dues/overview.
func (h *Handler) getOverview(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Overview)
}

// settleDue handles POST /api/dues/{id}/settle. An empty body means
// "settle now for the full amount".
func (h *Handler) settleDue(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	input, ok := req.toApp(w, r)
	if !ok {
		return
	}

	result, err := h.svc.SettleDue(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Due)
}

// reopenDue handles POST /api/dues/{id}/reopen.
func (h *Handler) reopenDue(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ReopenDue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Due)
}

type bulkRequest struct {
	IDs []string `json:"ids"`
	settleRequest
}

// bulkSettle handles POST /api/dues/bulk-settle.
func (h *Handler) bulkSettle(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, "ids is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	input, ok := req.toApp(w, r)
	if !ok {
		return
	}

	result, err := h.svc.BulkSettle(r.Context(), req.IDs, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// bulkReopen handles POST /api/dues/bulk-reopen.
func (h *Handler) bulkReopen(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, "ids is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.BulkReopen(r.Context(), req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateDue handles PATCH /api/dues/{id}.
func (h *Handler) updateDue(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateDueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateDue(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"dues": result.Dues})
}

// addAttachment handles POST /api/dues/{id}/attachments (multipart form,
// field "file").
func (h *Handler) addAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		writeError(w, r, "invalid multipart form: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file field is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "failed to read upload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	uploadedBy := ""
	if claims := authFromContext(r.Context()); claims != nil {
		uploadedBy = claims.UserID
	}

	result, err := h.svc.AddAttachment(r.Context(), chi.URLParam(r, "id"), app.AttachmentRequest{
		FileName:   header.Filename,
		MimeType:   http.DetectContentType(data),
		Data:       data,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Due)
}

// submitForm handles POST /api/forms/{form} — relays the JSON payload to the
// workflow webhook.
func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if !decodeJSON(w, r, &data) {
		return
	}
	if err := h.svc.SubmitForm(r.Context(), chi.URLParam(r, "form"), data); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
