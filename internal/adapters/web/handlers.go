// Package web is the HTTP adapter: routing, auth, JSON/SSE encoding, and
// translation between request payloads and ApplicationService calls.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"finance-backoffice/internal/app"
	webui "finance-backoffice/web"
)

// Handler holds the ApplicationService, the chi router, and the pending
// action store for chat confirmations.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	pending    *pendingStore
	jwtSecret  string
	fileServer http.Handler
	uploadDir  string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	h := &Handler{
		svc:        svc,
		pending:    newPendingStore(),
		jwtSecret:  jwtSecret,
		fileServer: http.FileServer(http.FS(staticFS)),
		uploadDir:  uploadDir,
	}
	h.pending.startPurge(context.Background())

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Static frontend + stored attachments ─────────────────────────────────
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		h.fileServer.ServeHTTP(w, req)
	})
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/uploads", http.FileServer(http.Dir(uploadDir))).ServeHTTP(w, req)
	})

	// ── Protected API ────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Attachment upload: multipart, size managed inside the handler.
		r.Post("/api/dues/{id}/attachments", h.addAttachment)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			// Dues
			r.Get("/api/dues", h.listDues)
			r.Get("/api/dues/overview", h.getOverview)
			r.Post("/api/dues/bulk-settle", h.bulkSettle)
			r.Post("/api/dues/bulk-reopen", h.bulkReopen)
			r.Post("/api/dues/{id}/settle", h.settleDue)
			r.Post("/api/dues/{id}/reopen", h.reopenDue)
			r.Patch("/api/dues/{id}", h.updateDue)

			// Exports
			r.Get("/api/export/dues", h.exportDues)
			r.Get("/api/export/summary", h.exportSummary)
			r.Get("/api/export/payroll", h.exportPayrollCSV)
			r.Get("/api/export/payroll.xlsx", h.exportPayrollXLSX)

			// Payroll
			r.Get("/api/payroll/config", h.getPayrollConfig)
			r.Put("/api/payroll/config", h.savePayrollConfig)
			r.Get("/api/payroll/records", h.listPayrollRecords)
			r.Post("/api/payroll/generate", h.generatePayroll)
			r.Post("/api/payroll/recalculate", h.recalculatePayroll)
			r.Patch("/api/payroll/records/{id}", h.updatePayrollRecord)

			// Master data
			r.Get("/api/clients", h.listClients)
			r.Post("/api/clients", h.saveClient)
			r.Put("/api/clients/{id}", h.saveClient)
			r.Delete("/api/clients/{id}", h.deleteClient)
			r.Get("/api/suppliers", h.listSuppliers)
			r.Post("/api/suppliers", h.saveSupplier)
			r.Put("/api/suppliers/{id}", h.saveSupplier)
			r.Delete("/api/suppliers/{id}", h.deleteSupplier)
			r.Get("/api/collaborators", h.listCollaborators)
			r.Post("/api/collaborators", h.saveCollaborator)
			r.Put("/api/collaborators/{id}", h.saveCollaborator)
			r.Delete("/api/collaborators/{id}", h.deleteCollaborator)

			// Chat
			r.Get("/api/assistants", h.listAssistants)
			r.Get("/api/chat/history", h.chatHistory)
			r.Post("/api/chat/message", h.chatMessage)
			r.Post("/api/chat/confirm", h.chatConfirm)
			r.Post("/api/chat/clear", h.chatClear)

			// Workflow forms
			r.Post("/api/forms/{form}", h.submitForm)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and writes an appropriate error
// response on failure. Returns HTTP 413 when the body exceeds the limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
