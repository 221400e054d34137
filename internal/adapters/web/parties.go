package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finance-backoffice/internal/core"
)

// listClients handles GET /api/clients.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"clients": clients})
}

// saveClient handles POST /api/clients and PUT /api/clients/{id}.
func (h *Handler) saveClient(w http.ResponseWriter, r *http.Request) {
	var c core.Client
	if !decodeJSON(w, r, &c) {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		c.ID = id
	}

	saved, err := h.svc.SaveClient(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, saved)
}

// deleteClient handles DELETE /api/clients/{id}.
func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listSuppliers handles GET /api/suppliers.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"suppliers": suppliers})
}

// saveSupplier handles POST /api/suppliers and PUT /api/suppliers/{id}.
func (h *Handler) saveSupplier(w http.ResponseWriter, r *http.Request) {
	var s core.Supplier
	if !decodeJSON(w, r, &s) {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		s.ID = id
	}

	saved, err := h.svc.SaveSupplier(r.Context(), s)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, saved)
}

// deleteSupplier handles DELETE /api/suppliers/{id}.
func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listCollaborators handles GET /api/collaborators.
func (h *Handler) listCollaborators(w http.ResponseWriter, r *http.Request) {
	collaborators, err := h.svc.ListCollaborators(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"collaborators": collaborators})
}

// saveCollaborator handles POST /api/collaborators and PUT /api/collaborators/{id}.
func (h *Handler) saveCollaborator(w http.ResponseWriter, r *http.Request) {
	var c core.Collaborator
	if !decodeJSON(w, r, &c) {
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		c.ID = id
	}

	saved, err := h.svc.SaveCollaborator(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, saved)
}

// deleteCollaborator handles DELETE /api/collaborators/{id}.
func (h *Handler) deleteCollaborator(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCollaborator(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
