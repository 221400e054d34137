package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"finance-backoffice/internal/app"
	"finance-backoffice/internal/core"
)

// ── Pending action store ──────────────────────────────────────────────────────

// pendingAction is a proposed due transition stored server-side until the
// user confirms or cancels it.
type pendingAction struct {
	Proposal  *core.DueActionProposal
	UserID    string
	CreatedAt time.Time
}

const pendingTTL = 15 * time.Minute

// pendingStore is a thread-safe in-memory store with TTL expiry.
type pendingStore struct {
	mu      sync.Mutex
	actions map[string]pendingAction
}

func newPendingStore() *pendingStore {
	return &pendingStore{actions: make(map[string]pendingAction)}
}

func (s *pendingStore) put(token string, a pendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[token] = a
}

func (s *pendingStore) get(token string) (pendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[token]
	if !ok {
		return pendingAction{}, false
	}
	if time.Since(a.CreatedAt) > pendingTTL {
		delete(s.actions, token)
		return pendingAction{}, false
	}
	return a, true
}

func (s *pendingStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actions, token)
}

// startPurge starts a background goroutine that evicts expired entries
// every 5 minutes.
func (s *pendingStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for token, action := range s.actions {
					if time.Since(action.CreatedAt) > pendingTTL {
						delete(s.actions, token)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// ── SSE helpers ───────────────────────────────────────────────────────────────

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

// ── Handlers ──────────────────────────────────────────────────────────────────

// listAssistants handles GET /api/assistants.
func (h *Handler) listAssistants(w http.ResponseWriter, r *http.Request) {
	assistants, err := h.svc.ListAssistants(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"assistants": assistants})
}

// chatHistory handles GET /api/chat/history?assistant_id=...
func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	assistantID := r.URL.Query().Get("assistant_id")
	if assistantID == "" {
		writeError(w, r, "assistant_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	claims := authFromContext(r.Context())

	messages, err := h.svc.GetChatHistory(r.Context(), claims.UserID, assistantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"messages": messages})
}

type chatMessageRequest struct {
	AssistantID string `json:"assistant_id"`
	Text        string `json:"text"`
}

type chatConfirmRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"` // "confirm" or "cancel"
}

// chatMessage handles POST /api/chat/message and streams the response via SSE.
//
// SSE event types:
//
//	status        {"status":"thinking"}
//	answer        {"text":"..."}
//	clarification {"question":"..."}
//	action_card   {"token":"uuid","proposal":{...},"reasoning":"..."}
//	error         {"message":"...","code":"..."}
//	done          {}
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" || req.AssistantID == "" {
		writeError(w, r, "text and assistant_id are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming not supported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	claims := authFromContext(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering if present

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	result, err := h.svc.ChatMessage(r.Context(), app.ChatRequest{
		UserID:      claims.UserID,
		AssistantID: req.AssistantID,
		Text:        req.Text,
	})
	if err != nil {
		sendSSE(w, flusher, "error", map[string]any{"message": err.Error(), "code": "AI_ERROR"})
		sendSSE(w, flusher, "done", map[string]any{})
		return
	}

	switch {
	case result.Question != "":
		sendSSE(w, flusher, "clarification", map[string]any{"question": result.Question})

	case result.Proposal != nil:
		token := uuid.NewString()
		h.pending.put(token, pendingAction{
			Proposal:  result.Proposal,
			UserID:    claims.UserID,
			CreatedAt: time.Now(),
		})
		sendSSE(w, flusher, "action_card", map[string]any{
			"token":     token,
			"proposal":  result.Proposal,
			"reasoning": result.Reasoning,
		})

	default:
		sendSSE(w, flusher, "answer", map[string]any{"text": result.Answer})
	}

	sendSSE(w, flusher, "done", map[string]any{})
}

// chatConfirm handles POST /api/chat/confirm — executes or cancels a pending
// due transition identified by its token.
func (h *Handler) chatConfirm(w http.ResponseWriter, r *http.Request) {
	var req chatConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, "token is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Action != "confirm" && req.Action != "cancel" {
		writeError(w, r, "action must be 'confirm' or 'cancel'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	action, ok := h.pending.get(req.Token)
	if !ok {
		writeError(w, r, "token not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}

	// Only the user who received the proposal may act on it.
	claims := authFromContext(r.Context())
	if claims == nil || claims.UserID != action.UserID {
		writeError(w, r, "token not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}
	h.pending.delete(req.Token)

	if req.Action == "cancel" {
		writeJSON(w, map[string]any{"ok": true, "message": "Ação cancelada."})
		return
	}

	result, err := h.svc.ExecuteDueAction(r.Context(), action.Proposal)
	if err != nil {
		writeError(w, r, err.Error(), "ACTION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "due": result.Due})
}

// chatClear handles POST /api/chat/clear — deletes the conversation with
// one assistant.
func (h *Handler) chatClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssistantID string `json:"assistant_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssistantID == "" {
		writeError(w, r, "assistant_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	claims := authFromContext(r.Context())

	if err := h.svc.ClearChatHistory(r.Context(), claims.UserID, req.AssistantID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
