package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"finance-backoffice/internal/app"
	"finance-backoffice/internal/core"
	"finance-backoffice/internal/store"
)

// stubAgent satisfies ai.AgentService with canned replies.
type stubAgent struct {
	chatReply string
	response  *core.DueActionResponse
}

func (a *stubAgent) Chat(context.Context, core.Assistant, []core.ChatMessage, string) (string, error) {
	return a.chatReply, nil
}

func (a *stubAgent) InterpretDueAction(context.Context, string, string) (*core.DueActionResponse, error) {
	return a.response, nil
}

func newFixture(t *testing.T, agent *stubAgent) (app.ApplicationService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := app.NewAppService(st, core.NewDueService(st), core.NewPayrollService(st), agent, nil, t.TempDir())
	return svc, st
}

func seedAssistant(t *testing.T, st *store.MemoryStore, id string, financeActions bool) {
	t.Helper()
	a := core.Assistant{
		ID:             id,
		Name:           "Assistente " + id,
		Model:          "gpt-4o-mini",
		SystemPrompt:   "Você é um assistente.",
		FinanceActions: financeActions,
	}
	if err := st.Create(context.Background(), core.CollectionAssistants, id, a); err != nil {
		t.Fatalf("seed assistant %s: %v", id, err)
	}
}

func seedPayableDoc(t *testing.T, st *store.MemoryStore, id string, dueInDays int) {
	t.Helper()
	ap := core.AccountPayable{
		ID:          id,
		Description: "Conta " + id,
		Amount:      decimal.NewFromInt(100),
		DueDate:     time.Now().AddDate(0, 0, dueInDays).Format("2006-01-02"),
		Status:      "pending",
	}
	if err := st.Create(context.Background(), core.CollectionAccountsPayable, id, ap); err != nil {
		t.Fatalf("seed payable %s: %v", id, err)
	}
}

func TestChatMessage_PlainAssistant(t *testing.T) {
	ctx := context.Background()
	agent := &stubAgent{chatReply: "Olá! Posso ajudar."}
	svc, st := newFixture(t, agent)
	seedAssistant(t, st, "geral", false)

	result, err := svc.ChatMessage(ctx, app.ChatRequest{UserID: "u1", AssistantID: "geral", Text: "bom dia"})
	if err != nil {
		t.Fatalf("ChatMessage: %v", err)
	}
	if result.Answer != "Olá! Posso ajudar." {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Proposal != nil {
		t.Error("plain assistant must not produce a proposal")
	}

	history, err := svc.GetChatHistory(ctx, "u1", "geral")
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want user+assistant", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "bom dia" {
		t.Errorf("first message = %s %q", history[0].Role, history[0].Content)
	}
	if history[1].Role != "assistant" || history[1].Content != "Olá! Posso ajudar." {
		t.Errorf("second message = %s %q", history[1].Role, history[1].Content)
	}
}

func TestChatMessage_FinanceAssistantProposal(t *testing.T) {
	ctx := context.Background()
	agent := &stubAgent{response: &core.DueActionResponse{
		Proposal: &core.DueActionProposal{
			Action:     core.ActionSettle,
			DueID:      "ap-p1",
			Confidence: 0.92,
			Reasoning:  "O usuário pediu para quitar a conta p1.",
		},
	}}
	svc, st := newFixture(t, agent)
	seedAssistant(t, st, "financeiro", true)
	seedPayableDoc(t, st, "p1", 3)

	result, err := svc.ChatMessage(ctx, app.ChatRequest{UserID: "u1", AssistantID: "financeiro", Text: "paguei a conta p1"})
	if err != nil {
		t.Fatalf("ChatMessage: %v", err)
	}
	if result.Proposal == nil {
		t.Fatal("expected a proposal")
	}
	if result.Proposal.DueID != "ap-p1" {
		t.Errorf("proposal due = %q", result.Proposal.DueID)
	}
	if result.Confidence != 0.92 {
		t.Errorf("confidence = %v", result.Confidence)
	}
}

func TestChatMessage_RequiresAgent(t *testing.T) {
	st := store.NewMemoryStore()
	svc := app.NewAppService(st, core.NewDueService(st), core.NewPayrollService(st), nil, nil, t.TempDir())
	seedAssistant(t, st, "geral", false)

	_, err := svc.ChatMessage(context.Background(), app.ChatRequest{UserID: "u1", AssistantID: "geral", Text: "oi"})
	if err == nil {
		t.Fatal("chat without a configured agent should fail")
	}
}

func TestExecuteDueAction_Settle(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t, &stubAgent{})
	seedPayableDoc(t, st, "p1", 3)

	result, err := svc.ExecuteDueAction(ctx, &core.DueActionProposal{
		Action:        core.ActionSettle,
		DueID:         "ap-p1",
		PaymentMethod: "PIX",
		Confidence:    0.9,
	})
	if err != nil {
		t.Fatalf("ExecuteDueAction: %v", err)
	}
	if result.Due.Status != core.StatusPaid {
		t.Errorf("status = %s, want PAID", result.Due.Status)
	}
}

func TestExecuteDueAction_RejectsInvalidProposal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t, &stubAgent{})

	if _, err := svc.ExecuteDueAction(ctx, nil); err == nil {
		t.Error("nil proposal should fail")
	}
	if _, err := svc.ExecuteDueAction(ctx, &core.DueActionProposal{Action: "delete", DueID: "x", Confidence: 1}); err == nil {
		t.Error("unknown action should fail validation")
	}
}

func TestChatHistory_FilteredAndCleared(t *testing.T) {
	ctx := context.Background()
	agent := &stubAgent{chatReply: "ok"}
	svc, st := newFixture(t, agent)
	seedAssistant(t, st, "geral", false)
	seedAssistant(t, st, "outro", false)

	for _, m := range []struct{ user, assistant, text string }{
		{"u1", "geral", "primeira"},
		{"u1", "outro", "fora do filtro"},
		{"u2", "geral", "de outro usuário"},
	} {
		if _, err := svc.ChatMessage(ctx, app.ChatRequest{UserID: m.user, AssistantID: m.assistant, Text: m.text}); err != nil {
			t.Fatalf("ChatMessage: %v", err)
		}
	}

	history, err := svc.GetChatHistory(ctx, "u1", "geral")
	if err != nil {
		t.Fatalf("GetChatHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("filtered history has %d messages, want 2", len(history))
	}
	if history[0].Content != "primeira" {
		t.Errorf("history[0] = %q", history[0].Content)
	}

	if err := svc.ClearChatHistory(ctx, "u1", "geral"); err != nil {
		t.Fatalf("ClearChatHistory: %v", err)
	}
	history, err = svc.GetChatHistory(ctx, "u1", "geral")
	if err != nil {
		t.Fatalf("GetChatHistory after clear: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history not cleared: %d messages left", len(history))
	}

	// Other conversations survive the clear.
	other, err := svc.GetChatHistory(ctx, "u2", "geral")
	if err != nil {
		t.Fatalf("GetChatHistory u2: %v", err)
	}
	if len(other) != 2 {
		t.Errorf("u2 history has %d messages, want 2", len(other))
	}
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t, &stubAgent{})

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := core.User{ID: "u1", Username: "maria", Name: "Maria", Role: "user", PasswordHash: string(hash)}
	if err := st.Create(ctx, core.CollectionUsers, u.ID, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	got, err := svc.AuthenticateUser(ctx, "maria", "s3nha")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("user id = %q", got.ID)
	}

	if _, err := svc.AuthenticateUser(ctx, "maria", "errada"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.AuthenticateUser(ctx, "ninguem", "s3nha"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Errorf("unknown user = %v, want ErrInvalidCredentials", err)
	}
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t, &stubAgent{})

	if err := svc.EnsureAdminUser(ctx, "admin", "bootstrap"); err != nil {
		t.Fatalf("EnsureAdminUser: %v", err)
	}
	admin, err := svc.AuthenticateUser(ctx, "admin", "bootstrap")
	if err != nil {
		t.Fatalf("authenticate bootstrap admin: %v", err)
	}
	if admin.Role != "admin" {
		t.Errorf("role = %q, want admin", admin.Role)
	}

	// A second call must not create another user or reset the password.
	if err := svc.EnsureAdminUser(ctx, "admin", "different"); err != nil {
		t.Fatalf("second EnsureAdminUser: %v", err)
	}
	users, err := st.GetAll(ctx, core.CollectionUsers)
	if err != nil {
		t.Fatalf("GetAll users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}
	if _, err := svc.AuthenticateUser(ctx, "admin", "bootstrap"); err != nil {
		t.Errorf("original password rejected after no-op bootstrap: %v", err)
	}
}

func TestUpdateDue_EditsPaymentFields(t *testing.T) {
	ctx := context.Background()
	svc, st := newFixture(t, &stubAgent{})
	seedPayableDoc(t, st, "p1", 3)

	payDate := "2026-08-28"
	payAmount := decimal.RequireFromString("95.50")
	method := "PIX"
	result, err := svc.UpdateDue(ctx, "ap-p1", app.UpdateDueRequest{
		PaymentDate:   &payDate,
		PaymentAmount: &payAmount,
		PaymentMethod: &method,
	})
	if err != nil {
		t.Fatalf("UpdateDue: %v", err)
	}

	var due *core.FinancialDue
	for i := range result.Dues {
		if result.Dues[i].ID == "ap-p1" {
			due = &result.Dues[i].FinancialDue
		}
	}
	if due == nil {
		t.Fatal("updated due missing from list")
	}
	if due.PaymentDate == nil || due.PaymentDate.Format("2006-01-02") != payDate {
		t.Errorf("payment date = %v, want %s", due.PaymentDate, payDate)
	}
	if due.PaymentAmount == nil || !due.PaymentAmount.Equal(payAmount) {
		t.Errorf("payment amount = %v, want %s", due.PaymentAmount, payAmount)
	}
	if due.PaymentMethod != "PIX" {
		t.Errorf("payment method = %q, want PIX", due.PaymentMethod)
	}

	bad := "28/08/2026"
	if _, err := svc.UpdateDue(ctx, "ap-p1", app.UpdateDueRequest{PaymentDate: &bad}); err == nil {
		t.Error("non-ISO payment date should be rejected")
	}
}

func TestSaveClient_AssignsIDAndValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t, &stubAgent{})

	if _, err := svc.SaveClient(ctx, core.Client{Name: "   "}); err == nil {
		t.Error("blank name should be rejected")
	}

	saved, err := svc.SaveClient(ctx, core.Client{Name: "Imobiliária Central"})
	if err != nil {
		t.Fatalf("SaveClient: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a generated id")
	}

	saved.Name = "Imobiliária Central Ltda"
	if _, err := svc.SaveClient(ctx, *saved); err != nil {
		t.Fatalf("SaveClient update: %v", err)
	}

	clients, err := svc.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("got %d clients, want 1", len(clients))
	}
	if clients[0].Name != "Imobiliária Central Ltda" {
		t.Errorf("name = %q", clients[0].Name)
	}

	if err := svc.DeleteClient(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if err := svc.DeleteClient(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
