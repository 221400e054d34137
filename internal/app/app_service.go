package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"finance-backoffice/internal/ai"
	"finance-backoffice/internal/core"
	"finance-backoffice/internal/store"
	"finance-backoffice/internal/webhook"
)

// ErrInvalidCredentials is returned by AuthenticateUser for a bad
// username/password pair. The web layer maps it to 401 without detail.
var ErrInvalidCredentials = errors.New("invalid credentials")

type appService struct {
	store     store.DocumentStore
	dues      core.DueService
	payroll   core.PayrollService
	agent     ai.AgentService
	hook      *webhook.Client
	uploadDir string
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no API key is configured; chat operations then fail
// with a clear error instead of at dial time.
func NewAppService(
	st store.DocumentStore,
	dues core.DueService,
	payroll core.PayrollService,
	agent ai.AgentService,
	hook *webhook.Client,
	uploadDir string,
) ApplicationService {
	return &appService{
		store:     st,
		dues:      dues,
		payroll:   payroll,
		agent:     agent,
		hook:      hook,
		uploadDir: uploadDir,
	}
}

// ── Dues ─────────────────────────────────────────────────────────────────────

func toView(d core.FinancialDue, today time.Time) DueView {
	return DueView{
		FinancialDue:  d,
		DisplayStatus: core.DisplayStatus(d.Status, d.DueDate, today),
		DaysUntil:     core.DaysUntil(d.DueDate, today),
	}
}

func toViews(dues []core.FinancialDue, today time.Time) []DueView {
	views := make([]DueView, len(dues))
	for i, d := range dues {
		views[i] = toView(d, today)
	}
	return views
}

func (s *appService) ListDues(ctx context.Context) (*DueListResult, error) {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	return &DueListResult{Dues: toViews(dues, time.Now())}, nil
}

func (s *appService) GetOverview(ctx context.Context) (*OverviewResult, error) {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	return &OverviewResult{Overview: core.ComputeOverview(dues, time.Now())}, nil
}

func settleInput(req SettleDueRequest) core.SettleInput {
	return core.SettleInput{
		PaymentDate:   req.PaymentDate,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		Observations:  req.Observations,
	}
}

func (s *appService) SettleDue(ctx context.Context, id string, req SettleDueRequest) (*DueResult, error) {
	due, err := s.dues.Settle(ctx, id, settleInput(req))
	if err != nil {
		return nil, err
	}
	s.notifySettlement(*due)
	return &DueResult{Due: toView(*due, time.Now())}, nil
}

// notifySettlement relays a settlement to the workflow webhook without
// blocking or failing the settlement itself.
func (s *appService) notifySettlement(due core.FinancialDue) {
	if s.hook == nil || !s.hook.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.hook.Send(ctx, "due_settled", due, "financeiro"); err != nil {
			log.Warn().Err(err).Str("due_id", due.ID).Msg("settlement webhook failed")
		}
	}()
}

func (s *appService) ReopenDue(ctx context.Context, id string) (*DueResult, error) {
	due, err := s.dues.Reopen(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DueResult{Due: toView(*due, time.Now())}, nil
}

func (s *appService) BulkSettle(ctx context.Context, ids []string, req SettleDueRequest) (*core.BatchResult, error) {
	return s.dues.BulkSettle(ctx, ids, settleInput(req))
}

func (s *appService) BulkReopen(ctx context.Context, ids []string) (*core.BatchResult, error) {
	return s.dues.BulkReopen(ctx, ids)
}

func (s *appService) UpdateDue(ctx context.Context, id string, req UpdateDueRequest) (*DueListResult, error) {
	patch := core.DuePatch{
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		Observations:  req.Observations,
	}
	if req.DueDate != nil {
		d, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", *req.DueDate, err)
		}
		patch.DueDate = &d
	}
	if req.PaymentDate != nil {
		d, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("invalid payment date %q: %w", *req.PaymentDate, err)
		}
		patch.PaymentDate = &d
	}
	if req.Status != nil {
		st := core.DueStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		patch.Status = &st
	}

	dues, err := s.dues.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &DueListResult{Dues: toViews(dues, time.Now())}, nil
}

func (s *appService) AddAttachment(ctx context.Context, id string, req AttachmentRequest) (*DueResult, error) {
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("empty attachment")
	}

	name := uuid.NewString() + filepath.Ext(req.FileName)
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), req.Data, 0o644); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := core.Attachment{
		FileName:   req.FileName,
		URL:        "/uploads/" + name,
		Size:       int64(len(req.Data)),
		UploadedBy: req.UploadedBy,
		UploadedAt: time.Now(),
	}
	if err := s.dues.AddAttachment(ctx, id, att); err != nil {
		return nil, err
	}

	due, err := s.findDueView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DueResult{Due: *due}, nil
}

func (s *appService) findDueView(ctx context.Context, id string) (*DueView, error) {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range dues {
		if dues[i].ID == id {
			v := toView(dues[i], now)
			return &v, nil
		}
	}
	return nil, fmt.Errorf("due %s: %w", id, store.ErrNotFound)
}

func (s *appService) ExportDuesCSV(ctx context.Context) (*ExportResult, error) {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	content, err := core.DuesCSV(dues, now)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    core.ExportFilename(core.ExportKindDues, now),
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

func (s *appService) ExportMonthlySummaryCSV(ctx context.Context) (*ExportResult, error) {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	content, err := core.MonthlySummaryCSV(dues)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    core.ExportFilename(core.ExportKindSummary, time.Now()),
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

// ── Payroll ──────────────────────────────────────────────────────────────────

func (s *appService) GetPayrollConfig(ctx context.Context) (*PayrollConfigResult, error) {
	cfg, err := s.payroll.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &PayrollConfigResult{Config: *cfg}, nil
}

func (s *appService) SavePayrollConfig(ctx context.Context, req PayrollConfigRequest) (*PayrollConfigResult, error) {
	cfg := core.PayrollConfig{
		SalaryByLevel:        req.SalaryByLevel,
		AllowancesPercentage: req.AllowancesPercentage,
		DeductionsPercentage: req.DeductionsPercentage,
	}
	if err := s.payroll.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return &PayrollConfigResult{Config: cfg}, nil
}

func (s *appService) ListPayrollRecords(ctx context.Context, period string) (*PayrollListResult, error) {
	records, err := s.payroll.ListRecords(ctx, period)
	if err != nil {
		return nil, err
	}
	return &PayrollListResult{Period: period, Records: records}, nil
}

func (s *appService) GeneratePayroll(ctx context.Context, period string) (*PayrollListResult, error) {
	records, err := s.payroll.GeneratePeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	return &PayrollListResult{Period: period, Records: records}, nil
}

func (s *appService) UpdatePayrollRecord(ctx context.Context, id string, req PayrollRecordRequest) (*PayrollRecordResult, error) {
	patch := core.PayrollPatch{
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		NetSalary:  req.NetSalary,
	}
	if req.Status != nil {
		st := core.PayrollStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		switch st {
		case core.PayrollStatusPending, core.PayrollStatusCalculated, core.PayrollStatusPaid:
		default:
			return nil, fmt.Errorf("invalid payroll status %q", *req.Status)
		}
		patch.Status = &st
	}
	if req.BankInfo != nil {
		patch.BankInfo = &core.BankInfo{
			BankName:      req.BankInfo.BankName,
			Agency:        req.BankInfo.Agency,
			AccountNumber: req.BankInfo.AccountNumber,
			PixKey:        req.BankInfo.PixKey,
		}
	}

	record, err := s.payroll.UpdateRecord(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &PayrollRecordResult{Record: *record}, nil
}

func (s *appService) RecalculatePayroll(ctx context.Context, period string) (*PayrollListResult, error) {
	records, err := s.payroll.RecalculateAll(ctx, period)
	if err != nil {
		return nil, err
	}
	return &PayrollListResult{Period: period, Records: records}, nil
}

func (s *appService) ExportPayrollCSV(ctx context.Context, period string) (*ExportResult, error) {
	records, err := s.payroll.ListRecords(ctx, period)
	if err != nil {
		return nil, err
	}
	content, err := core.PayrollCSV(records)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    core.ExportFilename(core.ExportKindPayroll, time.Now()),
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

func (s *appService) ExportPayrollXLSX(ctx context.Context, period string) (*ExportResult, error) {
	records, err := s.payroll.ListRecords(ctx, period)
	if err != nil {
		return nil, err
	}
	content, err := core.PayrollXLSX(records, period)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    core.PayrollXLSXFilename(time.Now()),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

// ── Master data ──────────────────────────────────────────────────────────────

func listDocs[T any](ctx context.Context, st store.DocumentStore, collection string) ([]T, error) {
	docs, err := st.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return store.DecodeAll[T](docs)
}

func (s *appService) saveDoc(ctx context.Context, collection, id string, data any) error {
	err := s.store.Update(ctx, collection, id, data)
	if errors.Is(err, store.ErrNotFound) {
		return s.store.Create(ctx, collection, id, data)
	}
	return err
}

func (s *appService) ListCollaborators(ctx context.Context) ([]core.Collaborator, error) {
	return listDocs[core.Collaborator](ctx, s.store, core.CollectionCollaborators)
}

func (s *appService) SaveCollaborator(ctx context.Context, c core.Collaborator) (*core.Collaborator, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("collaborator name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.saveDoc(ctx, core.CollectionCollaborators, c.ID, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *appService) DeleteCollaborator(ctx context.Context, id string) error {
	return s.store.Delete(ctx, core.CollectionCollaborators, id)
}

func (s *appService) ListClients(ctx context.Context) ([]core.Client, error) {
	return listDocs[core.Client](ctx, s.store, core.CollectionClients)
}

func (s *appService) SaveClient(ctx context.Context, c core.Client) (*core.Client, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.saveDoc(ctx, core.CollectionClients, c.ID, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *appService) DeleteClient(ctx context.Context, id string) error {
	return s.store.Delete(ctx, core.CollectionClients, id)
}

func (s *appService) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	return listDocs[core.Supplier](ctx, s.store, core.CollectionSuppliers)
}

func (s *appService) SaveSupplier(ctx context.Context, sup core.Supplier) (*core.Supplier, error) {
	if strings.TrimSpace(sup.Name) == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	if sup.ID == "" {
		sup.ID = uuid.NewString()
	}
	if err := s.saveDoc(ctx, core.CollectionSuppliers, sup.ID, sup); err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *appService) DeleteSupplier(ctx context.Context, id string) error {
	return s.store.Delete(ctx, core.CollectionSuppliers, id)
}

// ── Chat ─────────────────────────────────────────────────────────────────────

func (s *appService) ListAssistants(ctx context.Context) ([]core.Assistant, error) {
	return listDocs[core.Assistant](ctx, s.store, core.CollectionAssistants)
}

func (s *appService) getAssistant(ctx context.Context, id string) (*core.Assistant, error) {
	doc, err := s.store.Get(ctx, core.CollectionAssistants, id)
	if err != nil {
		return nil, fmt.Errorf("assistant %s: %w", id, err)
	}
	var a core.Assistant
	if err := doc.Decode(&a); err != nil {
		return nil, fmt.Errorf("assistant %s: %w", id, err)
	}
	return &a, nil
}

func (s *appService) ChatMessage(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI assistant is not configured")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("empty message")
	}

	assistant, err := s.getAssistant(ctx, req.AssistantID)
	if err != nil {
		return nil, err
	}

	history, err := s.GetChatHistory(ctx, req.UserID, req.AssistantID)
	if err != nil {
		return nil, err
	}

	s.persistMessage(ctx, req.UserID, req.AssistantID, "user", req.Text)

	result := &ChatResult{AssistantName: assistant.Name}
	if assistant.FinanceActions {
		if err := s.interpretFinanceMessage(ctx, req.Text, result); err != nil {
			return nil, err
		}
	} else {
		answer, err := s.agent.Chat(ctx, *assistant, history, req.Text)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
	}

	if reply := chatTranscriptLine(result); reply != "" {
		s.persistMessage(ctx, req.UserID, req.AssistantID, "assistant", reply)
	}
	return result, nil
}

// interpretFinanceMessage runs the structured path: the current due list is
// serialized for the model, and the response branches into an answer, a
// clarifying question, or a transition proposal pending confirmation.
func (s *appService) interpretFinanceMessage(ctx context.Context, text string, result *ChatResult) error {
	dues, err := s.dues.ListDues(ctx)
	if err != nil {
		return err
	}
	resp, err := s.agent.InterpretDueAction(ctx, text, duesContext(dues, time.Now()))
	if err != nil {
		return err
	}

	switch {
	case resp.IsQuestion:
		result.Question = resp.Question
	case resp.Proposal != nil:
		result.Proposal = resp.Proposal
		result.Confidence = resp.Proposal.Confidence
		result.Reasoning = resp.Proposal.Reasoning
	default:
		result.Answer = resp.Answer
	}
	return nil
}

// duesContext renders the due list as one line per due for the model prompt.
func duesContext(dues []core.FinancialDue, today time.Time) string {
	if len(dues) == 0 {
		return "(no dues)"
	}
	var b strings.Builder
	for i := range dues {
		d := &dues[i]
		party := d.ClientName
		if party == "" {
			party = d.SupplierName
		}
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | vence %s | %s\n",
			d.ID, d.Type, d.Description, party,
			core.FormatBRL(d.Amount),
			d.DueDate.Format("02/01/2006"),
			core.DisplayStatus(d.Status, d.DueDate, today))
	}
	return b.String()
}

func chatTranscriptLine(result *ChatResult) string {
	switch {
	case result.Question != "":
		return result.Question
	case result.Proposal != nil:
		return result.Reasoning
	default:
		return result.Answer
	}
}

// persistMessage appends to the conversation log. History is an aid, not a
// ledger: a failed write is logged and the chat continues.
func (s *appService) persistMessage(ctx context.Context, userID, assistantID, role, content string) {
	msg := core.ChatMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		AssistantID: assistantID,
		Role:        role,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Create(ctx, core.CollectionChatMessages, msg.ID, msg); err != nil {
		log.Warn().Err(err).Str("assistant_id", assistantID).Msg("failed to persist chat message")
	}
}

func (s *appService) ExecuteDueAction(ctx context.Context, proposal *core.DueActionProposal) (*DueResult, error) {
	if proposal == nil {
		return nil, fmt.Errorf("no proposal to execute")
	}
	if err := proposal.Validate(); err != nil {
		return nil, err
	}

	switch proposal.Action {
	case core.ActionSettle:
		return s.SettleDue(ctx, proposal.DueID, SettleDueRequest{
			PaymentMethod: proposal.PaymentMethod,
			Observations:  proposal.Observations,
		})
	case core.ActionReopen:
		return s.ReopenDue(ctx, proposal.DueID)
	default:
		return nil, fmt.Errorf("unknown action %q", proposal.Action)
	}
}

func (s *appService) GetChatHistory(ctx context.Context, userID, assistantID string) ([]core.ChatMessage, error) {
	all, err := listDocs[core.ChatMessage](ctx, s.store, core.CollectionChatMessages)
	if err != nil {
		return nil, err
	}
	messages := make([]core.ChatMessage, 0, len(all))
	for _, m := range all {
		if m.UserID == userID && m.AssistantID == assistantID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s *appService) ClearChatHistory(ctx context.Context, userID, assistantID string) error {
	messages, err := s.GetChatHistory(ctx, userID, assistantID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err := s.store.Delete(ctx, core.CollectionChatMessages, m.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("clear history: %w", err)
		}
	}
	return nil
}

// ── Webhook forms ────────────────────────────────────────────────────────────

func (s *appService) SubmitForm(ctx context.Context, form string, data map[string]any) error {
	if s.hook == nil || !s.hook.Enabled() {
		return fmt.Errorf("webhook is not configured")
	}
	return s.hook.Send(ctx, "form_submission", data, form)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*core.User, error) {
	users, err := listDocs[core.User](ctx, s.store, core.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return &users[i], nil
	}
	return nil, ErrInvalidCredentials
}

func (s *appService) GetUser(ctx context.Context, id string) (*core.User, error) {
	doc, err := s.store.Get(ctx, core.CollectionUsers, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	var u core.User
	if err := doc.Decode(&u); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &u, nil
}

func (s *appService) EnsureAdminUser(ctx context.Context, username, password string) error {
	users, err := s.store.GetAll(ctx, core.CollectionUsers)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := core.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         "Administrador",
		Role:         "admin",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, core.CollectionUsers, admin.ID, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("username", username).Msg("bootstrap admin user created")
	return nil
}
