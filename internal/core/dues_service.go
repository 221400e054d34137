package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finance-backoffice/internal/store"
)

// SettleInput carries the payment metadata for a settlement. Zero-value
// fields fall back to defaults: PaymentDate to today, PaymentAmount to the
// due's own amount.
type SettleInput struct {
	PaymentDate   *time.Time
	PaymentAmount *decimal.Decimal
	PaymentMethod string
	Observations  string
}

// DuePatch is a partial edit of a stored due. Nil fields are left untouched.
type DuePatch struct {
	Description   *string
	Amount        *decimal.Decimal
	DueDate       *time.Time
	Status        *DueStatus
	PaymentDate   *time.Time
	PaymentAmount *decimal.Decimal
	PaymentMethod *string
	Observations  *string
}

// BatchResult reports the outcome of a bulk transition. The batch never
// aborts early: every id is attempted and failures are reported per id.
type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// DueService aggregates the four source collections into the unified due list
// and applies status transitions. Transitions persist to the store before any
// result is reported — there is no optimistic in-memory apply to roll back.
type DueService interface {
	// ListDues fetches all four source collections and returns the
	// normalized, date-ordered due list.
	ListDues(ctx context.Context) ([]FinancialDue, error)

	// Settle marks a due as PAID (payable) or RECEIVED (receivable),
	// stamping payment metadata. Settling a synthesized recurring instance
	// materializes a one-off settled record in the matching accounts
	// collection.
	Settle(ctx context.Context, id string, input SettleInput) (*FinancialDue, error)

	// Reopen resets a settled due back to PENDING. Payment metadata and
	// observations are deliberately kept as an audit trail.
	Reopen(ctx context.Context, id string) (*FinancialDue, error)

	// BulkSettle applies Settle to each id sequentially, tolerating partial
	// failure.
	BulkSettle(ctx context.Context, ids []string, input SettleInput) (*BatchResult, error)

	// BulkReopen applies Reopen to each id sequentially, tolerating partial
	// failure.
	BulkReopen(ctx context.Context, ids []string) (*BatchResult, error)

	// Update applies an arbitrary field edit to a stored due and then
	// re-fetches the full list, so callers never trust a local patch.
	Update(ctx context.Context, id string, patch DuePatch) ([]FinancialDue, error)

	// AddAttachment appends proof-of-payment metadata to a stored due.
	AddAttachment(ctx context.Context, id string, att Attachment) error
}

type dueService struct {
	store store.DocumentStore
}

// NewDueService constructs a DueService backed by the given document store.
func NewDueService(st store.DocumentStore) DueService {
	return &dueService{store: st}
}

func (s *dueService) ListDues(ctx context.Context) ([]FinancialDue, error) {
	var (
		payables    []AccountPayable
		receivables []AccountReceivable
		suppliers   []Supplier
		clients     []Client
	)

	// The four collections are independent; fetch them concurrently and join.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.store.GetAll(gctx, CollectionAccountsPayable)
		if err != nil {
			return fmt.Errorf("load payables: %w", err)
		}
		payables, err = store.DecodeAll[AccountPayable](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.GetAll(gctx, CollectionAccountsReceivable)
		if err != nil {
			return fmt.Errorf("load receivables: %w", err)
		}
		receivables, err = store.DecodeAll[AccountReceivable](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.GetAll(gctx, CollectionSuppliers)
		if err != nil {
			return fmt.Errorf("load suppliers: %w", err)
		}
		suppliers, err = store.DecodeAll[Supplier](docs)
		return err
	})
	g.Go(func() error {
		docs, err := s.store.GetAll(gctx, CollectionClients)
		if err != nil {
			return fmt.Errorf("load clients: %w", err)
		}
		clients, err = store.DecodeAll[Client](docs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NormalizeDues(payables, receivables, suppliers, clients, time.Now()), nil
}

// findDue locates one due in the current normalized list.
func (s *dueService) findDue(ctx context.Context, id string) (*FinancialDue, error) {
	dues, err := s.ListDues(ctx)
	if err != nil {
		return nil, err
	}
	for i := range dues {
		if dues[i].ID == id {
			return &dues[i], nil
		}
	}
	return nil, fmt.Errorf("due %s: %w", id, store.ErrNotFound)
}

func (s *dueService) Settle(ctx context.Context, id string, input SettleInput) (*FinancialDue, error) {
	due, err := s.findDue(ctx, id)
	if err != nil {
		return nil, err
	}
	if due.Settled() {
		return nil, fmt.Errorf("due %s is already settled", id)
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}
	paymentAmount := due.Amount
	if input.PaymentAmount != nil {
		paymentAmount = *input.PaymentAmount
	}

	switch due.Source {
	case SourceAccountPayable:
		ap, err := s.loadPayable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		ap.Status = "paid"
		ap.PaymentDate = paymentDate.Format("2006-01-02")
		ap.PaymentAmount = &paymentAmount
		applySettleText(&ap.PaymentMethod, &ap.Observations, input)
		if err := s.store.Update(ctx, CollectionAccountsPayable, ap.ID, ap); err != nil {
			return nil, fmt.Errorf("persist settlement of %s: %w", id, err)
		}

	case SourceAccountReceivable:
		ar, err := s.loadReceivable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		ar.Status = "received"
		ar.PaymentDate = paymentDate.Format("2006-01-02")
		ar.PaymentAmount = &paymentAmount
		applySettleText(&ar.PaymentMethod, &ar.Observations, input)
		if err := s.store.Update(ctx, CollectionAccountsReceivable, ar.ID, ar); err != nil {
			return nil, fmt.Errorf("persist settlement of %s: %w", id, err)
		}

	case SourceSupplierRecurring:
		// A synthesized instance has no stored record: materialize a one-off
		// settled payable so this month's occurrence stops being synthesized
		// as pending.
		ap := AccountPayable{
			ID:                uuid.NewString(),
			Description:       due.Description,
			SupplierName:      due.SupplierName,
			Amount:            due.Amount,
			DueDate:           due.DueDate.Format("2006-01-02"),
			Status:            "paid",
			PaymentDate:       paymentDate.Format("2006-01-02"),
			PaymentAmount:     &paymentAmount,
			PaymentMethod:     input.PaymentMethod,
			Observations:      input.Observations,
			RecurringSourceID: due.SourceID,
		}
		if err := s.store.Create(ctx, CollectionAccountsPayable, ap.ID, ap); err != nil {
			return nil, fmt.Errorf("materialize recurring payable %s: %w", id, err)
		}

	case SourceClientRecurring:
		ar := AccountReceivable{
			ID:                uuid.NewString(),
			Description:       due.Description,
			ClientName:        due.ClientName,
			Amount:            due.Amount,
			DueDate:           due.DueDate.Format("2006-01-02"),
			Status:            "received",
			PaymentDate:       paymentDate.Format("2006-01-02"),
			PaymentAmount:     &paymentAmount,
			PaymentMethod:     input.PaymentMethod,
			Observations:      input.Observations,
			RecurringSourceID: due.SourceID,
		}
		if err := s.store.Create(ctx, CollectionAccountsReceivable, ar.ID, ar); err != nil {
			return nil, fmt.Errorf("materialize recurring receivable %s: %w", id, err)
		}

	default:
		return nil, fmt.Errorf("due %s has unknown source %s", id, due.Source)
	}

	due.Status = due.SettledStatus()
	due.Priority = PriorityLow
	due.PaymentDate = &paymentDate
	due.PaymentAmount = &paymentAmount
	if input.PaymentMethod != "" {
		due.PaymentMethod = input.PaymentMethod
	}
	if input.Observations != "" {
		due.Observations = input.Observations
	}
	return due, nil
}

// applySettleText copies non-empty method/observation strings into the record.
func applySettleText(method, observations *string, input SettleInput) {
	if input.PaymentMethod != "" {
		*method = input.PaymentMethod
	}
	if input.Observations != "" {
		*observations = input.Observations
	}
}

func (s *dueService) Reopen(ctx context.Context, id string) (*FinancialDue, error) {
	due, err := s.findDue(ctx, id)
	if err != nil {
		return nil, err
	}
	if !due.Settled() {
		return nil, fmt.Errorf("due %s is not settled", id)
	}

	// Payment metadata and observations are kept on purpose: reopening a
	// settled record must not erase the evidence that it was once settled.
	switch due.Source {
	case SourceAccountPayable:
		ap, err := s.loadPayable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		ap.Status = "pending"
		if err := s.store.Update(ctx, CollectionAccountsPayable, ap.ID, ap); err != nil {
			return nil, fmt.Errorf("persist reopen of %s: %w", id, err)
		}
	case SourceAccountReceivable:
		ar, err := s.loadReceivable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		ar.Status = "pending"
		if err := s.store.Update(ctx, CollectionAccountsReceivable, ar.ID, ar); err != nil {
			return nil, fmt.Errorf("persist reopen of %s: %w", id, err)
		}
	default:
		return nil, fmt.Errorf("due %s is a synthesized recurring instance and cannot be reopened", id)
	}

	due.Status = StatusPending
	due.Priority = DerivePriority(StatusPending, due.DueDate, time.Now())
	return due, nil
}

func (s *dueService) BulkSettle(ctx context.Context, ids []string, input SettleInput) (*BatchResult, error) {
	return s.bulk(ids, func(id string) error {
		_, err := s.Settle(ctx, id, input)
		return err
	})
}

func (s *dueService) BulkReopen(ctx context.Context, ids []string) (*BatchResult, error) {
	return s.bulk(ids, func(id string) error {
		_, err := s.Reopen(ctx, id)
		return err
	})
}

// bulk runs op over the ids strictly sequentially. Sequential iteration keeps
// failure accounting simple and avoids flooding the store with concurrent
// writes; a failed item never stops the rest of the batch.
func (s *dueService) bulk(ids []string, op func(id string) error) (*BatchResult, error) {
	result := &BatchResult{Errors: make(map[string]string)}
	for _, id := range ids {
		if err := op(id); err != nil {
			result.Failed++
			result.Errors[id] = err.Error()
			log.Warn().Str("due_id", id).Err(err).Msg("bulk transition item failed")
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func (s *dueService) Update(ctx context.Context, id string, patch DuePatch) ([]FinancialDue, error) {
	due, err := s.findDue(ctx, id)
	if err != nil {
		return nil, err
	}

	switch due.Source {
	case SourceAccountPayable:
		ap, err := s.loadPayable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		if err := validatePatchStatus(patch.Status, DueTypePayable); err != nil {
			return nil, err
		}
		applyPatchPayable(ap, patch)
		if err := s.store.Update(ctx, CollectionAccountsPayable, ap.ID, ap); err != nil {
			return nil, fmt.Errorf("persist update of %s: %w", id, err)
		}
	case SourceAccountReceivable:
		ar, err := s.loadReceivable(ctx, due.SourceID)
		if err != nil {
			return nil, err
		}
		if err := validatePatchStatus(patch.Status, DueTypeReceivable); err != nil {
			return nil, err
		}
		applyPatchReceivable(ar, patch)
		if err := s.store.Update(ctx, CollectionAccountsReceivable, ar.ID, ar); err != nil {
			return nil, fmt.Errorf("persist update of %s: %w", id, err)
		}
	default:
		return nil, fmt.Errorf("due %s is a synthesized recurring instance; settle it to materialize a record first", id)
	}

	// Re-fetch rather than trusting the local patch: derived OVERDUE labels
	// and stored state must never drift apart.
	return s.ListDues(ctx)
}

// validatePatchStatus rejects terminal statuses that contradict the due type
// and the derived-only OVERDUE label.
func validatePatchStatus(status *DueStatus, dueType DueType) error {
	if status == nil {
		return nil
	}
	switch *status {
	case StatusPending:
		return nil
	case StatusPaid:
		if dueType != DueTypePayable {
			return fmt.Errorf("status PAID is only valid for payables")
		}
		return nil
	case StatusReceived:
		if dueType != DueTypeReceivable {
			return fmt.Errorf("status RECEIVED is only valid for receivables")
		}
		return nil
	case StatusOverdue:
		return fmt.Errorf("OVERDUE is derived at read time and cannot be stored")
	default:
		return fmt.Errorf("unknown status %q", *status)
	}
}

func applyPatchPayable(ap *AccountPayable, patch DuePatch) {
	if patch.Description != nil {
		ap.Description = *patch.Description
	}
	if patch.Amount != nil {
		ap.Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		ap.DueDate = patch.DueDate.Format("2006-01-02")
	}
	if patch.Status != nil {
		ap.Status = strings.ToLower(string(*patch.Status))
	}
	if patch.PaymentDate != nil {
		ap.PaymentDate = patch.PaymentDate.Format("2006-01-02")
	}
	if patch.PaymentAmount != nil {
		ap.PaymentAmount = patch.PaymentAmount
	}
	if patch.PaymentMethod != nil {
		ap.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Observations != nil {
		ap.Observations = *patch.Observations
	}
}

func applyPatchReceivable(ar *AccountReceivable, patch DuePatch) {
	if patch.Description != nil {
		ar.Description = *patch.Description
	}
	if patch.Amount != nil {
		ar.Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		ar.DueDate = patch.DueDate.Format("2006-01-02")
	}
	if patch.Status != nil {
		ar.Status = strings.ToLower(string(*patch.Status))
	}
	if patch.PaymentDate != nil {
		ar.PaymentDate = patch.PaymentDate.Format("2006-01-02")
	}
	if patch.PaymentAmount != nil {
		ar.PaymentAmount = patch.PaymentAmount
	}
	if patch.PaymentMethod != nil {
		ar.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Observations != nil {
		ar.Observations = *patch.Observations
	}
}

func (s *dueService) AddAttachment(ctx context.Context, id string, att Attachment) error {
	due, err := s.findDue(ctx, id)
	if err != nil {
		return err
	}

	switch due.Source {
	case SourceAccountPayable:
		ap, err := s.loadPayable(ctx, due.SourceID)
		if err != nil {
			return err
		}
		ap.Attachments = append(ap.Attachments, att)
		if err := s.store.Update(ctx, CollectionAccountsPayable, ap.ID, ap); err != nil {
			return fmt.Errorf("persist attachment on %s: %w", id, err)
		}
		return nil
	case SourceAccountReceivable:
		ar, err := s.loadReceivable(ctx, due.SourceID)
		if err != nil {
			return err
		}
		ar.Attachments = append(ar.Attachments, att)
		if err := s.store.Update(ctx, CollectionAccountsReceivable, ar.ID, ar); err != nil {
			return fmt.Errorf("persist attachment on %s: %w", id, err)
		}
		return nil
	default:
		return fmt.Errorf("due %s is a synthesized recurring instance and cannot hold attachments", id)
	}
}

func (s *dueService) loadPayable(ctx context.Context, sourceID string) (*AccountPayable, error) {
	doc, err := s.store.Get(ctx, CollectionAccountsPayable, sourceID)
	if err != nil {
		return nil, fmt.Errorf("payable %s: %w", sourceID, err)
	}
	var ap AccountPayable
	if err := doc.Decode(&ap); err != nil {
		return nil, fmt.Errorf("decode payable %s: %w", sourceID, err)
	}
	return &ap, nil
}

func (s *dueService) loadReceivable(ctx context.Context, sourceID string) (*AccountReceivable, error) {
	doc, err := s.store.Get(ctx, CollectionAccountsReceivable, sourceID)
	if err != nil {
		return nil, fmt.Errorf("receivable %s: %w", sourceID, err)
	}
	var ar AccountReceivable
	if err := doc.Decode(&ar); err != nil {
		return nil, fmt.Errorf("decode receivable %s: %w", sourceID, err)
	}
	return &ar, nil
}
