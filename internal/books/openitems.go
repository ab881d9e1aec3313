package books

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// CreatePayable records a supplier bill. Without an explicit due date the
// supplier's credit days (or the default) are added to the issue date.
func (s *Service) CreatePayable(ctx context.Context, item *ledger.OpenItem) (*ledger.OpenItem, error) {
	item.Kind = ledger.Payable
	item.PaidAmount = 0
	item.Cancelled = false
	item.Payments = []ledger.Payment{}
	if item.IssueDate.IsZero() {
		item.IssueDate = s.Today()
	}

	supplier, err := s.repo.GetClient(ctx, item.PartyID)
	switch {
	case item.PartyID == "":
		return nil, ledger.FieldError{Field: "party_id", Err: ledger.ErrMissingField}
	case errors.Is(err, ledger.ErrClientNotFound):
		return nil, ledger.FieldError{Field: "party_id", Err: ledger.ErrClientNotFound, Detail: item.PartyID}
	case err != nil:
		return nil, err
	}
	if item.DueDate.IsZero() {
		item.DueDate = ledger.DueDateFor(item.IssueDate, supplier.CreditDays, s.cfg.Books.DefaultCreditDays)
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.ID = newID()
	item.CreatedAt = s.now().UTC()
	item.Refresh(s.Today())
	if err := s.repo.CreateOpenItem(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info("payable created",
		zap.String("id", item.ID),
		zap.String("supplier_id", item.PartyID),
		zap.Stringer("amount", item.TotalAmount),
	)
	return item, nil
}

// GetOpenItem returns an item with its status derived for today.
func (s *Service) GetOpenItem(ctx context.Context, kind ledger.ItemKind, id string) (*ledger.OpenItem, error) {
	item, err := s.repo.GetOpenItem(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	item.Refresh(s.Today())
	return item, nil
}

func (s *Service) ListOpenItems(ctx context.Context, f ledger.ItemFilter) ([]ledger.OpenItem, error) {
	items, err := s.repo.ListOpenItems(ctx, f)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	for i := range items {
		items[i].Refresh(today)
	}
	return items, nil
}

// PaymentRequest is a payment against a receivable or payable.
type PaymentRequest struct {
	Amount         ledger.Amount `json:"amount"`
	Date           ledger.Date   `json:"date"`
	Notes          string        `json:"notes,omitempty"`
	IdempotencyKey string        `json:"-"`
}

// PaymentResult is the item after the payment and the amount applied.
// Replayed is set when the idempotency key had already been used and
// nothing new was applied.
type PaymentResult struct {
	Item     *ledger.OpenItem `json:"item"`
	Payment  ledger.Payment   `json:"payment"`
	Applied  ledger.Amount    `json:"applied"`
	Replayed bool             `json:"replayed"`
}

// RecordPayment applies a payment. Only the outstanding balance is
// applied; receivable payments also lower the client's balance. A repeated
// idempotency key returns the original payment without applying again.
func (s *Service) RecordPayment(ctx context.Context, kind ledger.ItemKind, id string, req PaymentRequest) (PaymentResult, error) {
	if !kind.Valid() {
		return PaymentResult{}, ledger.FieldError{Field: "kind", Err: ledger.ErrInvalidField, Detail: string(kind)}
	}
	today := s.Today()
	if req.Date.IsZero() {
		req.Date = today
	}

	var res PaymentResult
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		if req.IdempotencyKey != "" {
			itemID, prior, err := r.PaymentByKey(ctx, req.IdempotencyKey)
			switch {
			case err == nil && itemID != id:
				return ledger.FieldError{Field: "idempotency_key", Err: ledger.ErrIdempotencyKeyReused, Detail: req.IdempotencyKey}
			case err == nil:
				item, err := r.GetOpenItem(ctx, kind, id)
				if err != nil {
					return err
				}
				item.Refresh(today)
				res = PaymentResult{Item: item, Payment: *prior, Applied: prior.Amount, Replayed: true}
				return nil
			case !errors.Is(err, ledger.ErrOpenItemNotFound):
				return err
			}
		}

		item, err := r.GetOpenItem(ctx, kind, id)
		if err != nil {
			return err
		}
		item.Refresh(today)

		p := ledger.Payment{
			ID:             newID(),
			Date:           req.Date,
			Amount:         req.Amount,
			Notes:          req.Notes,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      s.now().UTC(),
		}
		applied, err := item.ApplyPayment(p, today)
		if err != nil {
			return err
		}
		p.Amount = applied

		if err := r.AddPayment(ctx, item.ID, &p); err != nil {
			return err
		}
		if err := r.UpdateOpenItem(ctx, item); err != nil {
			return err
		}
		if kind == ledger.Receivable {
			if err := r.AdjustClientBalance(ctx, item.PartyID, -applied); err != nil {
				return err
			}
		}
		res = PaymentResult{Item: item, Payment: p, Applied: applied}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	if !res.Replayed {
		s.log.Info("payment recorded",
			zap.String("kind", string(kind)),
			zap.String("item_id", id),
			zap.Stringer("applied", res.Applied),
			zap.Stringer("requested", req.Amount),
		)
	}
	return res, nil
}

// MarkAsPaid settles an item in full without a payment record. Marking
// a paid item again changes nothing.
func (s *Service) MarkAsPaid(ctx context.Context, kind ledger.ItemKind, id string) (*ledger.OpenItem, error) {
	if !kind.Valid() {
		return nil, ledger.FieldError{Field: "kind", Err: ledger.ErrInvalidField, Detail: string(kind)}
	}
	today := s.Today()

	var item *ledger.OpenItem
	var settled ledger.Amount
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		var err error
		item, err = r.GetOpenItem(ctx, kind, id)
		if err != nil {
			return err
		}
		item.Refresh(today)
		settled, err = item.MarkAsPaid(today)
		if err != nil || settled == 0 {
			return err
		}
		if err := r.UpdateOpenItem(ctx, item); err != nil {
			return err
		}
		if kind == ledger.Receivable {
			return r.AdjustClientBalance(ctx, item.PartyID, -settled)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settled > 0 {
		s.log.Info("item marked paid",
			zap.String("kind", string(kind)),
			zap.String("item_id", id),
			zap.Stringer("settled", settled),
		)
	}
	return item, nil
}

// AgingReport buckets the matching items by due date relative to today,
// using the due-soon window configured for the item kind.
func (s *Service) AgingReport(ctx context.Context, f ledger.AgingFilter) (ledger.AgingReport, error) {
	if f.Kind == "" {
		f.Kind = ledger.Receivable
	}
	if !f.Kind.Valid() {
		return ledger.AgingReport{}, ledger.FieldError{Field: "type", Err: ledger.ErrInvalidField, Detail: string(f.Kind)}
	}
	items, err := s.repo.ListOpenItems(ctx, ledger.ItemFilter{Kind: f.Kind, PartyID: f.PartyID, From: f.From, To: f.To})
	if err != nil {
		return ledger.AgingReport{}, err
	}
	threshold := s.cfg.Aging.ReceivableDueSoonDays
	if f.Kind == ledger.Payable {
		threshold = s.cfg.Aging.PayableDueSoonDays
	}
	return ledger.BuildAgingReport(items, f, s.Today(), threshold), nil
}
