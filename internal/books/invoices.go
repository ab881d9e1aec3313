package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// CreateInvoice issues an invoice. The invoice, a reviewed income entry
// (debit receivables, credit sales) and the receivable it opens are
// created together or not at all.
func (s *Service) CreateInvoice(ctx context.Context, inv *ledger.Invoice) (*ledger.Invoice, error) {
	inv.ApplyDefaults()
	if inv.Date.IsZero() {
		inv.Date = s.Today()
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if inv.ID == "" {
		inv.ID = strings.ToUpper(uuid.NewString())
	}
	inv.SATStatus = ledger.SATValid

	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		if _, err := r.GetInvoice(ctx, inv.ID); err == nil {
			return ledger.FieldError{Field: "id", Err: ledger.ErrDuplicateInvoice, Detail: inv.ID}
		} else if !errors.Is(err, ledger.ErrInvoiceNotFound) {
			return err
		}

		client, err := r.GetClient(ctx, inv.ClientID)
		if errors.Is(err, ledger.ErrClientNotFound) {
			return ledger.FieldError{Field: "client_id", Err: ledger.ErrClientNotFound, Detail: inv.ClientID}
		}
		if err != nil {
			return err
		}

		receivableAcct, err := s.receivableAccount(ctx, r, client)
		if err != nil {
			return err
		}
		salesAcct, err := r.GetAccountByCode(ctx, s.cfg.Books.SalesAccountCode)
		if err != nil {
			return fmt.Errorf("sales account %s: %w", s.cfg.Books.SalesAccountCode, err)
		}

		entry := &ledger.JournalEntry{
			Date:      inv.Date,
			Concept:   "Factura " + inv.ID + " " + client.Name,
			Type:      ledger.EntryIncome,
			Status:    ledger.EntryReviewed,
			Reference: inv.ID,
			ClientID:  client.ID,
			InvoiceID: inv.ID,
			Lines: []ledger.JournalEntryLine{
				{AccountID: receivableAcct, Description: "Clientes", Debit: inv.Amount},
				{AccountID: salesAcct.ID, Description: "Ventas", Credit: inv.Amount},
			},
		}
		if err := s.commitEntry(ctx, r, entry); err != nil {
			return err
		}

		today := s.Today()
		item := &ledger.OpenItem{
			ID:          newID(),
			Kind:        ledger.Receivable,
			PartyID:     client.ID,
			InvoiceID:   inv.ID,
			Reference:   inv.ID,
			IssueDate:   inv.Date,
			DueDate:     ledger.DueDateFor(inv.Date, client.CreditDays, s.cfg.Books.DefaultCreditDays),
			TotalAmount: inv.Amount,
			Payments:    []ledger.Payment{},
			CreatedAt:   s.now().UTC(),
		}
		item.Refresh(today)
		if err := item.Validate(); err != nil {
			return err
		}
		if err := r.CreateOpenItem(ctx, item); err != nil {
			return err
		}
		if err := r.AdjustClientBalance(ctx, client.ID, inv.Amount); err != nil {
			return err
		}

		inv.JournalEntryID = entry.ID
		inv.ReceivableID = item.ID
		inv.CreatedAt = s.now().UTC()
		return r.CreateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice issued",
		zap.String("id", inv.ID),
		zap.String("client_id", inv.ClientID),
		zap.Stringer("amount", inv.Amount),
		zap.String("journal_entry_id", inv.JournalEntryID),
		zap.String("receivable_id", inv.ReceivableID),
	)
	return inv, nil
}

// receivableAccount is the client's associated account, or the configured
// receivables account when the client has none.
func (s *Service) receivableAccount(ctx context.Context, r ledger.Repository, client *ledger.Client) (string, error) {
	if client.AssociatedAccountID != "" {
		return client.AssociatedAccountID, nil
	}
	acct, err := r.GetAccountByCode(ctx, s.cfg.Books.ReceivableAccountCode)
	if err != nil {
		return "", fmt.Errorf("receivable account %s: %w", s.cfg.Books.ReceivableAccountCode, err)
	}
	return acct.ID, nil
}

// CancelInvoice cancels an unpaid invoice: the receivable is cancelled and
// leaves the client's balance, and the income entry is voided.
func (s *Service) CancelInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	id = normalizeFolio(id)
	var inv *ledger.Invoice
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		var err error
		inv, err = r.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if inv.SATStatus == ledger.SATCancelled {
			return ledger.ErrInvoiceCancelled
		}

		if inv.ReceivableID != "" {
			item, err := r.GetOpenItem(ctx, ledger.Receivable, inv.ReceivableID)
			if err != nil {
				return err
			}
			if item.PaidAmount > 0 || len(item.Payments) > 0 {
				return ledger.ErrInvoiceHasPayments
			}
			outstanding := item.TotalAmount - item.PaidAmount
			item.Cancelled = true
			item.Refresh(s.Today())
			if err := r.UpdateOpenItem(ctx, item); err != nil {
				return err
			}
			if err := r.AdjustClientBalance(ctx, item.PartyID, -outstanding); err != nil {
				return err
			}
		}

		if inv.JournalEntryID != "" {
			entry, err := r.GetEntry(ctx, inv.JournalEntryID)
			if err != nil {
				return err
			}
			if entry.Status != ledger.EntryVoided {
				if _, err := s.voidEntry(ctx, r, entry.ID); err != nil {
					return err
				}
			}
		}

		inv.SATStatus = ledger.SATCancelled
		return r.UpdateInvoiceStatus(ctx, inv.ID, ledger.SATCancelled)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("invoice cancelled", zap.String("id", inv.ID))
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	return s.repo.GetInvoice(ctx, normalizeFolio(id))
}

func normalizeFolio(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (s *Service) ListInvoices(ctx context.Context, f ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	return s.repo.ListInvoices(ctx, f)
}
