package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// CommitEntry validates and stores a journal entry. An empty number gets
// the next folio for the entry type. Entries committed as Reviewed post
// their lines to account balances in the same unit of work.
func (s *Service) CommitEntry(ctx context.Context, e *ledger.JournalEntry) (*ledger.JournalEntry, error) {
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		return s.commitEntry(ctx, r, e)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("journal entry committed",
		zap.String("id", e.ID),
		zap.String("number", e.Number),
		zap.String("status", string(e.Status)),
		zap.Stringer("amount", e.Amount()),
	)
	return e, nil
}

func (s *Service) commitEntry(ctx context.Context, r ledger.Repository, e *ledger.JournalEntry) error {
	e.ApplyDefaults()
	e.Reconciliation = ledger.Unreconciled
	e.BankTransactionID = ""

	idx, err := loadAccounts(ctx, r)
	if err != nil {
		return err
	}

	var verrs ledger.ValidationErrors
	if err := e.Validate(idx.lookup); err != nil {
		verrs = append(verrs, ledger.Fields(err)...)
	}
	if e.ClientID != "" {
		if _, err := r.GetClient(ctx, e.ClientID); errors.Is(err, ledger.ErrClientNotFound) {
			verrs.Add("client_id", ledger.ErrClientNotFound, "%s", e.ClientID)
		} else if err != nil {
			return err
		}
	}
	if err := verrs.Err(); err != nil {
		return err
	}

	if e.Number == "" {
		prefix := ledger.NumberPrefix(e.Type)
		existing, err := r.EntryNumbers(ctx, prefix)
		if err != nil {
			return err
		}
		e.Number = ledger.NextNumber(prefix, existing)
	} else {
		taken, err := r.EntryNumberTaken(ctx, e.Number)
		if err != nil {
			return err
		}
		if taken {
			return ledger.FieldError{Field: "number", Err: ledger.ErrDuplicateEntryNumber, Detail: e.Number}
		}
	}

	e.ID = newID()
	e.CreatedAt = s.now().UTC()
	for i := range e.Lines {
		e.Lines[i].ID = 0
	}
	if err := r.CreateEntry(ctx, e); err != nil {
		return err
	}
	if e.Posted() {
		return postLines(ctx, r, idx, e.Lines, 1)
	}
	return nil
}

// ReviewEntry moves a draft to Reviewed and posts its lines.
func (s *Service) ReviewEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var entry *ledger.JournalEntry
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		e, err := r.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := ledger.CanTransition(e.Status, ledger.EntryReviewed); err != nil {
			return err
		}
		idx, err := loadAccounts(ctx, r)
		if err != nil {
			return err
		}
		// Accounts may have been deactivated since the draft was saved
		if err := e.Validate(idx.lookup); err != nil {
			return err
		}
		if err := r.UpdateEntryStatus(ctx, id, ledger.EntryReviewed, true); err != nil {
			return err
		}
		if err := postLines(ctx, r, idx, e.Lines, 1); err != nil {
			return err
		}
		e.Status = ledger.EntryReviewed
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("journal entry reviewed", zap.String("id", id), zap.String("number", entry.Number))
	return entry, nil
}

// VoidEntry voids an entry. Voided is terminal. A reviewed entry's
// balances are reversed when books.void_reverses_balances is set.
func (s *Service) VoidEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var entry *ledger.JournalEntry
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		e, err := s.voidEntry(ctx, r, id)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("journal entry voided", zap.String("id", id), zap.String("number", entry.Number))
	return entry, nil
}

func (s *Service) voidEntry(ctx context.Context, r ledger.Repository, id string) (*ledger.JournalEntry, error) {
	e, err := r.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ledger.CanTransition(e.Status, ledger.EntryVoided); err != nil {
		return nil, err
	}

	wasPosted := e.Posted()
	reverse := wasPosted && s.cfg.Books.VoidReversesBalances
	if err := r.UpdateEntryStatus(ctx, id, ledger.EntryVoided, wasPosted && !reverse); err != nil {
		return nil, err
	}
	if reverse {
		idx, err := loadAccounts(ctx, r)
		if err != nil {
			return nil, err
		}
		if err := postLines(ctx, r, idx, e.Lines, -1); err != nil {
			return nil, err
		}
	}
	e.Status = ledger.EntryVoided
	return e, nil
}

// SetEntryStatus applies a status change requested by name.
func (s *Service) SetEntryStatus(ctx context.Context, id string, status ledger.EntryStatus) (*ledger.JournalEntry, error) {
	switch status {
	case ledger.EntryReviewed:
		return s.ReviewEntry(ctx, id)
	case ledger.EntryVoided:
		return s.VoidEntry(ctx, id)
	default:
		return nil, ledger.FieldError{Field: "status", Err: ledger.ErrInvalidField, Detail: "must be Reviewed or Voided"}
	}
}

func (s *Service) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.JournalEntry, error) {
	return s.repo.ListEntries(ctx, f)
}

// TemplateEntry describes a journal entry built from a predefined template.
type TemplateEntry struct {
	Template  string             `json:"template"`
	Amount    ledger.Amount      `json:"amount"`
	Date      ledger.Date        `json:"date"`
	Concept   string             `json:"concept"`
	Reference string             `json:"reference,omitempty"`
	ClientID  string             `json:"client_id,omitempty"`
	Status    ledger.EntryStatus `json:"status,omitempty"`

	// Accounts replaces a template's suggested chart code with another
	// account code.
	Accounts map[string]string `json:"accounts,omitempty"`
}

// CommitTemplate expands a template into a balanced entry and commits it.
func (s *Service) CommitTemplate(ctx context.Context, req TemplateEntry) (*ledger.JournalEntry, error) {
	tmpl, ok := ledger.LookupTemplate(req.Template)
	if !ok {
		return nil, ledger.FieldError{Field: "template", Err: ledger.ErrInvalidField, Detail: fmt.Sprintf("unknown template %q", req.Template)}
	}
	idx, err := loadAccounts(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	lines, err := tmpl.Build(req.Amount, func(code string) (string, bool) {
		if override, ok := req.Accounts[code]; ok {
			code = override
		}
		return idx.byCode(code)
	})
	if err != nil {
		return nil, err
	}

	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		concept = tmpl.Description
	}
	if req.Date.IsZero() {
		req.Date = s.Today()
	}
	return s.CommitEntry(ctx, &ledger.JournalEntry{
		Date:      req.Date,
		Concept:   concept,
		Type:      tmpl.Type,
		Status:    req.Status,
		Reference: req.Reference,
		ClientID:  req.ClientID,
		Lines:     lines,
	})
}

func loadAccounts(ctx context.Context, r ledger.AccountRepository) (accountIndex, error) {
	accounts, err := r.ListAccounts(ctx, ledger.AccountFilter{})
	if err != nil {
		return nil, err
	}
	idx := make(accountIndex, len(accounts))
	for i := range accounts {
		idx[accounts[i].ID] = &accounts[i]
	}
	return idx, nil
}

// postLines applies each line to its account's balance by nature. sign -1
// posts the compensating deltas.
func postLines(ctx context.Context, r ledger.AccountRepository, idx accountIndex, lines []ledger.JournalEntryLine, sign ledger.Amount) error {
	for _, l := range lines {
		acct, ok := idx.lookup(l.AccountID)
		if !ok {
			return ledger.FieldError{Field: "account_id", Err: ledger.ErrUnknownAccount, Detail: l.AccountID}
		}
		delta := ledger.BalanceDelta(acct.Nature, l.Debit, l.Credit) * sign
		if err := r.PostBalance(ctx, acct.ID, delta); err != nil {
			return fmt.Errorf("post %s: %w", acct.Code, err)
		}
	}
	return nil
}
