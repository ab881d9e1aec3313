package books

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/ledger"
)

// AddBankTransaction records one bank movement as Unreconciled.
func (s *Service) AddBankTransaction(ctx context.Context, txn *ledger.BankTransaction) (*ledger.BankTransaction, error) {
	txn.ApplyDefaults()
	txn.Status = ledger.Unreconciled
	txn.JournalEntryID = ""
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	txn.ID = newID()
	txn.CreatedAt = s.now().UTC()
	if err := s.repo.CreateBankTransaction(ctx, txn); err != nil {
		return nil, err
	}
	s.log.Info("bank transaction added", zap.String("id", txn.ID), zap.Stringer("amount", txn.Amount))
	return txn, nil
}

func (s *Service) GetBankTransaction(ctx context.Context, id string) (*ledger.BankTransaction, error) {
	return s.repo.GetBankTransaction(ctx, id)
}

func (s *Service) ListBankTransactions(ctx context.Context, f ledger.BankFilter) ([]ledger.BankTransaction, error) {
	return s.repo.ListBankTransactions(ctx, f)
}

// Match pairs a bank movement with an income entry on exact amount. Both
// sides are stored with the outcome, Reconciled or Mismatch.
func (s *Service) Match(ctx context.Context, txnID, entryID string) (ledger.MatchResult, error) {
	var res ledger.MatchResult
	err := s.repo.Atomic(ctx, func(r ledger.Repository) error {
		txn, err := r.GetBankTransaction(ctx, txnID)
		if err != nil {
			return err
		}
		entry, err := r.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		res, err = ledger.Match(txn, entry)
		if err != nil {
			return err
		}
		if err := r.UpdateBankTransaction(ctx, txn); err != nil {
			return err
		}
		return r.UpdateEntryReconciliation(ctx, entry.ID, entry.Reconciliation, entry.BankTransactionID)
	})
	if err != nil {
		return ledger.MatchResult{}, err
	}
	s.log.Info("bank transaction matched",
		zap.String("transaction_id", txnID),
		zap.String("journal_entry_id", entryID),
		zap.String("status", string(res.Status)),
		zap.Stringer("difference", res.Difference),
	)
	return res, nil
}

// Candidates lists the income entries that would reconcile with the
// transaction: not voided, not yet reconciled, credits equal to its amount.
func (s *Service) Candidates(ctx context.Context, txnID string) ([]ledger.JournalEntry, error) {
	txn, err := s.repo.GetBankTransaction(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn.Status == ledger.Reconciled {
		return nil, ledger.ErrAlreadyReconciled
	}
	entries, err := s.repo.ListEntries(ctx, ledger.EntryFilter{Type: ledger.EntryIncome})
	if err != nil {
		return nil, err
	}
	out := make([]ledger.JournalEntry, 0)
	for i := range entries {
		e := &entries[i]
		if ledger.CheckMatchable(txn, e) != nil || e.CreditTotal() != txn.Amount {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// ImportResult summarizes a statement import.
type ImportResult struct {
	Format       string                   `json:"format"`
	Imported     int                      `json:"imported"`
	Skipped      int                      `json:"skipped"`
	Transactions []ledger.BankTransaction `json:"transactions"`
}

// ImportBankCSV parses a bank statement and records its movements. Rows
// whose reference was already imported are skipped, so importing the same
// file twice is harmless.
func (s *Service) ImportBankCSV(ctx context.Context, format string, src io.Reader) (ImportResult, error) {
	p := s.parsers.Get(format)
	if p == nil {
		return ImportResult{}, ledger.FieldError{
			Field:  "format",
			Err:    ledger.ErrInvalidField,
			Detail: fmt.Sprintf("unknown format %q, want one of %s", format, strings.Join(s.parsers.Formats(), ", ")),
		}
	}
	parsed, err := p.Parse(src)
	if err != nil {
		return ImportResult{}, ledger.FieldError{Field: "file", Err: ledger.ErrInvalidField, Detail: err.Error()}
	}

	res := ImportResult{Format: p.Format(), Transactions: []ledger.BankTransaction{}}
	err = s.repo.Atomic(ctx, func(r ledger.Repository) error {
		for i := range parsed {
			txn := parsed[i]
			txn.ApplyDefaults()
			if err := txn.Validate(); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			if txn.Reference != "" {
				exists, err := r.BankReferenceExists(ctx, txn.Reference)
				if err != nil {
					return err
				}
				if exists {
					res.Skipped++
					continue
				}
			}
			txn.ID = newID()
			txn.Status = ledger.Unreconciled
			txn.CreatedAt = s.now().UTC()
			if err := r.CreateBankTransaction(ctx, &txn); err != nil {
				return err
			}
			res.Transactions = append(res.Transactions, txn)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	res.Imported = len(res.Transactions)
	s.log.Info("bank statement imported",
		zap.String("format", res.Format),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
