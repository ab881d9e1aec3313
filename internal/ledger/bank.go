package ledger

import (
	"strings"
	"time"
)

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// BankTransaction is one line of a bank statement. Amount is always
// positive; Direction says which way the money moved.
type BankTransaction struct {
	ID             string               `json:"id"`
	Date           Date                 `json:"date"`
	Description    string               `json:"description"`
	Amount         Amount               `json:"amount"`
	Direction      Direction            `json:"direction"`
	Status         ReconciliationStatus `json:"status"`
	JournalEntryID string               `json:"journal_entry_id,omitempty"`
	Reference      string               `json:"reference,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

func (t *BankTransaction) ApplyDefaults() {
	t.Description = strings.TrimSpace(t.Description)
	t.Direction = Direction(strings.ToLower(string(t.Direction)))
	if t.Direction == "" {
		t.Direction = DirectionCredit
	}
	if t.Status == "" {
		t.Status = Unreconciled
	}
}

func (t *BankTransaction) Validate() error {
	var verrs ValidationErrors
	if t.Date.IsZero() {
		verrs.Add("date", ErrMissingField, "")
	}
	if !t.Amount.IsPositive() {
		verrs.Add("amount", ErrInvalidAmount, "must be positive")
	}
	if t.Direction != DirectionDebit && t.Direction != DirectionCredit {
		verrs.Add("direction", ErrInvalidField, "must be debit or credit, got %q", t.Direction)
	}
	return verrs.Err()
}

// MatchResult is the outcome of pairing a bank movement with an entry.
type MatchResult struct {
	Status            ReconciliationStatus `json:"status"`
	TransactionID     string               `json:"transaction_id"`
	JournalEntryID    string               `json:"journal_entry_id"`
	TransactionAmount Amount               `json:"transaction_amount"`
	EntryAmount       Amount               `json:"entry_amount"`
	Difference        Amount               `json:"difference"`
}

// CheckMatchable reports whether txn and entry may be paired at all.
func CheckMatchable(txn *BankTransaction, entry *JournalEntry) error {
	if txn.Status == Reconciled {
		return ErrAlreadyReconciled
	}
	// Income entries record money coming in; an outgoing movement cannot
	// settle one.
	if txn.Direction == DirectionDebit {
		return FieldError{Field: "transaction_id", Err: ErrOutgoingMovement, Detail: txn.ID}
	}
	if entry.Status == EntryVoided {
		return ErrEntryVoided
	}
	if entry.Type != EntryIncome {
		return FieldError{Field: "journal_entry_id", Err: ErrNotIncomeEntry, Detail: string(entry.Type)}
	}
	if entry.Reconciliation == Reconciled {
		return ErrAlreadyReconciled
	}
	return nil
}

// Match pairs txn with entry on exact amount equality against the entry's
// credit total. On a match both sides become Reconciled and point at each
// other; otherwise both are flagged Mismatch and left unlinked.
func Match(txn *BankTransaction, entry *JournalEntry) (MatchResult, error) {
	if err := CheckMatchable(txn, entry); err != nil {
		return MatchResult{}, err
	}

	entryAmount := entry.CreditTotal()
	res := MatchResult{
		TransactionID:     txn.ID,
		JournalEntryID:    entry.ID,
		TransactionAmount: txn.Amount,
		EntryAmount:       entryAmount,
		Difference:        txn.Amount - entryAmount,
	}

	if txn.Amount == entryAmount {
		txn.Status = Reconciled
		txn.JournalEntryID = entry.ID
		entry.Reconciliation = Reconciled
		entry.BankTransactionID = txn.ID
		res.Status = Reconciled
		return res, nil
	}

	txn.Status = Mismatch
	txn.JournalEntryID = ""
	entry.Reconciliation = Mismatch
	entry.BankTransactionID = ""
	res.Status = Mismatch
	return res, nil
}
