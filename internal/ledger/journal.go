package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type EntryType string

const (
	EntryIncome  EntryType = "Income"
	EntryExpense EntryType = "Expense"
	EntryDiary   EntryType = "Diary"
)

type EntryStatus string

const (
	EntryDraft    EntryStatus = "Draft"
	EntryReviewed EntryStatus = "Reviewed"
	EntryVoided   EntryStatus = "Voided"
)

// ReconciliationStatus tracks whether an income entry has been paired
// with a bank movement.
type ReconciliationStatus string

const (
	Unreconciled ReconciliationStatus = "Unreconciled"
	Reconciled   ReconciliationStatus = "Reconciled"
	Mismatch     ReconciliationStatus = "Mismatch"
)

type JournalEntryLine struct {
	ID          int64  `json:"id,omitempty"`
	AccountID   string `json:"account_id"`
	Description string `json:"description,omitempty"`
	Debit       Amount `json:"debit"`
	Credit      Amount `json:"credit"`
}

type JournalEntry struct {
	ID                string               `json:"id"`
	Number            string               `json:"number"`
	Date              Date                 `json:"date"`
	Concept           string               `json:"concept"`
	Type              EntryType            `json:"type"`
	Status            EntryStatus          `json:"status"`
	Reference         string               `json:"reference,omitempty"`
	ClientID          string               `json:"client_id,omitempty"`
	InvoiceID         string               `json:"invoice_id,omitempty"`
	Lines             []JournalEntryLine   `json:"lines"`
	Reconciliation    ReconciliationStatus `json:"reconciliation"`
	BankTransactionID string               `json:"bank_transaction_id,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// NumberPrefix returns the folio prefix for an entry type.
func NumberPrefix(t EntryType) string {
	switch t {
	case EntryIncome:
		return "I-"
	case EntryExpense:
		return "E-"
	default:
		return "D-"
	}
}

// NextNumber returns the next folio for prefix given the numbers already in
// use: the highest numeric suffix plus one, zero padded to three digits.
// Numbers whose suffix is not numeric are ignored.
func NextNumber(prefix string, existing []string) string {
	maxSeq := 0
	for _, n := range existing {
		suffix, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}

// Totals returns the sum of debits and the sum of credits.
func (e *JournalEntry) Totals() (debit, credit Amount) {
	for _, l := range e.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// boundedTotals sums the non-negative line amounts, reporting false once
// either side would pass MaxAmount. Negative lines are rejected elsewhere.
func (e *JournalEntry) boundedTotals() (debit, credit Amount, ok bool) {
	add := func(sum *Amount, v Amount) bool {
		if v <= 0 {
			return true
		}
		if v > MaxAmount || *sum > MaxAmount-v {
			return false
		}
		*sum += v
		return true
	}
	for _, l := range e.Lines {
		if !add(&debit, l.Debit) || !add(&credit, l.Credit) {
			return debit, credit, false
		}
	}
	return debit, credit, true
}

// Amount is the entry's face value: the debit total. For a balanced entry
// it equals the credit total.
func (e *JournalEntry) Amount() Amount {
	d, _ := e.Totals()
	return d
}

// CreditTotal is the amount the reconciliation matcher compares against.
func (e *JournalEntry) CreditTotal() Amount {
	_, c := e.Totals()
	return c
}

// Posted reports whether the entry counts toward balances and aggregations.
func (e *JournalEntry) Posted() bool {
	return e.Status == EntryReviewed
}

// ApplyDefaults fills in the values a draft may leave out.
func (e *JournalEntry) ApplyDefaults() {
	e.Number = strings.TrimSpace(e.Number)
	if e.Status == "" {
		e.Status = EntryDraft
	}
	if e.Reconciliation == "" {
		e.Reconciliation = Unreconciled
	}
}

// AccountLookup resolves account ids while validating lines.
type AccountLookup func(id string) (*Account, bool)

// Validate checks every entry invariant. All violations are reported
// together. lookup may be nil to skip account checks.
func (e *JournalEntry) Validate(lookup AccountLookup) error {
	var verrs ValidationErrors

	if e.Date.IsZero() {
		verrs.Add("date", ErrMissingField, "")
	}
	if strings.TrimSpace(e.Concept) == "" {
		verrs.Add("concept", ErrMissingField, "")
	}
	switch e.Type {
	case EntryIncome, EntryExpense, EntryDiary:
	default:
		verrs.Add("type", ErrInvalidField, "unknown entry type %q", e.Type)
	}
	switch e.Status {
	case EntryDraft, EntryReviewed:
	default:
		verrs.Add("status", ErrInvalidField, "new entries must be Draft or Reviewed, got %q", e.Status)
	}

	if len(e.Lines) < 2 {
		verrs.Add("lines", ErrTooFewLines, "got %d", len(e.Lines))
	}

	for i, l := range e.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		hasDebit := l.Debit > 0
		hasCredit := l.Credit > 0
		switch {
		case l.Debit < 0 || l.Credit < 0:
			verrs.Add(field, ErrInvalidLine, "amounts cannot be negative")
		case hasDebit == hasCredit:
			verrs.Add(field, ErrInvalidLine, "debit %s, credit %s", l.Debit, l.Credit)
		case l.Debit > MaxAmount || l.Credit > MaxAmount:
			verrs.Add(field, ErrInvalidAmount, "exceeds %s", MaxAmount)
		}

		if lookup == nil {
			continue
		}
		if l.AccountID == "" {
			verrs.Add(field+".account_id", ErrMissingField, "")
			continue
		}
		acct, ok := lookup(l.AccountID)
		switch {
		case !ok:
			verrs.Add(field+".account_id", ErrUnknownAccount, "%s", l.AccountID)
		case acct.Status == AccountInactive:
			verrs.Add(field+".account_id", ErrInactiveAccount, "%s (%s)", acct.Code, acct.Name)
		}
	}

	debit, credit, ok := e.boundedTotals()
	switch {
	case !ok:
		verrs.Add("lines", ErrInvalidAmount, "entry total exceeds %s", MaxAmount)
	case len(e.Lines) >= 2 && debit != credit:
		verrs.Add("lines", ErrUnbalancedEntry, "debits %s != credits %s", debit, credit)
	}

	return verrs.Err()
}

// CanTransition reports whether an entry may move from one status to another.
// Voided is terminal; Draft may be reviewed or voided; Reviewed may only be voided.
func CanTransition(from, to EntryStatus) error {
	switch {
	case from == EntryVoided && to == EntryVoided:
		return ErrAlreadyVoided
	case from == EntryVoided:
		return fmt.Errorf("%w: entry is voided", ErrInvalidTransition)
	case from == EntryDraft && (to == EntryReviewed || to == EntryVoided):
		return nil
	case from == EntryReviewed && to == EntryVoided:
		return nil
	default:
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
}
