package ledger

import (
	"cmp"
	"slices"
)

// StatementLine is one movement in a client statement.
type StatementLine struct {
	EntryID string    `json:"entry_id"`
	Number  string    `json:"number"`
	Date    Date      `json:"date"`
	Concept string    `json:"concept"`
	Type    EntryType `json:"type"`
	Charge  Amount    `json:"charge"`
	Payment Amount    `json:"payment"`
	Balance Amount    `json:"balance"`
}

type Statement struct {
	ClientID       string          `json:"client_id"`
	From           Date            `json:"from"`
	To             Date            `json:"to"`
	OpeningBalance Amount          `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	ClosingBalance Amount          `json:"closing_balance"`
}

// SortEntries orders entries chronologically. Same-day entries fall back
// to folio number, then creation time, then id, so the order is total.
func SortEntries(entries []JournalEntry) {
	slices.SortStableFunc(entries, func(a, b JournalEntry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Number, b.Number); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// statementSign is +1 for entries that add to what the client owes, -1
// for entries that reduce it, 0 for entries that do not belong.
func statementSign(e *JournalEntry) int {
	switch e.Type {
	case EntryIncome:
		return 1
	case EntryExpense:
		return -1
	default:
		return 0
	}
}

// BuildStatement folds the client's posted Income and Expense entries into
// an opening balance (everything strictly before from) and a running
// balance through [from, to].
func BuildStatement(clientID string, entries []JournalEntry, from, to Date) Statement {
	relevant := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.ClientID != clientID || !e.Posted() || statementSign(&e) == 0 {
			continue
		}
		relevant = append(relevant, e)
	}
	SortEntries(relevant)

	st := Statement{ClientID: clientID, From: from, To: to, Lines: []StatementLine{}}
	running := Amount(0)
	for i := range relevant {
		e := &relevant[i]
		amt := e.Amount()
		signed := amt
		if statementSign(e) < 0 {
			signed = -amt
		}

		if !from.IsZero() && e.Date.Before(from) {
			st.OpeningBalance += signed
			running += signed
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}

		running += signed
		line := StatementLine{
			EntryID: e.ID,
			Number:  e.Number,
			Date:    e.Date,
			Concept: e.Concept,
			Type:    e.Type,
			Balance: running,
		}
		if signed >= 0 {
			line.Charge = amt
		} else {
			line.Payment = amt
		}
		st.Lines = append(st.Lines, line)
	}
	st.ClosingBalance = running
	return st
}
