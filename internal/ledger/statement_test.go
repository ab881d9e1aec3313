package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientEntry(id, number, date string, typ EntryType, pesos int64) JournalEntry {
	return JournalEntry{
		ID:       id,
		Number:   number,
		Date:     MustParseDate(date),
		Concept:  number,
		Type:     typ,
		Status:   EntryReviewed,
		ClientID: "client-1",
		Lines:    []JournalEntryLine{debit("bank", pesos), credit("sales", pesos)},
	}
}

func TestBuildStatement(t *testing.T) {
	entries := []JournalEntry{
		clientEntry("6", "I-003", "2025-03-10", EntryIncome, 300),
		clientEntry("1", "I-001", "2025-01-05", EntryIncome, 1000),
		clientEntry("2", "E-001", "2025-01-20", EntryExpense, 400),
		clientEntry("3", "I-002", "2025-02-01", EntryIncome, 500),
		clientEntry("4", "E-002", "2025-02-15", EntryExpense, 200),
		clientEntry("5", "E-003", "2025-04-01", EntryExpense, 50),
	}
	draft := clientEntry("7", "I-004", "2025-02-10", EntryIncome, 999)
	draft.Status = EntryDraft
	voided := clientEntry("8", "I-005", "2025-02-11", EntryIncome, 999)
	voided.Status = EntryVoided
	other := clientEntry("9", "I-006", "2025-02-12", EntryIncome, 999)
	other.ClientID = "client-2"
	diary := clientEntry("10", "D-001", "2025-02-13", EntryDiary, 999)
	entries = append(entries, draft, voided, other, diary)

	st := BuildStatement("client-1", entries, MustParseDate("2025-02-01"), MustParseDate("2025-03-31"))

	assert.Equal(t, Pesos(600), st.OpeningBalance)
	require.Len(t, st.Lines, 3)
	assert.Equal(t, "I-002", st.Lines[0].Number)
	assert.Equal(t, Pesos(500), st.Lines[0].Charge)
	assert.Equal(t, Pesos(1100), st.Lines[0].Balance)
	assert.Equal(t, "E-002", st.Lines[1].Number)
	assert.Equal(t, Pesos(200), st.Lines[1].Payment)
	assert.Equal(t, Pesos(900), st.Lines[1].Balance)
	assert.Equal(t, "I-003", st.Lines[2].Number)
	assert.Equal(t, Pesos(1200), st.ClosingBalance)
}

func TestBuildStatement_OpenRange(t *testing.T) {
	entries := []JournalEntry{
		clientEntry("1", "I-001", "2025-01-05", EntryIncome, 1000),
		clientEntry("2", "E-001", "2025-01-20", EntryExpense, 1000),
	}
	st := BuildStatement("client-1", entries, Date{}, Date{})
	assert.Equal(t, Amount(0), st.OpeningBalance)
	assert.Len(t, st.Lines, 2)
	assert.Equal(t, Amount(0), st.ClosingBalance)

	empty := BuildStatement("nobody", entries, Date{}, Date{})
	assert.NotNil(t, empty.Lines)
	assert.Empty(t, empty.Lines)
}

func TestSortEntries_SameDayTieBreak(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := clientEntry("b", "E-001", "2025-01-05", EntryExpense, 1)
	b := clientEntry("a", "I-001", "2025-01-05", EntryIncome, 1)
	c := clientEntry("z", "I-001", "2025-01-05", EntryIncome, 1)
	c.CreatedAt = created.Add(-time.Hour)
	b.CreatedAt = created
	d := clientEntry("y", "I-001", "2025-01-05", EntryIncome, 1)
	d.CreatedAt = created
	e := clientEntry("x", "I-009", "2025-01-04", EntryIncome, 1)

	entries := []JournalEntry{b, a, d, c, e}
	SortEntries(entries)

	var ids []string
	for _, en := range entries {
		ids = append(ids, en.ID)
	}
	assert.Equal(t, []string{"x", "b", "z", "a", "y"}, ids)
}

func TestComputeExposure(t *testing.T) {
	client := &Client{ID: "client-1", CreditLimit: Pesos(1000)}
	items := []OpenItem{
		{Kind: Receivable, PartyID: "client-1", TotalAmount: Pesos(600), PaidAmount: Pesos(100)},
		{Kind: Receivable, PartyID: "client-1", TotalAmount: Pesos(700)},
		{Kind: Receivable, PartyID: "client-1", TotalAmount: Pesos(900), PaidAmount: Pesos(900)},
		{Kind: Receivable, PartyID: "client-1", TotalAmount: Pesos(900), Cancelled: true},
		{Kind: Receivable, PartyID: "client-2", TotalAmount: Pesos(900)},
		{Kind: Payable, PartyID: "client-1", TotalAmount: Pesos(900)},
	}

	ce := ComputeExposure(client, items)
	assert.Equal(t, Pesos(1200), ce.Exposure)
	assert.True(t, ce.Exceeded)
	assert.Equal(t, Pesos(-200), ce.Available)

	client.CreditLimit = 0
	ce = ComputeExposure(client, items)
	assert.False(t, ce.Exceeded)
	assert.Equal(t, Pesos(1200), ce.Exposure)
}

func TestComputeDelinquency(t *testing.T) {
	asOf := MustParseDate("2025-03-01")
	client := &Client{ID: "client-1", CreditDays: 30, Balance: Pesos(500)}
	entries := []JournalEntry{
		clientEntry("1", "E-001", "2025-01-10", EntryExpense, 100),
		clientEntry("2", "E-002", "2025-01-20", EntryExpense, 100),
		clientEntry("3", "I-001", "2025-02-25", EntryIncome, 100),
	}
	late := clientEntry("4", "E-003", "2025-02-20", EntryExpense, 100)
	late.Status = EntryVoided
	entries = append(entries, late)

	d := ComputeDelinquency(client, entries, asOf)
	assert.Equal(t, "E-002", d.LastPaymentEntry)
	assert.Equal(t, 40, d.DaysSincePayment)
	assert.True(t, d.Delinquent)

	client.Balance = 0
	assert.False(t, ComputeDelinquency(client, entries, asOf).Delinquent)

	client.Balance = Pesos(500)
	client.CreditDays = 0
	assert.False(t, ComputeDelinquency(client, entries, asOf).Delinquent)

	client.CreditDays = 45
	assert.False(t, ComputeDelinquency(client, entries, asOf).Delinquent)

	// A draft payment has not been reviewed and does not count.
	client.CreditDays = 30
	draft := clientEntry("5", "E-004", "2025-02-28", EntryExpense, 100)
	draft.Status = EntryDraft
	d = ComputeDelinquency(client, append(entries, draft), asOf)
	assert.Equal(t, "E-002", d.LastPaymentEntry)
	assert.True(t, d.Delinquent)

	never := ComputeDelinquency(client, nil, asOf)
	assert.Equal(t, -1, never.DaysSincePayment)
	assert.True(t, never.LastPaymentDate.IsZero())
	assert.True(t, never.Delinquent)
}
