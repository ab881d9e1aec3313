package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrialBalance(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	accounts := []Account{
		{ID: "s", Code: "401.01", Name: "Ventas", Type: AccountIncome, Nature: NatureCredit, Balance: Pesos(1000)},
		{ID: "b", Code: "102.01", Name: "Bancos", Type: AccountAsset, Nature: NatureDebit, Balance: Pesos(700)},
		{ID: "c", Code: "105.01", Name: "Clientes", Type: AccountAsset, Nature: NatureDebit, Balance: Pesos(300)},
		{ID: "z", Code: "101", Name: "Caja", Type: AccountAsset, Nature: NatureDebit},
	}
	tb := BuildTrialBalance(accounts, now)
	require.Len(t, tb.Lines, 3)
	assert.Equal(t, "102.01", tb.Lines[0].Code)
	assert.Equal(t, "401.01", tb.Lines[2].Code)
	assert.Equal(t, Pesos(1000), tb.TotalDebit)
	assert.Equal(t, Pesos(1000), tb.TotalCredit)
	assert.True(t, tb.Balanced)
	assert.Equal(t, now, tb.GeneratedAt)

	// An overdrawn bank shows up on the credit side.
	accounts[1].Balance = Pesos(-100)
	accounts[2].Balance = Pesos(1100)
	tb = BuildTrialBalance(accounts, now)
	assert.Equal(t, Pesos(100), tb.Lines[0].Credit)
	assert.Equal(t, Pesos(1100), tb.TotalDebit)
	assert.Equal(t, Pesos(1100), tb.TotalCredit)
	assert.True(t, tb.Balanced)
}

func TestBuildBalanceSheet(t *testing.T) {
	accounts := []Account{
		{Code: "102.01", Type: AccountAsset, Balance: Pesos(1500)},
		{Code: "201.01", Type: AccountLiability, Balance: Pesos(200)},
		{Code: "301", Type: AccountEquity, Balance: Pesos(1000)},
		{Code: "401.01", Type: AccountIncome, Balance: Pesos(500)},
		{Code: "601.03", Type: AccountExpense, Balance: Pesos(200)},
	}
	bs := BuildBalanceSheet(accounts, time.Now())
	assert.Equal(t, Pesos(1500), bs.TotalAssets)
	assert.Equal(t, Pesos(300), bs.NetIncome)
	assert.True(t, bs.Balanced)
	assert.Len(t, bs.Assets, 1)
	assert.Len(t, bs.Liabilities, 1)
	assert.Len(t, bs.Equity, 1)
}

func TestBuildAgingReport(t *testing.T) {
	items := []OpenItem{
		{ID: "a", Kind: Receivable, PartyID: "c1", DueDate: today.AddDays(-2), TotalAmount: Pesos(100)},
		{ID: "b", Kind: Receivable, PartyID: "c1", DueDate: today.AddDays(3), TotalAmount: Pesos(200), PaidAmount: Pesos(50)},
		{ID: "c", Kind: Receivable, PartyID: "c2", DueDate: today.AddDays(30), TotalAmount: Pesos(400)},
		{ID: "d", Kind: Receivable, PartyID: "c2", DueDate: today.AddDays(-40), TotalAmount: Pesos(80), PaidAmount: Pesos(80)},
		{ID: "e", Kind: Payable, PartyID: "s1", DueDate: today, TotalAmount: Pesos(999)},
	}

	rep := BuildAgingReport(items, AgingFilter{Kind: Receivable}, today, 5)
	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "d", rep.Rows[0].ID)
	assert.Equal(t, BucketClosed, rep.Rows[0].Bucket)
	assert.Equal(t, ItemPaid, rep.Rows[0].Status)

	assert.Equal(t, "a", rep.Rows[1].ID)
	assert.Equal(t, BucketOverdue, rep.Rows[1].Bucket)
	assert.Equal(t, ItemOverdue, rep.Rows[1].Status)
	assert.Equal(t, -2, rep.Rows[1].DaysUntilDue)

	assert.Equal(t, BucketDueSoon, rep.Rows[2].Bucket)
	assert.Equal(t, ItemPartiallyPaid, rep.Rows[2].Status)
	assert.Equal(t, Pesos(150), rep.Rows[2].Outstanding)

	assert.Equal(t, BucketPending, rep.Rows[3].Bucket)

	assert.Equal(t, Pesos(100), rep.Totals[BucketOverdue])
	assert.Equal(t, Pesos(150), rep.Totals[BucketDueSoon])
	assert.Equal(t, Pesos(400), rep.Totals[BucketPending])
	assert.Equal(t, Pesos(80), rep.Totals[BucketClosed])
	assert.Equal(t, Pesos(650), rep.TotalOutstanding)

	// Source items are not mutated by the projection.
	assert.Empty(t, items[0].Status)

	byParty := BuildAgingReport(items, AgingFilter{Kind: Receivable, PartyID: "c2", From: today}, today, 5)
	require.Len(t, byParty.Rows, 1)
	assert.Equal(t, "c", byParty.Rows[0].ID)
}
