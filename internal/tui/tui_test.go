package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/libromayor/internal/client"
	"github.com/simonvc/libromayor/internal/ledger"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testAccounts() []ledger.Account {
	return []ledger.Account{
		{ID: "a1", Code: "102.01", Name: "Bancos", Type: ledger.AccountAsset, Nature: ledger.NatureDebit},
		{ID: "a2", Code: "401.01", Name: "Ventas", Type: ledger.AccountIncome, Nature: ledger.NatureCredit},
	}
}

func addLine(t *testing.T, m journalEntryModel, code, amount string) journalEntryModel {
	t.Helper()
	m.accountInput.SetValue(code)
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepLineSide, m.step, "account %s: %v", code, m.err)
	m, _ = m.update(enter, nil)
	m.amountInput.SetValue(amount)
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepMore, m.step, "amount %s: %v", amount, m.err)
	return m
}

func TestJournalEntryFormBalances(t *testing.T) {
	m := newJournalEntry()
	m, _ = m.update(accountsForJEMsg{accounts: testAccounts()}, nil)

	m, _ = m.update(enter, nil)
	assert.Error(t, m.err, "concept is required")
	assert.Equal(t, jeStepConcept, m.step)

	m.concept.SetValue("Venta de mostrador")
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepType, m.step)
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepLineAccount, m.step)

	m = addLine(t, m, "102.01", "1,160.00")
	assert.True(t, m.lines[0].isDebit, "side defaults to the account nature")

	// Add another line.
	m, _ = m.update(enter, nil)
	m = addLine(t, m, "401.01", "1000")
	assert.False(t, m.lines[1].isDebit)

	m, _ = m.update(down, nil)
	m, _ = m.update(enter, nil)
	assert.Equal(t, jeStepMore, m.step)
	assert.EqualError(t, m.err, "debits and credits do not match")

	// Back to a fresh line; a code that does not exist is rejected.
	m, _ = m.update(enter, nil)
	m.accountInput.SetValue("999.99")
	m, _ = m.update(enter, nil)
	assert.Equal(t, jeStepLineAccount, m.step)
	assert.Error(t, m.err)

	m.accountInput.SetValue("401.01")
	m, _ = m.update(enter, nil)
	m, _ = m.update(enter, nil)
	m.amountInput.SetValue("160.00")
	m, _ = m.update(enter, nil)

	m, _ = m.update(down, nil)
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepConfirm, m.step, "%v", m.err)

	m, _ = m.update(runes("r"), nil)
	e := m.buildEntry()
	assert.Equal(t, ledger.EntryIncome, e.Type)
	assert.Equal(t, ledger.EntryReviewed, e.Status)
	require.Len(t, e.Lines, 3)
	assert.Equal(t, ledger.Pesos(1160), e.Lines[0].Debit)
	assert.Equal(t, ledger.Pesos(1000), e.Lines[1].Credit)
	debit, credit := e.Totals()
	assert.Equal(t, debit, credit)
}

func TestJournalEntryRejectsBadAmounts(t *testing.T) {
	m := newJournalEntry()
	m.accounts = testAccounts()
	m.step = jeStepLineAccount
	m.accountInput.SetValue("102.01")
	m, _ = m.update(enter, nil)
	m, _ = m.update(enter, nil)

	for _, raw := range []string{"abc", "0", "-5", "1.234"} {
		m.amountInput.SetValue(raw)
		m, _ = m.update(enter, nil)
		assert.Equal(t, jeStepLineAmount, m.step, raw)
		assert.Error(t, m.err, raw)
	}

	m, _ = m.update(esc, nil)
	assert.True(t, m.cancelled)
}

func TestPaymentRequest(t *testing.T) {
	item := ledger.OpenItem{ID: "i1", Kind: ledger.Receivable, TotalAmount: ledger.Pesos(1000), Outstanding: ledger.Pesos(700)}
	m := newPayment(ledger.Receivable, item)
	require.NotEmpty(t, m.key)

	req, err := m.request()
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(700), req.Amount, "blank amount pays the outstanding balance")
	assert.True(t, req.Date.IsZero())
	assert.Equal(t, m.key, req.IdempotencyKey)

	m.inputs[payFieldAmount].SetValue("250.50")
	m.inputs[payFieldDate].SetValue("2025-03-05")
	m.inputs[payFieldNotes].SetValue("  SPEI ")
	req, err = m.request()
	require.NoError(t, err)
	assert.Equal(t, ledger.Amount(25050), req.Amount)
	assert.Equal(t, ledger.MustParseDate("2025-03-05"), req.Date)
	assert.Equal(t, "SPEI", req.Notes)

	// The key is fixed for the life of the form.
	again, err := m.request()
	require.NoError(t, err)
	assert.Equal(t, req.IdempotencyKey, again.IdempotencyKey)

	m.inputs[payFieldAmount].SetValue("0")
	_, err = m.request()
	assert.Error(t, err)

	m.inputs[payFieldAmount].SetValue("")
	m.inputs[payFieldDate].SetValue("2025-13-01")
	_, err = m.request()
	assert.Error(t, err)
}

func TestAgingModelFiltersByKindAndMarksPaid(t *testing.T) {
	m := newAging(ledger.Payable)
	rep := &ledger.AgingReport{
		Kind: ledger.Payable,
		Rows: []ledger.AgingRow{
			{OpenItem: ledger.OpenItem{ID: "p1", Status: ledger.ItemPaid}, Bucket: ledger.BucketClosed},
			{OpenItem: ledger.OpenItem{ID: "p2", Status: ledger.ItemOverdue}, Bucket: ledger.BucketOverdue},
		},
	}

	m, _ = m.update(agingLoadedMsg{kind: ledger.Receivable, rep: &ledger.AgingReport{}})
	assert.Nil(t, m.rep, "receivable reports are not ours")

	m, _ = m.update(agingLoadedMsg{kind: ledger.Payable, rep: rep})
	require.Len(t, m.rows(), 2)

	_, cmd := m.update(runes("m"))
	assert.Nil(t, cmd, "closed items cannot be marked paid")

	m, _ = m.update(down)
	_, cmd = m.update(runes("m"))
	require.NotNil(t, cmd)
	assert.Equal(t, markPaidRequestMsg{kind: ledger.Payable, id: "p2"}, cmd())
}

func TestAppTabsWrap(t *testing.T) {
	a := NewApp(client.New("http://127.0.0.1:1"))

	assert.NotNil(t, a.switchTab(-1))
	assert.Equal(t, modeTax, a.mode)

	assert.NotNil(t, a.switchTab(a.tabIndex+1))
	assert.Equal(t, modeAccountList, a.mode)

	a.mode = modePayables
	assert.Same(t, &a.payables, a.activeAging())
	a.mode = modeBank
	assert.Nil(t, a.activeAging())
}
