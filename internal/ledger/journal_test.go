package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts() map[string]*Account {
	return map[string]*Account{
		"bank":     {ID: "bank", Code: "102.01", Name: "Bancos", Type: AccountAsset, Nature: NatureDebit, Level: 2, Status: AccountActive},
		"sales":    {ID: "sales", Code: "401.01", Name: "Ventas", Type: AccountIncome, Nature: NatureCredit, Level: 2, Status: AccountActive},
		"iva":      {ID: "iva", Code: "208.01", Name: "IVA", Type: AccountLiability, Nature: NatureCredit, Level: 2, Status: AccountActive},
		"archived": {ID: "archived", Code: "999", Name: "Old", Type: AccountExpense, Nature: NatureDebit, Level: 1, Status: AccountInactive},
	}
}

func lookupIn(accts map[string]*Account) AccountLookup {
	return func(id string) (*Account, bool) {
		a, ok := accts[id]
		return a, ok
	}
}

func entryWith(lines ...JournalEntryLine) *JournalEntry {
	e := &JournalEntry{
		Date:    MustParseDate("2025-01-15"),
		Concept: "Venta mostrador",
		Type:    EntryIncome,
		Lines:   lines,
	}
	e.ApplyDefaults()
	return e
}

func debit(acct string, pesos int64) JournalEntryLine {
	return JournalEntryLine{AccountID: acct, Debit: Pesos(pesos)}
}

func credit(acct string, pesos int64) JournalEntryLine {
	return JournalEntryLine{AccountID: acct, Credit: Pesos(pesos)}
}

func TestValidate_SplitCreditsBalance(t *testing.T) {
	e := entryWith(debit("bank", 100), credit("sales", 60), credit("iva", 40))
	require.NoError(t, e.Validate(lookupIn(testAccounts())))
	assert.Equal(t, Pesos(100), e.Amount())
	assert.Equal(t, Pesos(100), e.CreditTotal())
}

func TestValidate_Unbalanced(t *testing.T) {
	e := entryWith(debit("bank", 100), credit("sales", 50))
	err := e.Validate(lookupIn(testAccounts()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.Equal(t, KindValidation, ErrorKind(err))
}

func TestValidate_CentavoPrecision(t *testing.T) {
	e := entryWith(
		JournalEntryLine{AccountID: "bank", Debit: 10},
		JournalEntryLine{AccountID: "sales", Credit: 3},
		JournalEntryLine{AccountID: "iva", Credit: 7},
	)
	assert.NoError(t, e.Validate(lookupIn(testAccounts())))
}

func TestValidate_TotalsCannotWrap(t *testing.T) {
	// 2049 * 2^53 wraps int64 to 2^53, the same as the single credit.
	lines := make([]JournalEntryLine, 0, 2050)
	for i := 0; i < 2049; i++ {
		lines = append(lines, JournalEntryLine{AccountID: "bank", Debit: MaxAmount})
	}
	lines = append(lines, JournalEntryLine{AccountID: "sales", Credit: MaxAmount})

	err := entryWith(lines...).Validate(lookupIn(testAccounts()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, KindValidation, ErrorKind(err))

	err = entryWith(
		JournalEntryLine{AccountID: "bank", Debit: MaxAmount + 1},
		JournalEntryLine{AccountID: "sales", Credit: MaxAmount + 1},
	).Validate(lookupIn(testAccounts()))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	atLimit := entryWith(
		JournalEntryLine{AccountID: "bank", Debit: MaxAmount},
		JournalEntryLine{AccountID: "sales", Credit: MaxAmount - 1},
		JournalEntryLine{AccountID: "iva", Credit: 1},
	)
	assert.NoError(t, atLimit.Validate(lookupIn(testAccounts())))
}

func TestValidate_LineRules(t *testing.T) {
	tests := []struct {
		name  string
		lines []JournalEntryLine
		want  error
	}{
		{
			name:  "single line",
			lines: []JournalEntryLine{debit("bank", 100)},
			want:  ErrTooFewLines,
		},
		{
			name:  "both zero",
			lines: []JournalEntryLine{debit("bank", 100), credit("sales", 100), {AccountID: "iva"}},
			want:  ErrInvalidLine,
		},
		{
			name: "both positive",
			lines: []JournalEntryLine{
				{AccountID: "bank", Debit: Pesos(100), Credit: Pesos(100)},
				credit("sales", 100),
				debit("iva", 100),
			},
			want: ErrInvalidLine,
		},
		{
			name:  "negative",
			lines: []JournalEntryLine{{AccountID: "bank", Debit: -100}, {AccountID: "sales", Credit: -100}},
			want:  ErrInvalidLine,
		},
		{
			name:  "unknown account",
			lines: []JournalEntryLine{debit("nope", 100), credit("sales", 100)},
			want:  ErrUnknownAccount,
		},
		{
			name:  "inactive account",
			lines: []JournalEntryLine{debit("archived", 100), credit("sales", 100)},
			want:  ErrInactiveAccount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := entryWith(tt.lines...).Validate(lookupIn(testAccounts()))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	e := &JournalEntry{Type: "Bogus", Status: EntryDraft, Lines: []JournalEntryLine{debit("nope", 1)}}
	err := e.Validate(lookupIn(testAccounts()))
	require.Error(t, err)

	fields := map[string]bool{}
	for _, fe := range Fields(err) {
		fields[fe.Field] = true
	}
	assert.True(t, fields["date"])
	assert.True(t, fields["concept"])
	assert.True(t, fields["type"])
	assert.True(t, fields["lines"])
	assert.True(t, fields["lines[0].account_id"])
}

func TestValidate_RejectsVoidedDraft(t *testing.T) {
	e := entryWith(debit("bank", 100), credit("sales", 100))
	e.Status = EntryVoided
	assert.ErrorIs(t, e.Validate(nil), ErrInvalidField)
}

func TestNextNumber(t *testing.T) {
	assert.Equal(t, "I-001", NextNumber("I-", nil))
	assert.Equal(t, "I-004", NextNumber("I-", []string{"I-001", "I-003", "E-009"}))
	assert.Equal(t, "E-010", NextNumber("E-", []string{"E-009", "E-abc", "I-020"}))
	assert.Equal(t, "D-1000", NextNumber("D-", []string{"D-999"}))
}

func TestNumberPrefix(t *testing.T) {
	assert.Equal(t, "I-", NumberPrefix(EntryIncome))
	assert.Equal(t, "E-", NumberPrefix(EntryExpense))
	assert.Equal(t, "D-", NumberPrefix(EntryDiary))
}

func TestCanTransition(t *testing.T) {
	assert.NoError(t, CanTransition(EntryDraft, EntryReviewed))
	assert.NoError(t, CanTransition(EntryDraft, EntryVoided))
	assert.NoError(t, CanTransition(EntryReviewed, EntryVoided))

	assert.ErrorIs(t, CanTransition(EntryVoided, EntryVoided), ErrAlreadyVoided)
	assert.ErrorIs(t, CanTransition(EntryVoided, EntryReviewed), ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(EntryReviewed, EntryDraft), ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(EntryReviewed, EntryReviewed), ErrInvalidTransition)
	assert.Equal(t, KindConflict, ErrorKind(CanTransition(EntryVoided, EntryVoided)))
}

func TestBalanceDelta(t *testing.T) {
	assert.Equal(t, Pesos(100), BalanceDelta(NatureDebit, Pesos(100), 0))
	assert.Equal(t, Pesos(-100), BalanceDelta(NatureDebit, 0, Pesos(100)))
	assert.Equal(t, Pesos(100), BalanceDelta(NatureCredit, 0, Pesos(100)))
	assert.Equal(t, Pesos(-100), BalanceDelta(NatureCredit, Pesos(100), 0))
}

// Posting a set of entries moves every balance by the signed sum of its
// lines according to the account's nature.
func TestPostingMatchesSignedSum(t *testing.T) {
	accts := testAccounts()
	entries := []*JournalEntry{
		entryWith(debit("bank", 100), credit("sales", 60), credit("iva", 40)),
		entryWith(debit("sales", 10), credit("bank", 10)),
		entryWith(debit("iva", 40), credit("bank", 40)),
	}

	balances := map[string]Amount{}
	for _, e := range entries {
		require.NoError(t, e.Validate(lookupIn(accts)))
		debitTotal, creditTotal := e.Totals()
		require.Equal(t, debitTotal, creditTotal)
		for _, l := range e.Lines {
			balances[l.AccountID] += BalanceDelta(accts[l.AccountID].Nature, l.Debit, l.Credit)
		}
	}

	assert.Equal(t, Pesos(50), balances["bank"])
	assert.Equal(t, Pesos(50), balances["sales"])
	assert.Equal(t, Amount(0), balances["iva"])
}

func TestAccount_ValidateAndParent(t *testing.T) {
	a := &Account{Code: "105.01", Name: "Clientes nacionales", Type: AccountAsset, Level: 2}
	a.ApplyDefaults()
	assert.Equal(t, NatureDebit, a.Nature)
	assert.Equal(t, AccountActive, a.Status)
	assert.ErrorIs(t, a.Validate(), ErrMissingParent)

	a.ParentID = "p"
	require.NoError(t, a.Validate())
	assert.NoError(t, a.CheckParent(&Account{Code: "105", Level: 1}))
	assert.ErrorIs(t, a.CheckParent(&Account{Code: "105.01.01", Level: 3}), ErrParentLevel)

	bad := &Account{Code: "10A", Name: "x", Type: AccountIncome}
	bad.ApplyDefaults()
	assert.Equal(t, NatureCredit, bad.Nature)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAccountCode)
}

func TestCompareCodes(t *testing.T) {
	assert.Negative(t, CompareCodes("105", "105.01"))
	assert.Negative(t, CompareCodes("105.2", "105.10"))
	assert.Negative(t, CompareCodes("99", "101"))
	assert.Zero(t, CompareCodes("208.01", "208.01"))
	assert.Positive(t, CompareCodes("601", "401.01"))
}

func TestTemplate_Build(t *testing.T) {
	tmpl, ok := LookupTemplate("Venta-Contado")
	require.True(t, ok)
	assert.Equal(t, EntryIncome, tmpl.Type)

	codes := map[string]string{"102.01": "bank", "401.01": "sales"}
	lines, err := tmpl.Build(Pesos(250), func(code string) (string, bool) {
		id, ok := codes[code]
		return id, ok
	})
	require.NoError(t, err)
	e := entryWith(lines...)
	require.NoError(t, e.Validate(lookupIn(testAccounts())))
	assert.Equal(t, Pesos(250), e.Amount())

	_, err = tmpl.Build(0, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	pago, ok := LookupTemplate("pago-proveedor")
	require.True(t, ok)
	_, err = pago.Build(Pesos(1), func(string) (string, bool) { return "", false })
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestLookupChartEntry(t *testing.T) {
	e := LookupChartEntry("105.01")
	require.NotNil(t, e)
	assert.Equal(t, "105", e.ParentCode)
	assert.Nil(t, LookupChartEntry("000"))

	for _, ce := range DefaultChart {
		if ce.ParentCode == "" {
			continue
		}
		parent := LookupChartEntry(ce.ParentCode)
		require.NotNil(t, parent, ce.Code)
		assert.Equal(t, ce.Level-1, parent.Level, ce.Code)
	}
}
