package books

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/fiscal"
	"github.com/simonvc/libromayor/internal/ledger"
	"github.com/simonvc/libromayor/internal/store"
)

var ctx = context.Background()

// 2025-03-10 noon in Mexico City.
var fixedNow = time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	svc, err := New(st, config.Default("Tienda Demo", ledger.ClientLegalEntity), opts...)
	require.NoError(t, err)
	n, err := svc.SeedChart(ctx)
	require.NoError(t, err)
	require.Equal(t, len(ledger.DefaultChart), n)
	return svc, st
}

func accountByCode(t *testing.T, svc *Service, code string) *ledger.Account {
	t.Helper()
	acct, err := svc.repo.GetAccountByCode(ctx, code)
	require.NoError(t, err)
	return acct
}

func newClient(t *testing.T, svc *Service, name, rfc string, creditDays int) *ledger.Client {
	t.Helper()
	c, err := svc.CreateClient(ctx, &ledger.Client{Name: name, RFC: rfc, CreditDays: creditDays, CreditLimit: ledger.Pesos(20000)})
	require.NoError(t, err)
	return c
}

func requireConsistent(t *testing.T, svc *Service) {
	t.Helper()
	check, err := svc.VerifyBalances(ctx)
	require.NoError(t, err)
	assert.True(t, check.Consistent, "drift: %+v", check.Drift)
}

func TestNew_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, ledger.MustParseDate("2025-03-10"), svc.Today())
	assert.NotNil(t, svc.Calendar())
	assert.IsType(t, &fiscal.Simulated{}, svc.Fiscal())

	n, err := svc.SeedChart(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding twice creates nothing")
}

func TestAddAccount(t *testing.T) {
	svc, _ := newTestService(t)
	parent := accountByCode(t, svc, "102")

	acct, err := svc.AddAccount(ctx, &ledger.Account{Code: "102.02", Name: "Banco secundario", Type: ledger.AccountAsset, Level: 2, ParentID: parent.ID, Balance: ledger.Pesos(500)})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, ledger.NatureDebit, acct.Nature)
	assert.Equal(t, ledger.Pesos(500), acct.Balance)

	_, err = svc.AddAccount(ctx, &ledger.Account{Code: "102.02", Name: "Otra", Type: ledger.AccountAsset, Level: 2, ParentID: parent.ID})
	assert.Equal(t, ledger.KindConflict, ledger.ErrorKind(err))

	_, err = svc.AddAccount(ctx, &ledger.Account{Code: "102.03", Name: "Huérfana", Type: ledger.AccountAsset, Level: 2})
	assert.Equal(t, ledger.KindValidation, ledger.ErrorKind(err))

	// An opening balance is not drift.
	requireConsistent(t, svc)
}

func TestCommitTemplate_NumbersAndPosts(t *testing.T) {
	svc, _ := newTestService(t)

	e1, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(1000), Status: ledger.EntryReviewed})
	require.NoError(t, err)
	assert.Equal(t, "I-001", e1.Number)
	assert.Equal(t, ledger.MustParseDate("2025-03-10"), e1.Date)

	e2, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(250), Status: ledger.EntryReviewed})
	require.NoError(t, err)
	assert.Equal(t, "I-002", e2.Number)

	d, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "aportacion-capital", Amount: ledger.Pesos(5000)})
	require.NoError(t, err)
	assert.Equal(t, "D-001", d.Number)
	assert.Equal(t, ledger.EntryDraft, d.Status)

	assert.Equal(t, ledger.Pesos(1250), accountByCode(t, svc, "102.01").Balance)
	assert.Equal(t, ledger.Pesos(1250), accountByCode(t, svc, "401.01").Balance)
	assert.Zero(t, accountByCode(t, svc, "301").Balance, "drafts do not post")

	tb, err := svc.TrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	requireConsistent(t, svc)
}

func TestCommitTemplate_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "no-existe", Amount: 100})
	assert.ErrorIs(t, err, ledger.ErrInvalidField)

	_, err = svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: 100, Accounts: map[string]string{"102.01": "999"}})
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestCommitEntry_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	bank := accountByCode(t, svc, "102.01")
	sales := accountByCode(t, svc, "401.01")

	_, err := svc.CommitEntry(ctx, &ledger.JournalEntry{
		Date:    ledger.MustParseDate("2025-03-01"),
		Concept: "Descuadrada",
		Type:    ledger.EntryIncome,
		Lines: []ledger.JournalEntryLine{
			{AccountID: bank.ID, Debit: ledger.Pesos(100)},
			{AccountID: sales.ID, Credit: ledger.Pesos(99)},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrUnbalancedEntry)
	assert.Equal(t, ledger.KindValidation, ledger.ErrorKind(err))

	_, err = svc.CommitEntry(ctx, &ledger.JournalEntry{
		Date:     ledger.MustParseDate("2025-03-01"),
		Concept:  "Cliente fantasma",
		Type:     ledger.EntryIncome,
		ClientID: "nope",
		Lines: []ledger.JournalEntryLine{
			{AccountID: bank.ID, Debit: ledger.Pesos(100)},
			{AccountID: sales.ID, Credit: ledger.Pesos(100)},
		},
	})
	assert.ErrorIs(t, err, ledger.ErrClientNotFound)

	entry := &ledger.JournalEntry{
		Number:  "X-7",
		Date:    ledger.MustParseDate("2025-03-01"),
		Concept: "Con folio",
		Type:    ledger.EntryDiary,
		Lines: []ledger.JournalEntryLine{
			{AccountID: bank.ID, Debit: ledger.Pesos(100)},
			{AccountID: sales.ID, Credit: ledger.Pesos(100)},
		},
	}
	_, err = svc.CommitEntry(ctx, entry)
	require.NoError(t, err)

	// Enough maximal debits to wrap int64 back to the credit total.
	huge := &ledger.JournalEntry{
		Date:    ledger.MustParseDate("2025-03-01"),
		Concept: "Desbordada",
		Type:    ledger.EntryDiary,
	}
	for i := 0; i < 2049; i++ {
		huge.Lines = append(huge.Lines, ledger.JournalEntryLine{AccountID: bank.ID, Debit: ledger.MaxAmount})
	}
	huge.Lines = append(huge.Lines, ledger.JournalEntryLine{AccountID: sales.ID, Credit: ledger.MaxAmount})
	_, err = svc.CommitEntry(ctx, huge)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	assert.Equal(t, ledger.KindValidation, ledger.ErrorKind(err))

	dup := *entry
	dup.Lines = append([]ledger.JournalEntryLine(nil), entry.Lines...)
	_, err = svc.CommitEntry(ctx, &dup)
	assert.ErrorIs(t, err, ledger.ErrDuplicateEntryNumber)
	assert.Equal(t, ledger.KindConflict, ledger.ErrorKind(err))
}

func TestReviewAndVoid(t *testing.T) {
	svc, _ := newTestService(t)

	draft, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(300)})
	require.NoError(t, err)
	assert.Zero(t, accountByCode(t, svc, "102.01").Balance)

	reviewed, err := svc.SetEntryStatus(ctx, draft.ID, ledger.EntryReviewed)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryReviewed, reviewed.Status)
	assert.Equal(t, ledger.Pesos(300), accountByCode(t, svc, "102.01").Balance)

	_, err = svc.ReviewEntry(ctx, draft.ID)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)

	voided, err := svc.SetEntryStatus(ctx, draft.ID, ledger.EntryVoided)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryVoided, voided.Status)
	assert.Zero(t, accountByCode(t, svc, "102.01").Balance)
	assert.Zero(t, accountByCode(t, svc, "401.01").Balance)

	_, err = svc.VoidEntry(ctx, draft.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyVoided)
	assert.Equal(t, ledger.KindConflict, ledger.ErrorKind(err))

	_, err = svc.SetEntryStatus(ctx, draft.ID, ledger.EntryDraft)
	assert.ErrorIs(t, err, ledger.ErrInvalidField)

	requireConsistent(t, svc)
}

func TestVoidWithoutReversal(t *testing.T) {
	svc, _ := newTestService(t)
	svc.cfg.Books.VoidReversesBalances = false

	e, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(300), Status: ledger.EntryReviewed})
	require.NoError(t, err)
	_, err = svc.VoidEntry(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, ledger.Pesos(300), accountByCode(t, svc, "102.01").Balance)
	requireConsistent(t, svc)
}

func TestReviewEntry_InactiveAccount(t *testing.T) {
	svc, _ := newTestService(t)

	draft, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(300)})
	require.NoError(t, err)
	_, err = svc.SetAccountStatus(ctx, accountByCode(t, svc, "102.01").ID, ledger.AccountInactive)
	require.NoError(t, err)

	_, err = svc.ReviewEntry(ctx, draft.ID)
	assert.ErrorIs(t, err, ledger.ErrInactiveAccount)

	got, err := svc.GetEntry(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryDraft, got.Status)
}

func TestCreateClient(t *testing.T) {
	svc, _ := newTestService(t)

	c := newClient(t, svc, "Comercial del Norte", "abc010203xy1", 15)
	assert.Equal(t, "ABC010203XY1", c.RFC)
	assert.Equal(t, ledger.ClientLegalEntity, c.Type)
	assert.Equal(t, "601", c.TaxRegime, "filled from the fiscal check")

	_, err := svc.CreateClient(ctx, &ledger.Client{Name: "Copia", RFC: "ABC010203XY1"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateClient)

	_, err = svc.CreateClient(ctx, &ledger.Client{Name: "Mala", RFC: "ABC019903XY1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidRFC)

	_, err = svc.CreateClient(ctx, &ledger.Client{Name: "Cuenta", RFC: "GODE561231GR8", AssociatedAccountID: "nope"})
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)

	c.Phone = "5555555555"
	c.Balance = ledger.Pesos(999)
	updated, err := svc.UpdateClient(ctx, c.ID, c)
	require.NoError(t, err)
	assert.Equal(t, "5555555555", updated.Phone)
	assert.Zero(t, updated.Balance, "balance is not editable")
}

func TestCreateClient_FiscalUnavailable(t *testing.T) {
	svc, _ := newTestService(t, WithFiscal(fiscal.Disabled{}))

	c, err := svc.CreateClient(ctx, &ledger.Client{Name: "Sin validar", RFC: "GODE561231GR8"})
	require.NoError(t, err)
	assert.Empty(t, c.TaxRegime)

	_, err = svc.CheckRFC(ctx, "GODE561231GR8")
	assert.ErrorIs(t, err, fiscal.ErrUnavailable)
}

func TestInvoiceLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 15)

	inv, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(11600)})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, strings.ToUpper(inv.ID), inv.ID)
	assert.Equal(t, "G03", inv.CFDIUse)
	assert.Equal(t, ledger.SATValid, inv.SATStatus)

	entry, err := svc.GetEntry(ctx, inv.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryIncome, entry.Type)
	assert.Equal(t, ledger.EntryReviewed, entry.Status)
	assert.Equal(t, "I-001", entry.Number)
	assert.Equal(t, c.ID, entry.ClientID)

	item, err := svc.GetOpenItem(ctx, ledger.Receivable, inv.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, ledger.MustParseDate("2025-03-25"), item.DueDate)
	assert.Equal(t, ledger.Pesos(11600), item.Outstanding)
	assert.Equal(t, ledger.ItemPending, item.Status)

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(11600), got.Balance)
	assert.Equal(t, ledger.Pesos(11600), accountByCode(t, svc, "105.01").Balance)

	lower, err := svc.GetInvoice(ctx, strings.ToLower(inv.ID))
	require.NoError(t, err)
	assert.Equal(t, inv.ID, lower.ID)

	_, err = svc.CreateInvoice(ctx, &ledger.Invoice{ID: inv.ID, ClientID: c.ID, Amount: ledger.Pesos(1)})
	assert.ErrorIs(t, err, ledger.ErrDuplicateInvoice)

	_, err = svc.RecordPayment(ctx, ledger.Receivable, item.ID, PaymentRequest{Amount: ledger.Pesos(100)})
	require.NoError(t, err)
	_, err = svc.CancelInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, ledger.ErrInvoiceHasPayments)

	requireConsistent(t, svc)
}

func TestCancelInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 0)

	inv, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(5000)})
	require.NoError(t, err)

	cancelled, err := svc.CancelInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.SATCancelled, cancelled.SATStatus)

	item, err := svc.GetOpenItem(ctx, ledger.Receivable, inv.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemCancelled, item.Status)

	entry, err := svc.GetEntry(ctx, inv.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryVoided, entry.Status)

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance)
	assert.Zero(t, accountByCode(t, svc, "105.01").Balance)

	_, err = svc.CancelInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, ledger.ErrInvoiceCancelled)

	_, err = svc.RecordPayment(ctx, ledger.Receivable, item.ID, PaymentRequest{Amount: ledger.Pesos(1)})
	assert.ErrorIs(t, err, ledger.ErrItemCancelled)

	requireConsistent(t, svc)
}

func TestCreateInvoice_RollsBack(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 0)
	svc.cfg.Books.SalesAccountCode = "999"

	_, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(5000)})
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	invoices, err := svc.ListInvoices(ctx, ledger.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
	items, err := svc.ListOpenItems(ctx, ledger.ItemFilter{Kind: ledger.Receivable})
	require.NoError(t, err)
	assert.Empty(t, items)
	entries, err := svc.ListEntries(ctx, ledger.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordPayment(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 30)
	inv, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(1000)})
	require.NoError(t, err)

	res, err := svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, PaymentRequest{Amount: ledger.Pesos(400), Notes: "anticipo"})
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(400), res.Applied)
	assert.Equal(t, ledger.ItemPartiallyPaid, res.Item.Status)
	assert.Equal(t, ledger.MustParseDate("2025-03-10"), res.Payment.Date)

	// Overpayment is clamped to what is outstanding.
	res, err = svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, PaymentRequest{Amount: ledger.Pesos(5000)})
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(600), res.Applied)
	assert.Equal(t, ledger.ItemPaid, res.Item.Status)
	assert.Zero(t, res.Item.Outstanding)

	_, err = svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, PaymentRequest{Amount: ledger.Pesos(1)})
	assert.ErrorIs(t, err, ledger.ErrNothingOutstanding)

	_, err = svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, PaymentRequest{Amount: 0})
	assert.ErrorIs(t, err, ledger.ErrNonPositivePayment)

	_, err = svc.RecordPayment(ctx, "loan", inv.ReceivableID, PaymentRequest{Amount: 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidField)

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance)

	item, err := svc.GetOpenItem(ctx, ledger.Receivable, inv.ReceivableID)
	require.NoError(t, err)
	require.Len(t, item.Payments, 2)
	assert.Equal(t, ledger.Pesos(600), item.Payments[1].Amount)
}

func TestRecordPayment_IdempotencyKey(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 30)
	inv, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(1000)})
	require.NoError(t, err)
	other, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(1000)})
	require.NoError(t, err)

	req := PaymentRequest{Amount: ledger.Pesos(300), IdempotencyKey: "k-1"}
	first, err := svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again, err := svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, req)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Payment.ID, again.Payment.ID)
	assert.Equal(t, ledger.Pesos(300), again.Item.PaidAmount)

	_, err = svc.RecordPayment(ctx, ledger.Receivable, other.ReceivableID, req)
	assert.ErrorIs(t, err, ledger.ErrIdempotencyKeyReused)
	assert.Equal(t, ledger.KindConflict, ledger.ErrorKind(err))

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(1700), got.Balance)
}

func TestMarkAsPaid(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 30)
	inv, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(1000)})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, ledger.Receivable, inv.ReceivableID, PaymentRequest{Amount: ledger.Pesos(250)})
	require.NoError(t, err)

	item, err := svc.MarkAsPaid(ctx, ledger.Receivable, inv.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemPaid, item.Status)
	assert.Len(t, item.Payments, 1, "no payment record is added")

	item, err = svc.MarkAsPaid(ctx, ledger.Receivable, inv.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemPaid, item.Status)

	got, err := svc.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance)
}

func TestPayablesAndAging(t *testing.T) {
	svc, _ := newTestService(t)
	supplier := newClient(t, svc, "Papelería Central", "PCE990101AB1", 10)

	_, err := svc.CreatePayable(ctx, &ledger.OpenItem{PartyID: "nope", TotalAmount: ledger.Pesos(100)})
	assert.ErrorIs(t, err, ledger.ErrClientNotFound)

	byCredit, err := svc.CreatePayable(ctx, &ledger.OpenItem{PartyID: supplier.ID, TotalAmount: ledger.Pesos(800), IssueDate: ledger.MustParseDate("2025-03-01")})
	require.NoError(t, err)
	assert.Equal(t, ledger.MustParseDate("2025-03-11"), byCredit.DueDate)

	overdue, err := svc.CreatePayable(ctx, &ledger.OpenItem{PartyID: supplier.ID, TotalAmount: ledger.Pesos(200), IssueDate: ledger.MustParseDate("2025-02-01"), DueDate: ledger.MustParseDate("2025-03-01")})
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemOverdue, overdue.Status)

	later, err := svc.CreatePayable(ctx, &ledger.OpenItem{PartyID: supplier.ID, TotalAmount: ledger.Pesos(50), DueDate: ledger.MustParseDate("2025-04-30")})
	require.NoError(t, err)
	assert.Equal(t, ledger.MustParseDate("2025-03-10"), later.IssueDate)

	_, err = svc.CreatePayable(ctx, &ledger.OpenItem{PartyID: supplier.ID, TotalAmount: ledger.Pesos(50), IssueDate: ledger.MustParseDate("2025-03-10"), DueDate: ledger.MustParseDate("2025-03-01")})
	assert.ErrorIs(t, err, ledger.ErrInvalidDate)

	res, err := svc.RecordPayment(ctx, ledger.Payable, later.ID, PaymentRequest{Amount: ledger.Pesos(50)})
	require.NoError(t, err)
	assert.Equal(t, ledger.ItemPaid, res.Item.Status)

	rep, err := svc.AgingReport(ctx, ledger.AgingFilter{Kind: ledger.Payable})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.ThresholdDays)
	require.Len(t, rep.Rows, 3)
	assert.Equal(t, ledger.BucketOverdue, rep.Rows[0].Bucket)
	assert.Equal(t, ledger.BucketDueSoon, rep.Rows[1].Bucket)
	assert.Equal(t, 1, rep.Rows[1].DaysUntilDue)
	assert.Equal(t, ledger.BucketClosed, rep.Rows[2].Bucket)
	assert.Equal(t, ledger.Pesos(1000), rep.TotalOutstanding)

	ranged, err := svc.AgingReport(ctx, ledger.AgingFilter{Kind: ledger.Payable, From: ledger.MustParseDate("2025-03-05"), To: ledger.MustParseDate("2025-03-31")})
	require.NoError(t, err)
	require.Len(t, ranged.Rows, 1)
	assert.Equal(t, byCredit.ID, ranged.Rows[0].ID)

	// Payables are not part of the client's receivable balance.
	got, err := svc.GetClient(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance)

	_, err = svc.GetOpenItem(ctx, ledger.Receivable, byCredit.ID)
	assert.ErrorIs(t, err, ledger.ErrOpenItemNotFound)

	_, err = svc.AgingReport(ctx, ledger.AgingFilter{Kind: "loan"})
	assert.ErrorIs(t, err, ledger.ErrInvalidField)
}

func TestExposureAndDelinquency(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 5)

	_, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(15000), Date: ledger.MustParseDate("2025-01-10")})
	require.NoError(t, err)
	_, err = svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(8000), Date: ledger.MustParseDate("2025-02-10")})
	require.NoError(t, err)

	exp, err := svc.CreditExposure(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(23000), exp.Exposure)
	assert.True(t, exp.Exceeded)

	d, err := svc.Delinquency(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, d.Delinquent, "no payment entry on record")

	_, err = svc.CommitTemplate(ctx, TemplateEntry{Template: "cobro-cliente", Amount: ledger.Pesos(1000), ClientID: c.ID, Status: ledger.EntryReviewed, Date: ledger.MustParseDate("2025-03-08")})
	require.NoError(t, err)
	d, err = svc.Delinquency(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, d.Delinquent)

	_, err = svc.CreditExposure(ctx, "nope")
	assert.ErrorIs(t, err, ledger.ErrClientNotFound)
}

func TestStatement(t *testing.T) {
	svc, _ := newTestService(t)
	c := newClient(t, svc, "Comercial del Norte", "ABC010203XY1", 30)

	_, err := svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(1000), Date: ledger.MustParseDate("2025-01-15")})
	require.NoError(t, err)
	_, err = svc.CreateInvoice(ctx, &ledger.Invoice{ClientID: c.ID, Amount: ledger.Pesos(500), Date: ledger.MustParseDate("2025-02-15")})
	require.NoError(t, err)
	_, err = svc.CommitTemplate(ctx, TemplateEntry{Template: "cobro-cliente", Amount: ledger.Pesos(700), ClientID: c.ID, Status: ledger.EntryReviewed, Date: ledger.MustParseDate("2025-02-20")})
	require.NoError(t, err)
	// Drafts stay off the statement.
	_, err = svc.CommitTemplate(ctx, TemplateEntry{Template: "cobro-cliente", Amount: ledger.Pesos(50), ClientID: c.ID, Date: ledger.MustParseDate("2025-02-21")})
	require.NoError(t, err)

	st, err := svc.Statement(ctx, c.ID, ledger.MustParseDate("2025-02-01"), ledger.MustParseDate("2025-02-28"))
	require.NoError(t, err)
	assert.Equal(t, ledger.Pesos(1000), st.OpeningBalance)
	require.Len(t, st.Lines, 2)
	assert.Equal(t, ledger.Pesos(1500), st.Lines[0].Balance)
	assert.Equal(t, ledger.Pesos(800), st.Lines[1].Balance)
	assert.Equal(t, ledger.Pesos(800), st.ClosingBalance)

	_, err = svc.Statement(ctx, c.ID, ledger.MustParseDate("2025-02-28"), ledger.MustParseDate("2025-02-01"))
	assert.ErrorIs(t, err, ledger.ErrInvalidDate)
}

func TestReconciliation(t *testing.T) {
	svc, _ := newTestService(t)

	sale, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(1160), Status: ledger.EntryReviewed})
	require.NoError(t, err)
	other, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "venta-contado", Amount: ledger.Pesos(999), Status: ledger.EntryReviewed})
	require.NoError(t, err)
	expense, err := svc.CommitTemplate(ctx, TemplateEntry{Template: "pago-proveedor", Amount: ledger.Pesos(1160), Status: ledger.EntryReviewed})
	require.NoError(t, err)

	txn, err := svc.AddBankTransaction(ctx, &ledger.BankTransaction{Date: ledger.MustParseDate("2025-03-10"), Description: "SPEI recibido", Amount: ledger.Pesos(1160)})
	require.NoError(t, err)
	assert.Equal(t, ledger.Unreconciled, txn.Status)

	cands, err := svc.Candidates(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, sale.ID, cands[0].ID)

	_, err = svc.Match(ctx, txn.ID, expense.ID)
	assert.ErrorIs(t, err, ledger.ErrNotIncomeEntry)

	res, err := svc.Match(ctx, txn.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Mismatch, res.Status)
	assert.Equal(t, ledger.Pesos(161), res.Difference)

	res, err = svc.Match(ctx, txn.ID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Reconciled, res.Status)

	stored, err := svc.GetBankTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Reconciled, stored.Status)
	assert.Equal(t, sale.ID, stored.JournalEntryID)
	entry, err := svc.GetEntry(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, entry.BankTransactionID)

	_, err = svc.Match(ctx, txn.ID, sale.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyReconciled)
	_, err = svc.Candidates(ctx, txn.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyReconciled)

	fee, err := svc.AddBankTransaction(ctx, &ledger.BankTransaction{Date: ledger.MustParseDate("2025-03-10"), Description: "Cargo", Amount: ledger.Pesos(999), Direction: ledger.DirectionDebit})
	require.NoError(t, err)
	cands, err = svc.Candidates(ctx, fee.ID)
	require.NoError(t, err)
	assert.Empty(t, cands)
	_, err = svc.Match(ctx, fee.ID, other.ID)
	assert.ErrorIs(t, err, ledger.ErrOutgoingMovement)

	_, err = svc.AddBankTransaction(ctx, &ledger.BankTransaction{Date: ledger.MustParseDate("2025-03-10"), Amount: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestImportBankCSV(t *testing.T) {
	svc, _ := newTestService(t)
	const statement = "date,description,amount\n" +
		"2025-03-03,Deposito cliente,1500.00\n" +
		"2025-03-04,Comision manejo,-150.50\n"

	res, err := svc.ImportBankCSV(ctx, "generic", strings.NewReader(statement))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, ledger.DirectionCredit, res.Transactions[0].Direction)
	assert.Equal(t, ledger.DirectionDebit, res.Transactions[1].Direction)

	res, err = svc.ImportBankCSV(ctx, "GENERIC", strings.NewReader(statement))
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Equal(t, 2, res.Skipped)

	all, err := svc.ListBankTransactions(ctx, ledger.BankFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ImportBankCSV(ctx, "santander", strings.NewReader(statement))
	assert.ErrorIs(t, err, ledger.ErrInvalidField)

	_, err = svc.ImportBankCSV(ctx, "generic", strings.NewReader("date,description,amount\nnot-a-date,x,1\n"))
	assert.Equal(t, ledger.KindValidation, ledger.ErrorKind(err))
}

func TestTaxEvents(t *testing.T) {
	svc, _ := newTestService(t)

	events, err := svc.TaxEvents(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, events, 37)

	filed, err := svc.MarkTaxEventFiled(ctx, "2025-02-ISR")
	require.NoError(t, err)
	assert.Equal(t, ledger.TaxFiled, filed.Status)
	require.NotNil(t, filed.FiledAt)

	_, err = svc.MarkTaxEventFiled(ctx, "2025-02-ISR")
	assert.ErrorIs(t, err, ledger.ErrTaxEventFiled)

	_, err = svc.MarkTaxEventFiled(ctx, "1999-01-ISR")
	assert.ErrorIs(t, err, ledger.ErrTaxEventNotFound)

	regenerated, err := svc.GenerateTaxYear(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, regenerated, 37)
	for _, ev := range regenerated {
		if ev.ID == "2025-02-ISR" {
			assert.Equal(t, ledger.TaxFiled, ev.Status, "regenerating keeps filed events")
		}
	}

	// Twenty business days from March 10 reach April 8; March 17 is a holiday.
	upcoming, err := svc.UpcomingTaxEvents(ctx, 20)
	require.NoError(t, err)
	ids := make([]string, 0, len(upcoming))
	for _, ev := range upcoming {
		ids = append(ids, ev.ID)
	}
	assert.Contains(t, ids, "2025-01-DIOT", "overdue events stay listed")
	assert.Contains(t, ids, "2025-02-IVA")
	assert.Contains(t, ids, "2025-02-DIOT")
	assert.Contains(t, ids, "2024-ANUAL", "the prior year's annual return is due this March")
	assert.NotContains(t, ids, "2025-02-ISR")
	assert.NotContains(t, ids, "2025-03-ISR")

	_, err = svc.UpcomingTaxEvents(ctx, -1)
	assert.ErrorIs(t, err, ledger.ErrInvalidField)
}
