package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/config"
	"github.com/simonvc/libromayor/internal/ledger"
	"github.com/simonvc/libromayor/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)
	svc, err := books.New(st, config.Default("Tienda Demo", ""), books.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	_, err = svc.SeedChart(context.Background())
	require.NoError(t, err)

	ts := httptest.NewServer(New(svc, config.ServerConfig{}, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

type apiResponse struct {
	status int
	body   []byte
}

func (r apiResponse) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any, headers ...string) apiResponse {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+"/api/v1"+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{status: resp.StatusCode, body: data}
}

func accountID(t *testing.T, ts *httptest.Server, code string) string {
	t.Helper()
	var accounts []ledger.Account
	call(t, ts, http.MethodGet, "/accounts", nil).decode(t, &accounts)
	for _, a := range accounts {
		if a.Code == code {
			return a.ID
		}
	}
	t.Fatalf("no account %s", code)
	return ""
}

func createClient(t *testing.T, ts *httptest.Server, rfc string) ledger.Client {
	t.Helper()
	resp := call(t, ts, http.MethodPost, "/clients", map[string]any{
		"name": "Comercial del Norte", "rfc": rfc, "credit_days": 15, "credit_limit": "10000",
	})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var c ledger.Client
	resp.decode(t, &c)
	return c
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, http.MethodPost, "/accounts", map[string]any{"code": "403.01", "name": "Intereses", "type": "Income", "level": 2, "parent_id": accountID(t, ts, "403")})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var acct ledger.Account
	resp.decode(t, &acct)
	assert.Equal(t, ledger.NatureCredit, acct.Nature)

	resp = call(t, ts, http.MethodPost, "/accounts", map[string]any{"code": "403.01", "name": "Otra", "type": "Income", "level": 2, "parent_id": accountID(t, ts, "403")})
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodPost, "/accounts", map[string]any{"code": "abc", "name": "Mala", "type": "Income"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	var er errorResponse
	resp.decode(t, &er)
	require.NotEmpty(t, er.Fields)
	assert.Equal(t, "code", er.Fields[0].Field)

	resp = call(t, ts, http.MethodPost, "/accounts", `{"code": `)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = call(t, ts, http.MethodGet, "/accounts/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = call(t, ts, http.MethodPatch, "/accounts/"+acct.ID+"/status", map[string]string{"status": "Inactive"})
	require.Equal(t, http.StatusOK, resp.status)
	resp.decode(t, &acct)
	assert.Equal(t, ledger.AccountInactive, acct.Status)

	var incomes []ledger.Account
	call(t, ts, http.MethodGet, "/accounts?type=Income&status=Inactive", nil).decode(t, &incomes)
	require.Len(t, incomes, 1)
	assert.Equal(t, "403.01", incomes[0].Code)
}

func TestJournalEntries(t *testing.T) {
	ts := newTestServer(t)
	bank := accountID(t, ts, "102.01")
	sales := accountID(t, ts, "401.01")

	unbalanced := map[string]any{
		"date": "2025-03-01", "concept": "Venta", "type": "Income",
		"lines": []map[string]any{
			{"account_id": bank, "debit": 100},
			{"account_id": sales, "credit": 99.99},
		},
	}
	resp := call(t, ts, http.MethodPost, "/journal-entries", unbalanced)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	subCentavo := map[string]any{
		"date": "2025-03-01", "concept": "Venta", "type": "Income",
		"lines": []map[string]any{{"account_id": bank, "debit": "1.001"}},
	}
	resp = call(t, ts, http.MethodPost, "/journal-entries", subCentavo)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status, string(resp.body))

	balanced := map[string]any{
		"date": "2025-03-01", "concept": "Venta", "type": "Income",
		"lines": []map[string]any{
			{"account_id": bank, "debit": "1,160.00"},
			{"account_id": sales, "credit": 1160},
		},
	}
	resp = call(t, ts, http.MethodPost, "/journal-entries", balanced)
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var entry ledger.JournalEntry
	resp.decode(t, &entry)
	assert.Equal(t, "I-001", entry.Number)
	assert.Equal(t, ledger.EntryDraft, entry.Status)
	assert.Contains(t, string(resp.body), `"debit":1160.00`)

	resp = call(t, ts, http.MethodPatch, "/journal-entries/"+entry.ID+"/status", map[string]string{"status": "Reviewed"})
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	var acct ledger.Account
	call(t, ts, http.MethodGet, "/accounts/"+bank, nil).decode(t, &acct)
	assert.Equal(t, ledger.Pesos(1160), acct.Balance)

	resp = call(t, ts, http.MethodPatch, "/journal-entries/"+entry.ID+"/status", map[string]string{"status": "Voided"})
	require.Equal(t, http.StatusOK, resp.status)
	resp = call(t, ts, http.MethodPatch, "/journal-entries/"+entry.ID+"/status", map[string]string{"status": "Voided"})
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodPost, "/journal-entries/template", map[string]any{"template": "aportacion-capital", "amount": 5000, "status": "Reviewed"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))

	var entries []ledger.JournalEntry
	call(t, ts, http.MethodGet, "/journal-entries?type=Diary", nil).decode(t, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "D-001", entries[0].Number)

	resp = call(t, ts, http.MethodGet, "/journal-entries?from=03-01-2025", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	var check books.BalanceCheck
	call(t, ts, http.MethodGet, "/reports/balance-check", nil).decode(t, &check)
	assert.True(t, check.Consistent)

	var tb ledger.TrialBalance
	call(t, ts, http.MethodGet, "/reports/trial-balance", nil).decode(t, &tb)
	assert.True(t, tb.Balanced)
	assert.Equal(t, ledger.Pesos(5000), tb.TotalDebit)
}

func TestInvoicesAndReceivables(t *testing.T) {
	ts := newTestServer(t)
	c := createClient(t, ts, "ABC010203XY1")

	resp := call(t, ts, http.MethodPost, "/invoices", map[string]any{"client_id": c.ID, "amount": 1000, "date": "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var inv ledger.Invoice
	resp.decode(t, &inv)
	assert.NotEmpty(t, inv.ReceivableID)

	resp = call(t, ts, http.MethodPost, "/invoices", map[string]any{"client_id": c.ID, "amount": 10, "cfdi_use": "ZZZ"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	path := "/receivables/" + inv.ReceivableID + "/payments"
	resp = call(t, ts, http.MethodPost, path, map[string]any{"amount": 400}, IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var paid books.PaymentResult
	resp.decode(t, &paid)
	assert.Equal(t, ledger.Pesos(400), paid.Applied)
	assert.Equal(t, ledger.ItemPartiallyPaid, paid.Item.Status)

	resp = call(t, ts, http.MethodPost, path, map[string]any{"amount": 400}, IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusOK, resp.status)
	resp.decode(t, &paid)
	assert.True(t, paid.Replayed)
	assert.Equal(t, ledger.Pesos(400), paid.Item.PaidAmount)

	resp = call(t, ts, http.MethodPost, path, map[string]any{"amount": -5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	resp = call(t, ts, http.MethodPost, "/invoices/"+inv.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodPost, "/receivables/"+inv.ReceivableID+"/mark-paid", nil)
	require.Equal(t, http.StatusOK, resp.status)
	var item ledger.OpenItem
	resp.decode(t, &item)
	assert.Equal(t, ledger.ItemPaid, item.Status)

	resp = call(t, ts, http.MethodPost, path, map[string]any{"amount": 1})
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodGet, "/payables/"+inv.ReceivableID, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	var exp ledger.CreditExposure
	call(t, ts, http.MethodGet, "/clients/"+c.ID+"/exposure", nil).decode(t, &exp)
	assert.Zero(t, exp.Exposure)

	var st ledger.Statement
	resp = call(t, ts, http.MethodGet, "/clients/"+c.ID+"/statement?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	resp.decode(t, &st)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, ledger.Pesos(1000), st.ClosingBalance)
}

func TestPayablesAndAging(t *testing.T) {
	ts := newTestServer(t)
	supplier := createClient(t, ts, "PCE990101AB1")

	resp := call(t, ts, http.MethodPost, "/payables", map[string]any{"supplier_id": supplier.ID, "total_amount": 800, "issue_date": "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var item ledger.OpenItem
	resp.decode(t, &item)
	assert.Equal(t, "2025-03-16", item.DueDate.String())

	resp = call(t, ts, http.MethodPost, "/payables", map[string]any{"supplier_id": "nope", "total_amount": 800})
	assert.Equal(t, http.StatusNotFound, resp.status)
	var er errorResponse
	resp.decode(t, &er)
	require.Len(t, er.Fields, 1)
	assert.Equal(t, "party_id", er.Fields[0].Field)

	resp = call(t, ts, http.MethodPost, "/payables", map[string]any{"supplier_id": supplier.ID, "total_amount": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	var rep ledger.AgingReport
	resp = call(t, ts, http.MethodGet, "/reports/aging?type=payable&entity="+supplier.ID, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	resp.decode(t, &rep)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, ledger.BucketPending, rep.Rows[0].Bucket)
	assert.Equal(t, 6, rep.Rows[0].DaysUntilDue)

	resp = call(t, ts, http.MethodGet, "/reports/aging?type=loans", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	var items []ledger.OpenItem
	call(t, ts, http.MethodGet, "/payables?party_id="+supplier.ID, nil).decode(t, &items)
	assert.Len(t, items, 1)
	call(t, ts, http.MethodGet, "/receivables", nil).decode(t, &items)
	assert.Empty(t, items)
}

func TestBankReconciliation(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, http.MethodPost, "/journal-entries/template", map[string]any{"template": "venta-contado", "amount": 1160, "status": "Reviewed"})
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var entry ledger.JournalEntry
	resp.decode(t, &entry)

	resp = call(t, ts, http.MethodPost, "/bank-transactions/import?format=generic",
		"date,description,amount\n2025-03-10,SPEI recibido,1160.00\n2025-03-10,Comision,-10\n")
	require.Equal(t, http.StatusCreated, resp.status, string(resp.body))
	var imported books.ImportResult
	resp.decode(t, &imported)
	require.Equal(t, 2, imported.Imported)
	txnID := imported.Transactions[0].ID

	var cands []ledger.JournalEntry
	call(t, ts, http.MethodGet, "/bank-transactions/"+txnID+"/candidates", nil).decode(t, &cands)
	require.Len(t, cands, 1)
	assert.Equal(t, entry.ID, cands[0].ID)

	resp = call(t, ts, http.MethodPost, "/reconciliation/match", map[string]string{"transaction_id": txnID, "journal_entry_id": entry.ID})
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))
	var res ledger.MatchResult
	resp.decode(t, &res)
	assert.Equal(t, ledger.Reconciled, res.Status)

	resp = call(t, ts, http.MethodPost, "/reconciliation/match", map[string]string{"transaction_id": txnID, "journal_entry_id": entry.ID})
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodPost, "/reconciliation/match", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	var txns []ledger.BankTransaction
	call(t, ts, http.MethodGet, "/bank-transactions?status=Unreconciled", nil).decode(t, &txns)
	assert.Len(t, txns, 1)
}

func TestBankImportMultipart(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "estado.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "Fecha,Concepto,Cargo,Abono,Saldo\n03/03/2025,DEPOSITO,,1500.00,1500.00\n")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := ts.Client().Post(ts.URL+"/api/v1/bank-transactions/import?format=bbva", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res books.ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "bbva", res.Format)
	assert.Equal(t, 1, res.Imported)
}

func TestTaxAndFiscal(t *testing.T) {
	ts := newTestServer(t)

	var events []ledger.TaxEvent
	resp := call(t, ts, http.MethodGet, "/tax-events?year=2025", nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp.decode(t, &events)
	assert.Len(t, events, 37)

	resp = call(t, ts, http.MethodPost, "/tax-events/2025-02-ISR/filed", nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp = call(t, ts, http.MethodPost, "/tax-events/2025-02-ISR/filed", nil)
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = call(t, ts, http.MethodGet, "/tax-events/upcoming?days=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)

	var check struct {
		Valid     bool   `json:"valid"`
		TaxRegime string `json:"tax_regime"`
	}
	call(t, ts, http.MethodGet, "/fiscal/rfc/ABC010203XY1", nil).decode(t, &check)
	assert.True(t, check.Valid)
	assert.Equal(t, "601", check.TaxRegime)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrUnbalancedEntry, http.StatusUnprocessableEntity},
		{ledger.FieldError{Field: "client_id", Err: ledger.ErrClientNotFound}, http.StatusNotFound},
		{ledger.ErrAccountNotFound, http.StatusNotFound},
		{ledger.ErrAlreadyVoided, http.StatusConflict},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapError(tt.err), tt.err.Error())
	}
}
