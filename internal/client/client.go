// Package client is a typed HTTP client for the libromayor API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/libromayor/internal/books"
	"github.com/simonvc/libromayor/internal/fiscal"
	"github.com/simonvc/libromayor/internal/ledger"
)

// DefaultTimeout bounds every request. Calls are never retried.
const DefaultTimeout = 30 * time.Second

// idempotencyKeyHeader must match the header the server reads.
const idempotencyKeyHeader = "Idempotency-Key"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FieldMessage is one field-level problem reported by the server.
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int            `json:"-"`
	Message string         `json:"error"`
	Fields  []FieldMessage `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("server error (%d): %s [%s]", e.Status, e.Message, strings.Join(parts, "; "))
}

// --- accounts ---

type NewAccount struct {
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Type           ledger.AccountType `json:"type"`
	Nature         ledger.Nature      `json:"nature,omitempty"`
	Level          int                `json:"level,omitempty"`
	ParentID       string             `json:"parent_id,omitempty"`
	OpeningBalance ledger.Amount      `json:"opening_balance"`
}

func (c *Client) CreateAccount(ctx context.Context, acct NewAccount) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.post(ctx, "/api/v1/accounts", acct, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, f ledger.AccountFilter) ([]ledger.Account, error) {
	params := url.Values{}
	setParam(params, "type", string(f.Type))
	setParam(params, "status", string(f.Status))
	setParam(params, "parent_id", f.ParentID)
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SetAccountStatus(ctx context.Context, id string, status ledger.AccountStatus) (*ledger.Account, error) {
	body := map[string]any{"status": status}
	var result ledger.Account
	if err := c.patch(ctx, "/api/v1/accounts/"+url.PathEscape(id)+"/status", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- journal ---

func (c *Client) CreateEntry(ctx context.Context, e *ledger.JournalEntry) (*ledger.JournalEntry, error) {
	body := map[string]any{
		"number":    e.Number,
		"date":      e.Date,
		"concept":   e.Concept,
		"type":      e.Type,
		"status":    e.Status,
		"reference": e.Reference,
		"client_id": e.ClientID,
		"lines":     e.Lines,
	}
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/journal-entries", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateTemplateEntry(ctx context.Context, req books.TemplateEntry) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/journal-entries/template", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListEntries(ctx context.Context, f ledger.EntryFilter) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	setParam(params, "type", string(f.Type))
	setParam(params, "status", string(f.Status))
	setParam(params, "client_id", f.ClientID)
	setParam(params, "reconciliation", string(f.Reconciliation))
	setDates(params, f.From, f.To)
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		params.Set("offset", strconv.Itoa(f.Offset))
	}
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/journal-entries", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/journal-entries/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SetEntryStatus(ctx context.Context, id string, status ledger.EntryStatus) (*ledger.JournalEntry, error) {
	body := map[string]any{"status": status}
	var result ledger.JournalEntry
	if err := c.patch(ctx, "/api/v1/journal-entries/"+url.PathEscape(id)+"/status", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]ledger.Template, error) {
	var result []ledger.Template
	if err := c.get(ctx, "/api/v1/templates", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- clients ---

func (c *Client) CreateClient(ctx context.Context, cl *ledger.Client) (*ledger.Client, error) {
	var result ledger.Client
	if err := c.post(ctx, "/api/v1/clients", cl, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateClient(ctx context.Context, id string, cl *ledger.Client) (*ledger.Client, error) {
	var result ledger.Client
	if err := c.put(ctx, "/api/v1/clients/"+url.PathEscape(id), cl, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListClients(ctx context.Context, f ledger.ClientFilter) ([]ledger.Client, error) {
	params := url.Values{}
	setParam(params, "status", string(f.Status))
	setParam(params, "q", f.Search)
	var result []ledger.Client
	if err := c.get(ctx, "/api/v1/clients", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetClient(ctx context.Context, id string) (*ledger.Client, error) {
	var result ledger.Client
	if err := c.get(ctx, "/api/v1/clients/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreditExposure(ctx context.Context, clientID string) (*ledger.CreditExposure, error) {
	var result ledger.CreditExposure
	if err := c.get(ctx, "/api/v1/clients/"+url.PathEscape(clientID)+"/exposure", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Delinquency(ctx context.Context, clientID string) (*ledger.Delinquency, error) {
	var result ledger.Delinquency
	if err := c.get(ctx, "/api/v1/clients/"+url.PathEscape(clientID)+"/delinquency", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Statement(ctx context.Context, clientID string, from, to ledger.Date) (*ledger.Statement, error) {
	params := url.Values{}
	setDates(params, from, to)
	var result ledger.Statement
	if err := c.get(ctx, "/api/v1/clients/"+url.PathEscape(clientID)+"/statement", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CheckRFC(ctx context.Context, rfc string) (*fiscal.RFCCheck, error) {
	var result fiscal.RFCCheck
	if err := c.get(ctx, "/api/v1/fiscal/rfc/"+url.PathEscape(rfc), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- invoices ---

func (c *Client) CreateInvoice(ctx context.Context, inv *ledger.Invoice) (*ledger.Invoice, error) {
	body := map[string]any{
		"id":        inv.ID,
		"client_id": inv.ClientID,
		"date":      inv.Date,
		"amount":    inv.Amount,
		"cfdi_use":  inv.CFDIUse,
		"file_name": inv.FileName,
	}
	var result ledger.Invoice
	if err := c.post(ctx, "/api/v1/invoices", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListInvoices(ctx context.Context, f ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	params := url.Values{}
	setParam(params, "client_id", f.ClientID)
	setParam(params, "sat_status", string(f.SATStatus))
	var result []ledger.Invoice
	if err := c.get(ctx, "/api/v1/invoices", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	var result ledger.Invoice
	if err := c.get(ctx, "/api/v1/invoices/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CancelInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	var result ledger.Invoice
	if err := c.post(ctx, "/api/v1/invoices/"+url.PathEscape(id)+"/cancel", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- receivables and payables ---

func itemPath(kind ledger.ItemKind) string {
	if kind == ledger.Payable {
		return "/api/v1/payables"
	}
	return "/api/v1/receivables"
}

func (c *Client) CreatePayable(ctx context.Context, item *ledger.OpenItem) (*ledger.OpenItem, error) {
	body := map[string]any{
		"supplier_id":  item.PartyID,
		"invoice_id":   item.InvoiceID,
		"reference":    item.Reference,
		"issue_date":   item.IssueDate,
		"due_date":     item.DueDate,
		"total_amount": item.TotalAmount,
	}
	var result ledger.OpenItem
	if err := c.post(ctx, "/api/v1/payables", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListOpenItems(ctx context.Context, f ledger.ItemFilter) ([]ledger.OpenItem, error) {
	params := url.Values{}
	setParam(params, "party_id", f.PartyID)
	setDates(params, f.From, f.To)
	var result []ledger.OpenItem
	if err := c.get(ctx, itemPath(f.Kind), params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetOpenItem(ctx context.Context, kind ledger.ItemKind, id string) (*ledger.OpenItem, error) {
	var result ledger.OpenItem
	if err := c.get(ctx, itemPath(kind)+"/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordPayment sends the payment with req.IdempotencyKey, generating one
// when empty. Reusing the returned key on retry cannot apply it twice.
func (c *Client) RecordPayment(ctx context.Context, kind ledger.ItemKind, id string, req books.PaymentRequest) (*books.PaymentResult, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	var result books.PaymentResult
	path := itemPath(kind) + "/" + url.PathEscape(id) + "/payments"
	if err := c.send(ctx, http.MethodPost, path, req, &result, idempotencyKeyHeader, req.IdempotencyKey); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) MarkAsPaid(ctx context.Context, kind ledger.ItemKind, id string) (*ledger.OpenItem, error) {
	var result ledger.OpenItem
	if err := c.post(ctx, itemPath(kind)+"/"+url.PathEscape(id)+"/mark-paid", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- bank reconciliation ---

func (c *Client) AddBankTransaction(ctx context.Context, txn *ledger.BankTransaction) (*ledger.BankTransaction, error) {
	body := map[string]any{
		"date":        txn.Date,
		"description": txn.Description,
		"amount":      txn.Amount,
		"direction":   txn.Direction,
		"reference":   txn.Reference,
	}
	var result ledger.BankTransaction
	if err := c.post(ctx, "/api/v1/bank-transactions", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportBankStatement uploads a statement file as multipart form data.
func (c *Client) ImportBankStatement(ctx context.Context, format, filename string, src io.Reader) (*books.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	params := url.Values{}
	setParam(params, "format", format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/v1/bank-transactions/import", params), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result books.ImportResult
	if err := c.doRequest(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListBankTransactions(ctx context.Context, f ledger.BankFilter) ([]ledger.BankTransaction, error) {
	params := url.Values{}
	setParam(params, "status", string(f.Status))
	setDates(params, f.From, f.To)
	var result []ledger.BankTransaction
	if err := c.get(ctx, "/api/v1/bank-transactions", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetBankTransaction(ctx context.Context, id string) (*ledger.BankTransaction, error) {
	var result ledger.BankTransaction
	if err := c.get(ctx, "/api/v1/bank-transactions/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Candidates(ctx context.Context, txnID string) ([]ledger.JournalEntry, error) {
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/bank-transactions/"+url.PathEscape(txnID)+"/candidates", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Match(ctx context.Context, txnID, entryID string) (*ledger.MatchResult, error) {
	body := map[string]string{"transaction_id": txnID, "journal_entry_id": entryID}
	var result ledger.MatchResult
	if err := c.post(ctx, "/api/v1/reconciliation/match", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- reports ---

func (c *Client) AgingReport(ctx context.Context, f ledger.AgingFilter) (*ledger.AgingReport, error) {
	params := url.Values{}
	setParam(params, "type", string(f.Kind))
	setParam(params, "entity", f.PartyID)
	setDates(params, f.From, f.To)
	var result ledger.AgingReport
	if err := c.get(ctx, "/api/v1/reports/aging", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) TrialBalance(ctx context.Context) (*ledger.TrialBalance, error) {
	var result ledger.TrialBalance
	if err := c.get(ctx, "/api/v1/reports/trial-balance", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceSheet(ctx context.Context) (*ledger.BalanceSheet, error) {
	var result ledger.BalanceSheet
	if err := c.get(ctx, "/api/v1/reports/balance-sheet", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceCheck(ctx context.Context) (*books.BalanceCheck, error) {
	var result books.BalanceCheck
	if err := c.get(ctx, "/api/v1/reports/balance-check", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetChart(ctx context.Context) ([]ledger.ChartEntry, error) {
	var result []ledger.ChartEntry
	if err := c.get(ctx, "/api/v1/chart", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// --- tax calendar ---

func (c *Client) TaxEvents(ctx context.Context, year int) ([]ledger.TaxEvent, error) {
	params := url.Values{}
	if year != 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var result []ledger.TaxEvent
	if err := c.get(ctx, "/api/v1/tax-events", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GenerateTaxYear(ctx context.Context, year int) ([]ledger.TaxEvent, error) {
	body := map[string]int{"year": year}
	var result []ledger.TaxEvent
	if err := c.post(ctx, "/api/v1/tax-events/generate", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) UpcomingTaxEvents(ctx context.Context, days int) ([]ledger.TaxEvent, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))
	var result []ledger.TaxEvent
	if err := c.get(ctx, "/api/v1/tax-events/upcoming", params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) MarkTaxEventFiled(ctx context.Context, id string) (*ledger.TaxEvent, error) {
	var result ledger.TaxEvent
	if err := c.post(ctx, "/api/v1/tax-events/"+url.PathEscape(id)+"/filed", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setDates(params url.Values, from, to ledger.Date) {
	if !from.IsZero() {
		params.Set("from", from.String())
	}
	if !to.IsZero() {
		params.Set("to", to.String())
	}
}

func (c *Client) url(path string, params url.Values) string {
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, params), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.send(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.send(ctx, http.MethodPut, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.send(ctx, http.MethodPatch, path, body, result)
}

// send marshals body as JSON. headers are key, value pairs.
func (c *Client) send(ctx context.Context, method, path string, body, result any, headers ...string) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
