package ledger

import "context"

type AccountFilter struct {
	Type     AccountType
	Status   AccountStatus
	ParentID string
}

type EntryFilter struct {
	Type           EntryType
	Status         EntryStatus
	ClientID       string
	Reconciliation ReconciliationStatus
	From           Date
	To             Date
	Limit          int
	Offset         int
}

type ClientFilter struct {
	Status ClientStatus
	Search string // substring of name or RFC
}

type InvoiceFilter struct {
	ClientID  string
	SATStatus SATStatus
}

// ItemFilter narrows open item listings. Date bounds apply to the due date.
type ItemFilter struct {
	Kind    ItemKind
	PartyID string
	From    Date
	To      Date
}

type BankFilter struct {
	Status ReconciliationStatus
	From   Date
	To     Date
}

// AccountActivity is the debit and credit total posted to one account by
// entries whose balances are currently applied.
type AccountActivity struct {
	AccountID string `json:"account_id"`
	Debit     Amount `json:"debit"`
	Credit    Amount `json:"credit"`
}

// AccountRepository stores the chart of accounts and its balances.
type AccountRepository interface {
	CreateAccount(ctx context.Context, acct *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	GetAccountByCode(ctx context.Context, code string) (*Account, error)
	ListAccounts(ctx context.Context, f AccountFilter) ([]Account, error)
	PostBalance(ctx context.Context, id string, delta Amount) error
	SetAccountStatus(ctx context.Context, id string, status AccountStatus) error
	OpeningBalances(ctx context.Context) (map[string]Amount, error)
	PostedActivity(ctx context.Context) ([]AccountActivity, error)
}

// LedgerRepository stores journal entries and everything derived from
// them: invoices, open items with their payments, and bank movements.
type LedgerRepository interface {
	CreateEntry(ctx context.Context, e *JournalEntry) error
	GetEntry(ctx context.Context, id string) (*JournalEntry, error)
	ListEntries(ctx context.Context, f EntryFilter) ([]JournalEntry, error)
	EntryNumbers(ctx context.Context, prefix string) ([]string, error)
	EntryNumberTaken(ctx context.Context, number string) (bool, error)
	UpdateEntryStatus(ctx context.Context, id string, status EntryStatus, posted bool) error
	UpdateEntryReconciliation(ctx context.Context, id string, status ReconciliationStatus, bankTxnID string) error

	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id string, status SATStatus) error

	CreateOpenItem(ctx context.Context, item *OpenItem) error
	GetOpenItem(ctx context.Context, kind ItemKind, id string) (*OpenItem, error)
	ListOpenItems(ctx context.Context, f ItemFilter) ([]OpenItem, error)
	UpdateOpenItem(ctx context.Context, item *OpenItem) error
	AddPayment(ctx context.Context, itemID string, p *Payment) error
	PaymentByKey(ctx context.Context, key string) (itemID string, p *Payment, err error)

	CreateBankTransaction(ctx context.Context, txn *BankTransaction) error
	GetBankTransaction(ctx context.Context, id string) (*BankTransaction, error)
	ListBankTransactions(ctx context.Context, f BankFilter) ([]BankTransaction, error)
	BankReferenceExists(ctx context.Context, ref string) (bool, error)
	UpdateBankTransaction(ctx context.Context, txn *BankTransaction) error
}

// PartyRepository stores clients, which double as suppliers.
type PartyRepository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id string) (*Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	AdjustClientBalance(ctx context.Context, id string, delta Amount) error
}

type TaxRepository interface {
	SaveTaxEvents(ctx context.Context, events []TaxEvent) error
	ListTaxEvents(ctx context.Context, year int) ([]TaxEvent, error)
	GetTaxEvent(ctx context.Context, id string) (*TaxEvent, error)
	UpdateTaxEvent(ctx context.Context, e *TaxEvent) error
}

// Repository is the full persistence boundary. Atomic runs fn so that
// every write made through the Repository it receives lands together or
// not at all. Calling Atomic inside fn joins the running unit of work.
type Repository interface {
	AccountRepository
	LedgerRepository
	PartyRepository
	TaxRepository
	Atomic(ctx context.Context, fn func(Repository) error) error
}
