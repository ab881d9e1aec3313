package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

const entryColumns = `id, number, date, concept, type, status, reference, COALESCE(client_id, ''),
	COALESCE(invoice_id, ''), reconciliation, COALESCE(bank_transaction_id, ''), created_at`

// CreateEntry writes an entry and its lines. The row is inserted as Draft
// and then moved to its requested status, so the balance trigger checks
// every entry that is created already reviewed.
func (q *queries) CreateEntry(ctx context.Context, e *ledger.JournalEntry) error {
	return q.atomically(ctx, func(w dbtx) error {
		_, err := w.ExecContext(ctx,
			`INSERT INTO journal_entries (id, number, date, concept, type, status, posted, reference, client_id, invoice_id, reconciliation, bank_transaction_id, created_at)
			VALUES (?, ?, ?, ?, ?, 'Draft', 0, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Number, formatDate(e.Date), e.Concept, string(e.Type), e.Reference,
			nullString(e.ClientID), nullString(e.InvoiceID), string(e.Reconciliation),
			nullString(e.BankTransactionID), formatTime(e.CreatedAt),
		)
		if isUniqueViolation(err) {
			return ledger.FieldError{Field: "number", Err: ledger.ErrDuplicateEntryNumber, Detail: e.Number}
		}
		if err != nil {
			return fmt.Errorf("insert journal entry: %w", err)
		}

		for i := range e.Lines {
			l := &e.Lines[i]
			res, err := w.ExecContext(ctx,
				`INSERT INTO journal_entry_lines (entry_id, account_id, description, debit, credit) VALUES (?, ?, ?, ?, ?)`,
				e.ID, l.AccountID, l.Description, int64(l.Debit), int64(l.Credit),
			)
			if err != nil {
				return fmt.Errorf("insert line %d: %w", i, err)
			}
			if l.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("line %d id: %w", i, err)
			}
		}

		if e.Status != ledger.EntryDraft {
			// Trigger fires here to check the lines balance
			_, err = w.ExecContext(ctx,
				`UPDATE journal_entries SET status = ?, posted = ? WHERE id = ?`,
				string(e.Status), boolToInt(e.Posted()), e.ID)
			if err != nil {
				return fmt.Errorf("finalize journal entry: %w", err)
			}
		}
		return nil
	})
}

// atomically runs fn on the current transaction, or on a fresh one when
// q is not inside a unit of work.
func (q *queries) atomically(ctx context.Context, fn func(w dbtx) error) error {
	if q.tx {
		return fn(q.w)
	}
	db, ok := q.w.(*sql.DB)
	if !ok {
		return fn(q.w)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (q *queries) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	lines, err := q.entryLines(ctx, []string{e.ID})
	if err != nil {
		return nil, err
	}
	e.Lines = lines[e.ID]
	if e.Lines == nil {
		e.Lines = []ledger.JournalEntryLine{}
	}
	return e, nil
}

// ListEntries returns entries ordered by date, number, creation time and
// id, with their lines loaded.
func (q *queries) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]ledger.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []any{}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, filter.ClientID)
	}
	if filter.Reconciliation != "" {
		query += ` AND reconciliation = ?`
		args = append(args, string(filter.Reconciliation))
	}
	if !filter.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(filter.To))
	}
	query += ` ORDER BY date, number, created_at, id` + pageClause(filter.Limit, filter.Offset)

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []ledger.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
	}
	lines, err := q.entryLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
		if entries[i].Lines == nil {
			entries[i].Lines = []ledger.JournalEntryLine{}
		}
	}
	return entries, nil
}

func (q *queries) entryLines(ctx context.Context, ids []string) (map[string][]ledger.JournalEntryLine, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.r.QueryContext(ctx,
		`SELECT id, entry_id, account_id, description, debit, credit
		FROM journal_entry_lines WHERE entry_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]ledger.JournalEntryLine, len(ids))
	for rows.Next() {
		var l ledger.JournalEntryLine
		var entryID string
		var debit, credit int64
		if err := rows.Scan(&l.ID, &entryID, &l.AccountID, &l.Description, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		l.Debit = ledger.Amount(debit)
		l.Credit = ledger.Amount(credit)
		out[entryID] = append(out[entryID], l)
	}
	return out, rows.Err()
}

// EntryNumbers lists every number that starts with prefix.
func (q *queries) EntryNumbers(ctx context.Context, prefix string) ([]string, error) {
	rows, err := q.r.QueryContext(ctx,
		`SELECT number FROM journal_entries WHERE substr(number, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("entry numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan entry number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (q *queries) EntryNumberTaken(ctx context.Context, number string) (bool, error) {
	var n int
	err := q.r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journal_entries WHERE number = ?`, number).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check entry number: %w", err)
	}
	return n > 0, nil
}

// UpdateEntryStatus changes an entry's status and records whether its
// lines are currently applied to account balances.
func (q *queries) UpdateEntryStatus(ctx context.Context, id string, status ledger.EntryStatus, posted bool) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE journal_entries SET status = ?, posted = ? WHERE id = ?`,
		string(status), boolToInt(posted), id)
	if err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}
	return expectOne(res, ledger.ErrEntryNotFound)
}

func (q *queries) UpdateEntryReconciliation(ctx context.Context, id string, status ledger.ReconciliationStatus, bankTxnID string) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE journal_entries SET reconciliation = ?, bank_transaction_id = ? WHERE id = ?`,
		string(status), nullString(bankTxnID), id)
	if err != nil {
		return fmt.Errorf("update entry reconciliation: %w", err)
	}
	return expectOne(res, ledger.ErrEntryNotFound)
}

func scanEntry(row scanner) (*ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	var date, createdAt string
	err := row.Scan(&e.ID, &e.Number, &date, &e.Concept, &e.Type, &e.Status, &e.Reference,
		&e.ClientID, &e.InvoiceID, &e.Reconciliation, &e.BankTransactionID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journal entry: %w", err)
	}
	e.Date = parseDate(date)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}
