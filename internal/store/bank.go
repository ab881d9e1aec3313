package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/libromayor/internal/ledger"
)

const bankColumns = `id, date, description, amount, direction, status, COALESCE(journal_entry_id, ''),
	COALESCE(reference, ''), created_at`

func (q *queries) CreateBankTransaction(ctx context.Context, txn *ledger.BankTransaction) error {
	_, err := q.w.ExecContext(ctx,
		`INSERT INTO bank_transactions (id, date, description, amount, direction, status, journal_entry_id, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, formatDate(txn.Date), txn.Description, int64(txn.Amount), string(txn.Direction),
		string(txn.Status), nullString(txn.JournalEntryID), nullString(txn.Reference), formatTime(txn.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ledger.FieldError{Field: "reference", Err: ledger.ErrDuplicateBankRef, Detail: txn.Reference}
	}
	if err != nil {
		return fmt.Errorf("insert bank transaction: %w", err)
	}
	return nil
}

func (q *queries) GetBankTransaction(ctx context.Context, id string) (*ledger.BankTransaction, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+bankColumns+` FROM bank_transactions WHERE id = ?`, id)
	return scanBankTransaction(row)
}

func (q *queries) ListBankTransactions(ctx context.Context, filter ledger.BankFilter) ([]ledger.BankTransaction, error) {
	query := `SELECT ` + bankColumns + ` FROM bank_transactions WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(filter.To))
	}
	query += ` ORDER BY date, created_at, id`

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bank transactions: %w", err)
	}
	defer rows.Close()

	txns := []ledger.BankTransaction{}
	for rows.Next() {
		txn, err := scanBankTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

func (q *queries) BankReferenceExists(ctx context.Context, ref string) (bool, error) {
	var n int
	err := q.r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bank_transactions WHERE reference = ?`, ref).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check bank reference: %w", err)
	}
	return n > 0, nil
}

// UpdateBankTransaction stores the reconciliation outcome.
func (q *queries) UpdateBankTransaction(ctx context.Context, txn *ledger.BankTransaction) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE bank_transactions SET status = ?, journal_entry_id = ? WHERE id = ?`,
		string(txn.Status), nullString(txn.JournalEntryID), txn.ID)
	if err != nil {
		return fmt.Errorf("update bank transaction: %w", err)
	}
	return expectOne(res, ledger.ErrBankTxnNotFound)
}

func scanBankTransaction(row scanner) (*ledger.BankTransaction, error) {
	var txn ledger.BankTransaction
	var date, createdAt string
	var amount int64
	err := row.Scan(&txn.ID, &date, &txn.Description, &amount, &txn.Direction, &txn.Status,
		&txn.JournalEntryID, &txn.Reference, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrBankTxnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bank transaction: %w", err)
	}
	txn.Date = parseDate(date)
	txn.Amount = ledger.Amount(amount)
	txn.CreatedAt = parseTime(createdAt)
	return &txn, nil
}
