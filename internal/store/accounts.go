package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/libromayor/internal/ledger"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, code, name, type, nature, level, COALESCE(parent_id, ''), balance, status, created_at`

// CreateAccount stores a new account. Its balance at creation becomes the
// opening balance the balance audit starts from.
func (q *queries) CreateAccount(ctx context.Context, acct *ledger.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}

	_, err := q.w.ExecContext(ctx,
		`INSERT INTO accounts (id, code, name, type, nature, level, parent_id, opening_balance, balance, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Code, acct.Name, string(acct.Type), string(acct.Nature), acct.Level,
		nullString(acct.ParentID), int64(acct.Balance), int64(acct.Balance), string(acct.Status), formatTime(acct.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ledger.FieldError{Field: "code", Err: ledger.ErrDuplicateAccount, Detail: acct.Code}
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (q *queries) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (q *queries) GetAccountByCode(ctx context.Context, code string) (*ledger.Account, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code)
	return scanAccount(row)
}

func (q *queries) ListAccounts(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	args := []any{}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ParentID != "" {
		query += ` AND parent_id = ?`
		args = append(args, filter.ParentID)
	}
	query += ` ORDER BY code`

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []ledger.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// PostBalance moves an account's running balance by delta.
func (q *queries) PostBalance(ctx context.Context, id string, delta ledger.Amount) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE id = ?`, int64(delta), id)
	if err != nil {
		return fmt.Errorf("post balance: %w", err)
	}
	return expectOne(res, ledger.ErrAccountNotFound)
}

func (q *queries) SetAccountStatus(ctx context.Context, id string, status ledger.AccountStatus) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE accounts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set account status: %w", err)
	}
	return expectOne(res, ledger.ErrAccountNotFound)
}

func scanAccount(row scanner) (*ledger.Account, error) {
	var acct ledger.Account
	var balance int64
	var createdAt string
	err := row.Scan(&acct.ID, &acct.Code, &acct.Name, &acct.Type, &acct.Nature, &acct.Level,
		&acct.ParentID, &balance, &acct.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	acct.Balance = ledger.Amount(balance)
	acct.CreatedAt = parseTime(createdAt)
	return &acct, nil
}
