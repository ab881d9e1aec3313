package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

const clientColumns = `id, name, rfc, type, status, email, phone, address, tax_regime,
	COALESCE(associated_account_id, ''), credit_limit, credit_days, balance, internal_notes, created_at`

func (q *queries) CreateClient(ctx context.Context, c *ledger.Client) error {
	_, err := q.w.ExecContext(ctx,
		`INSERT INTO clients (id, name, rfc, type, status, email, phone, address, tax_regime, associated_account_id, credit_limit, credit_days, balance, internal_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.RFC, string(c.Type), string(c.Status), c.Email, c.Phone, c.Address, c.TaxRegime,
		nullString(c.AssociatedAccountID), int64(c.CreditLimit), c.CreditDays, int64(c.Balance),
		c.InternalNotes, formatTime(c.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ledger.FieldError{Field: "rfc", Err: ledger.ErrDuplicateClient, Detail: c.RFC}
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (q *queries) GetClient(ctx context.Context, id string) (*ledger.Client, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (q *queries) ListClients(ctx context.Context, filter ledger.ClientFilter) ([]ledger.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query += ` AND (name LIKE ? OR rfc LIKE ?)`
		like := "%" + s + "%"
		args = append(args, like, strings.ToUpper(like))
	}
	query += ` ORDER BY name, id`

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []ledger.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// UpdateClient rewrites the editable fields. The balance only moves
// through AdjustClientBalance.
func (q *queries) UpdateClient(ctx context.Context, c *ledger.Client) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE clients SET name = ?, rfc = ?, type = ?, status = ?, email = ?, phone = ?, address = ?,
			tax_regime = ?, associated_account_id = ?, credit_limit = ?, credit_days = ?, internal_notes = ?
		WHERE id = ?`,
		c.Name, c.RFC, string(c.Type), string(c.Status), c.Email, c.Phone, c.Address, c.TaxRegime,
		nullString(c.AssociatedAccountID), int64(c.CreditLimit), c.CreditDays, c.InternalNotes, c.ID,
	)
	if isUniqueViolation(err) {
		return ledger.FieldError{Field: "rfc", Err: ledger.ErrDuplicateClient, Detail: c.RFC}
	}
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return expectOne(res, ledger.ErrClientNotFound)
}

func (q *queries) AdjustClientBalance(ctx context.Context, id string, delta ledger.Amount) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE clients SET balance = balance + ? WHERE id = ?`, int64(delta), id)
	if err != nil {
		return fmt.Errorf("adjust client balance: %w", err)
	}
	return expectOne(res, ledger.ErrClientNotFound)
}

func scanClient(row scanner) (*ledger.Client, error) {
	var c ledger.Client
	var limit, balance int64
	var createdAt string
	err := row.Scan(&c.ID, &c.Name, &c.RFC, &c.Type, &c.Status, &c.Email, &c.Phone, &c.Address,
		&c.TaxRegime, &c.AssociatedAccountID, &limit, &c.CreditDays, &balance, &c.InternalNotes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.CreditLimit = ledger.Amount(limit)
	c.Balance = ledger.Amount(balance)
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}
