package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/simonvc/libromayor/internal/ledger"
)

const itemColumns = `id, kind, party_id, COALESCE(invoice_id, ''), reference, issue_date, due_date,
	total_amount, paid_amount, status, cancelled, created_at`

// CreateOpenItem stores a receivable or payable. Payments already on the
// item are written with it.
func (q *queries) CreateOpenItem(ctx context.Context, item *ledger.OpenItem) error {
	return q.atomically(ctx, func(w dbtx) error {
		_, err := w.ExecContext(ctx,
			`INSERT INTO open_items (id, kind, party_id, invoice_id, reference, issue_date, due_date, total_amount, paid_amount, status, cancelled, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, string(item.Kind), item.PartyID, nullString(item.InvoiceID), item.Reference,
			formatDate(item.IssueDate), formatDate(item.DueDate), int64(item.TotalAmount), int64(item.PaidAmount),
			string(item.Status), boolToInt(item.Cancelled), formatTime(item.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert open item: %w", err)
		}
		for i := range item.Payments {
			if err := insertPayment(ctx, w, item.ID, &item.Payments[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOpenItem loads an item of the given kind with its payment history.
// An item of the other kind reports not found.
func (q *queries) GetOpenItem(ctx context.Context, kind ledger.ItemKind, id string) (*ledger.OpenItem, error) {
	row := q.r.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM open_items WHERE id = ? AND kind = ?`, id, string(kind))
	item, err := scanOpenItem(row)
	if err != nil {
		return nil, err
	}
	payments, err := q.payments(ctx, []string{item.ID})
	if err != nil {
		return nil, err
	}
	item.Payments = payments[item.ID]
	if item.Payments == nil {
		item.Payments = []ledger.Payment{}
	}
	return item, nil
}

func (q *queries) ListOpenItems(ctx context.Context, filter ledger.ItemFilter) ([]ledger.OpenItem, error) {
	query := `SELECT ` + itemColumns + ` FROM open_items WHERE 1=1`
	args := []any{}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.PartyID != "" {
		query += ` AND party_id = ?`
		args = append(args, filter.PartyID)
	}
	if !filter.From.IsZero() {
		query += ` AND due_date >= ?`
		args = append(args, formatDate(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND due_date <= ?`
		args = append(args, formatDate(filter.To))
	}
	query += ` ORDER BY due_date, id`

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list open items: %w", err)
	}
	defer rows.Close()

	items := []ledger.OpenItem{}
	for rows.Next() {
		item, err := scanOpenItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	payments, err := q.payments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Payments = payments[items[i].ID]
		if items[i].Payments == nil {
			items[i].Payments = []ledger.Payment{}
		}
	}
	return items, nil
}

// UpdateOpenItem stores the item's paid amount, status and cancellation.
// Payments are appended separately through AddPayment.
func (q *queries) UpdateOpenItem(ctx context.Context, item *ledger.OpenItem) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE open_items SET paid_amount = ?, status = ?, cancelled = ?, due_date = ?, reference = ? WHERE id = ?`,
		int64(item.PaidAmount), string(item.Status), boolToInt(item.Cancelled),
		formatDate(item.DueDate), item.Reference, item.ID)
	if err != nil {
		return fmt.Errorf("update open item: %w", err)
	}
	return expectOne(res, ledger.ErrOpenItemNotFound)
}

func (q *queries) AddPayment(ctx context.Context, itemID string, p *ledger.Payment) error {
	return insertPayment(ctx, q.w, itemID, p)
}

// PaymentByKey finds the payment recorded under an idempotency key.
func (q *queries) PaymentByKey(ctx context.Context, key string) (string, *ledger.Payment, error) {
	var p ledger.Payment
	var itemID, date, createdAt string
	var amount int64
	err := q.r.QueryRowContext(ctx,
		`SELECT item_id, id, date, amount, notes, created_at FROM payments WHERE idempotency_key = ?`, key,
	).Scan(&itemID, &p.ID, &date, &amount, &p.Notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ledger.ErrOpenItemNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("payment by key: %w", err)
	}
	p.Date = parseDate(date)
	p.Amount = ledger.Amount(amount)
	p.IdempotencyKey = key
	p.CreatedAt = parseTime(createdAt)
	return itemID, &p, nil
}

func insertPayment(ctx context.Context, w dbtx, itemID string, p *ledger.Payment) error {
	_, err := w.ExecContext(ctx,
		`INSERT INTO payments (id, item_id, date, amount, notes, idempotency_key, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, itemID, formatDate(p.Date), int64(p.Amount), p.Notes, nullString(p.IdempotencyKey), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (q *queries) payments(ctx context.Context, itemIDs []string) (map[string][]ledger.Payment, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := q.r.QueryContext(ctx,
		`SELECT item_id, id, date, amount, notes, COALESCE(idempotency_key, ''), created_at
		FROM payments WHERE item_id IN (`+placeholders+`) ORDER BY date, created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]ledger.Payment, len(itemIDs))
	for rows.Next() {
		var p ledger.Payment
		var itemID, date, createdAt string
		var amount int64
		if err := rows.Scan(&itemID, &p.ID, &date, &amount, &p.Notes, &p.IdempotencyKey, &createdAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Date = parseDate(date)
		p.Amount = ledger.Amount(amount)
		p.CreatedAt = parseTime(createdAt)
		out[itemID] = append(out[itemID], p)
	}
	return out, rows.Err()
}

func scanOpenItem(row scanner) (*ledger.OpenItem, error) {
	var item ledger.OpenItem
	var issue, due, createdAt string
	var total, paid int64
	var cancelled int
	err := row.Scan(&item.ID, &item.Kind, &item.PartyID, &item.InvoiceID, &item.Reference, &issue, &due,
		&total, &paid, &item.Status, &cancelled, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrOpenItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan open item: %w", err)
	}
	item.IssueDate = parseDate(issue)
	item.DueDate = parseDate(due)
	item.TotalAmount = ledger.Amount(total)
	item.PaidAmount = ledger.Amount(paid)
	item.Outstanding = item.TotalAmount - item.PaidAmount
	item.Cancelled = cancelled == 1
	item.CreatedAt = parseTime(createdAt)
	return &item, nil
}
