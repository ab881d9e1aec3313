package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/libromayor/internal/ledger"
)

const invoiceColumns = `id, client_id, date, amount, cfdi_use, sat_status, COALESCE(journal_entry_id, ''),
	COALESCE(receivable_id, ''), file_name, created_at`

func (q *queries) CreateInvoice(ctx context.Context, inv *ledger.Invoice) error {
	_, err := q.w.ExecContext(ctx,
		`INSERT INTO invoices (id, client_id, date, amount, cfdi_use, sat_status, journal_entry_id, receivable_id, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ClientID, formatDate(inv.Date), int64(inv.Amount), inv.CFDIUse, string(inv.SATStatus),
		nullString(inv.JournalEntryID), nullString(inv.ReceivableID), inv.FileName, formatTime(inv.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ledger.FieldError{Field: "id", Err: ledger.ErrDuplicateInvoice, Detail: inv.ID}
	}
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (q *queries) GetInvoice(ctx context.Context, id string) (*ledger.Invoice, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}

func (q *queries) ListInvoices(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}

	if filter.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, filter.ClientID)
	}
	if filter.SATStatus != "" {
		query += ` AND sat_status = ?`
		args = append(args, string(filter.SATStatus))
	}
	query += ` ORDER BY date, created_at, id`

	rows, err := q.r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []ledger.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (q *queries) UpdateInvoiceStatus(ctx context.Context, id string, status ledger.SATStatus) error {
	res, err := q.w.ExecContext(ctx,
		`UPDATE invoices SET sat_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return expectOne(res, ledger.ErrInvoiceNotFound)
}

func scanInvoice(row scanner) (*ledger.Invoice, error) {
	var inv ledger.Invoice
	var amount int64
	var date, createdAt string
	err := row.Scan(&inv.ID, &inv.ClientID, &date, &amount, &inv.CFDIUse, &inv.SATStatus,
		&inv.JournalEntryID, &inv.ReceivableID, &inv.FileName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	inv.Date = parseDate(date)
	inv.Amount = ledger.Amount(amount)
	inv.CreatedAt = parseTime(createdAt)
	return &inv, nil
}
