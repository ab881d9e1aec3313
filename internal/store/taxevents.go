package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/simonvc/libromayor/internal/ledger"
)

const taxEventColumns = `id, name, obligation, period, due_date, status, filed_at`

// SaveTaxEvents inserts events that do not exist yet. Existing events keep
// their status, so regenerating a year never un-files anything.
func (q *queries) SaveTaxEvents(ctx context.Context, events []ledger.TaxEvent) error {
	return q.atomically(ctx, func(w dbtx) error {
		for i := range events {
			e := &events[i]
			var filedAt sql.NullString
			if e.FiledAt != nil {
				filedAt = nullString(formatTime(*e.FiledAt))
			}
			_, err := w.ExecContext(ctx,
				`INSERT INTO tax_events (id, name, obligation, period, due_date, status, filed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
				e.ID, e.Name, string(e.Obligation), e.Period, formatDate(e.DueDate), string(e.Status), filedAt,
			)
			if err != nil {
				return fmt.Errorf("insert tax event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// ListTaxEvents returns the events whose period falls in year, by due date.
func (q *queries) ListTaxEvents(ctx context.Context, year int) ([]ledger.TaxEvent, error) {
	rows, err := q.r.QueryContext(ctx,
		`SELECT `+taxEventColumns+` FROM tax_events WHERE substr(period, 1, 4) = ? ORDER BY due_date, id`,
		strconv.Itoa(year))
	if err != nil {
		return nil, fmt.Errorf("list tax events: %w", err)
	}
	defer rows.Close()

	events := []ledger.TaxEvent{}
	for rows.Next() {
		e, err := scanTaxEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (q *queries) GetTaxEvent(ctx context.Context, id string) (*ledger.TaxEvent, error) {
	row := q.r.QueryRowContext(ctx, `SELECT `+taxEventColumns+` FROM tax_events WHERE id = ?`, id)
	return scanTaxEvent(row)
}

func (q *queries) UpdateTaxEvent(ctx context.Context, e *ledger.TaxEvent) error {
	var filedAt sql.NullString
	if e.FiledAt != nil {
		filedAt = nullString(formatTime(*e.FiledAt))
	}
	res, err := q.w.ExecContext(ctx,
		`UPDATE tax_events SET status = ?, filed_at = ? WHERE id = ?`, string(e.Status), filedAt, e.ID)
	if err != nil {
		return fmt.Errorf("update tax event: %w", err)
	}
	return expectOne(res, ledger.ErrTaxEventNotFound)
}

func scanTaxEvent(row scanner) (*ledger.TaxEvent, error) {
	var e ledger.TaxEvent
	var due string
	var filedAt sql.NullString
	err := row.Scan(&e.ID, &e.Name, &e.Obligation, &e.Period, &due, &e.Status, &filedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTaxEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tax event: %w", err)
	}
	e.DueDate = parseDate(due)
	if filedAt.Valid {
		t := parseTime(filedAt.String)
		e.FiledAt = &t
	}
	return &e, nil
}
