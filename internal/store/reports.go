package store

import (
	"context"
	"fmt"

	"github.com/simonvc/libromayor/internal/ledger"
)

// OpeningBalances returns every account's balance at creation, keyed by id.
func (q *queries) OpeningBalances(ctx context.Context) (map[string]ledger.Amount, error) {
	rows, err := q.r.QueryContext(ctx, `SELECT id, opening_balance FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("opening balances: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ledger.Amount)
	for rows.Next() {
		var id string
		var balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("scan opening balance: %w", err)
		}
		out[id] = ledger.Amount(balance)
	}
	return out, rows.Err()
}

// PostedActivity sums the lines of every entry whose balances are
// currently applied, per account.
func (q *queries) PostedActivity(ctx context.Context) ([]ledger.AccountActivity, error) {
	rows, err := q.r.QueryContext(ctx,
		`SELECT l.account_id, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.posted = 1
		GROUP BY l.account_id
		ORDER BY l.account_id`)
	if err != nil {
		return nil, fmt.Errorf("posted activity: %w", err)
	}
	defer rows.Close()

	activity := []ledger.AccountActivity{}
	for rows.Next() {
		var a ledger.AccountActivity
		var debit, credit int64
		if err := rows.Scan(&a.AccountID, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scan posted activity: %w", err)
		}
		a.Debit = ledger.Amount(debit)
		a.Credit = ledger.Amount(credit)
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
