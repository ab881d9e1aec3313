package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Chart of accounts
		`CREATE TABLE IF NOT EXISTS accounts (
			id              TEXT PRIMARY KEY,
			code            TEXT NOT NULL UNIQUE,
			name            TEXT NOT NULL,
			type            TEXT NOT NULL CHECK (type IN ('Asset','Liability','Equity','Income','Expense')),
			nature          TEXT NOT NULL CHECK (nature IN ('Debit','Credit')),
			level           INTEGER NOT NULL CHECK (level >= 1),
			parent_id       TEXT REFERENCES accounts(id),
			opening_balance INTEGER NOT NULL DEFAULT 0,
			balance         INTEGER NOT NULL DEFAULT 0,
			status          TEXT NOT NULL CHECK (status IN ('Active','Inactive')),
			created_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_id)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id                    TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			rfc                   TEXT NOT NULL UNIQUE,
			type                  TEXT NOT NULL CHECK (type IN ('Individual','LegalEntity')),
			status                TEXT NOT NULL CHECK (status IN ('Active','Inactive')),
			email                 TEXT NOT NULL DEFAULT '',
			phone                 TEXT NOT NULL DEFAULT '',
			address               TEXT NOT NULL DEFAULT '',
			tax_regime            TEXT NOT NULL DEFAULT '',
			associated_account_id TEXT REFERENCES accounts(id),
			credit_limit          INTEGER NOT NULL DEFAULT 0,
			credit_days           INTEGER NOT NULL DEFAULT 0,
			balance               INTEGER NOT NULL DEFAULT 0,
			internal_notes        TEXT NOT NULL DEFAULT '',
			created_at            TEXT NOT NULL
		)`,

		// Journal entries (pólizas). posted is 1 while the entry's lines
		// are reflected in account balances.
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id                  TEXT PRIMARY KEY,
			number              TEXT NOT NULL UNIQUE,
			date                TEXT NOT NULL,
			concept             TEXT NOT NULL,
			type                TEXT NOT NULL CHECK (type IN ('Income','Expense','Diary')),
			status              TEXT NOT NULL CHECK (status IN ('Draft','Reviewed','Voided')),
			posted              INTEGER NOT NULL DEFAULT 0,
			reference           TEXT NOT NULL DEFAULT '',
			client_id           TEXT REFERENCES clients(id),
			invoice_id          TEXT,
			reconciliation      TEXT NOT NULL CHECK (reconciliation IN ('Unreconciled','Reconciled','Mismatch')),
			bank_transaction_id TEXT,
			created_at          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON journal_entries(date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_client ON journal_entries(client_id)`,

		`CREATE TABLE IF NOT EXISTS journal_entry_lines (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id    TEXT NOT NULL REFERENCES journal_entries(id),
			account_id  TEXT NOT NULL REFERENCES accounts(id),
			description TEXT NOT NULL DEFAULT '',
			debit       INTEGER NOT NULL CHECK (debit >= 0),
			credit      INTEGER NOT NULL CHECK (credit >= 0),
			CHECK ((debit > 0) <> (credit > 0))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_entry ON journal_entry_lines(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_account ON journal_entry_lines(account_id)`,

		// Trigger: an entry may only leave Draft when its lines balance
		`CREATE TRIGGER IF NOT EXISTS trg_entry_balanced
		BEFORE UPDATE OF status ON journal_entries
		WHEN NEW.status = 'Reviewed'
		BEGIN
			SELECT CASE
				WHEN (SELECT COUNT(*) FROM journal_entry_lines WHERE entry_id = NEW.id) < 2
				THEN RAISE(ABORT, 'journal entry needs at least two lines')
				WHEN (SELECT SUM(debit) - SUM(credit) FROM journal_entry_lines WHERE entry_id = NEW.id) != 0
				THEN RAISE(ABORT, 'journal entry lines do not balance')
			END;
		END`,

		// Trigger: voided is terminal
		`CREATE TRIGGER IF NOT EXISTS trg_entry_void_terminal
		BEFORE UPDATE OF status ON journal_entries
		WHEN OLD.status = 'Voided' AND NEW.status != 'Voided'
		BEGIN
			SELECT RAISE(ABORT, 'voided journal entries cannot change status');
		END`,

		// Trigger: lines are immutable once written
		`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable_update
		BEFORE UPDATE ON journal_entry_lines
		BEGIN
			SELECT RAISE(ABORT, 'journal entry lines cannot be modified');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable_delete
		BEFORE DELETE ON journal_entry_lines
		BEGIN
			SELECT RAISE(ABORT, 'journal entry lines cannot be removed');
		END`,

		// Trigger: no new lines once an entry left Draft
		`CREATE TRIGGER IF NOT EXISTS trg_lines_draft_only
		BEFORE INSERT ON journal_entry_lines
		WHEN (SELECT status FROM journal_entries WHERE id = NEW.entry_id) != 'Draft'
		BEGIN
			SELECT RAISE(ABORT, 'cannot add lines to a reviewed or voided entry');
		END`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id               TEXT PRIMARY KEY,
			client_id        TEXT NOT NULL REFERENCES clients(id),
			date             TEXT NOT NULL,
			amount           INTEGER NOT NULL CHECK (amount > 0),
			cfdi_use         TEXT NOT NULL,
			sat_status       TEXT NOT NULL CHECK (sat_status IN ('Valid','Cancelled')),
			journal_entry_id TEXT REFERENCES journal_entries(id),
			receivable_id    TEXT,
			file_name        TEXT NOT NULL DEFAULT '',
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id)`,

		// Receivables and payables share one table
		`CREATE TABLE IF NOT EXISTS open_items (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL CHECK (kind IN ('receivable','payable')),
			party_id     TEXT NOT NULL REFERENCES clients(id),
			invoice_id   TEXT,
			reference    TEXT NOT NULL DEFAULT '',
			issue_date   TEXT NOT NULL,
			due_date     TEXT NOT NULL,
			total_amount INTEGER NOT NULL CHECK (total_amount > 0),
			paid_amount  INTEGER NOT NULL DEFAULT 0,
			status       TEXT NOT NULL,
			cancelled    INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL,
			CHECK (paid_amount >= 0 AND paid_amount <= total_amount)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_open_items_party ON open_items(kind, party_id)`,
		`CREATE INDEX IF NOT EXISTS idx_open_items_due ON open_items(due_date)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id              TEXT PRIMARY KEY,
			item_id         TEXT NOT NULL REFERENCES open_items(id),
			date            TEXT NOT NULL,
			amount          INTEGER NOT NULL CHECK (amount > 0),
			notes           TEXT NOT NULL DEFAULT '',
			idempotency_key TEXT UNIQUE,
			created_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_item ON payments(item_id)`,

		// Trigger: payments are append-only
		`CREATE TRIGGER IF NOT EXISTS trg_payments_immutable_update
		BEFORE UPDATE ON payments
		BEGIN
			SELECT RAISE(ABORT, 'payments cannot be modified');
		END`,
		`CREATE TRIGGER IF NOT EXISTS trg_payments_immutable_delete
		BEFORE DELETE ON payments
		BEGIN
			SELECT RAISE(ABORT, 'payments cannot be removed');
		END`,

		`CREATE TABLE IF NOT EXISTS bank_transactions (
			id               TEXT PRIMARY KEY,
			date             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			amount           INTEGER NOT NULL CHECK (amount > 0),
			direction        TEXT NOT NULL CHECK (direction IN ('debit','credit')),
			status           TEXT NOT NULL CHECK (status IN ('Unreconciled','Reconciled','Mismatch')),
			journal_entry_id TEXT REFERENCES journal_entries(id),
			reference        TEXT UNIQUE,
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_status ON bank_transactions(status)`,

		`CREATE TABLE IF NOT EXISTS tax_events (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			obligation TEXT NOT NULL,
			period     TEXT NOT NULL,
			due_date   TEXT NOT NULL,
			status     TEXT NOT NULL CHECK (status IN ('Pending','Filed')),
			filed_at   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tax_events_due ON tax_events(due_date)`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}
