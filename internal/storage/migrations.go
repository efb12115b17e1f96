package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the
// application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: accounts and transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'INR',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL,
					category TEXT,
					external_ref TEXT NOT NULL DEFAULT '',
					import_reference TEXT,
					file_hash TEXT,
					import_source TEXT,
					import_date DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (account_id) REFERENCES accounts(id)
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_id, date)`,
				// Optimistic recheck at commit time: two racing imports
				// cannot both insert the same bank-referenced row.
				`CREATE UNIQUE INDEX idx_transactions_account_ref
					ON transactions(account_id, external_ref)
					WHERE external_ref <> ''`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("executing %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Import run provenance",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS import_runs (
					reference TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					file_hash TEXT NOT NULL,
					file_name TEXT,
					source TEXT,
					created_count INTEGER NOT NULL DEFAULT 0,
					updated_count INTEGER NOT NULL DEFAULT 0,
					skipped_count INTEGER NOT NULL DEFAULT 0,
					failed_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_import_runs_file_hash ON import_runs(file_hash)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("executing %q: %w", q[:40], err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration",
			"version", m.Version,
			"description", m.Description)
		current = m.Version
	}

	if current != ExpectedSchemaVersion {
		return fmt.Errorf("schema version is %d, expected %d", current, ExpectedSchemaVersion)
	}
	return nil
}
