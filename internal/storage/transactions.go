package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/model"
)

const transactionColumns = `id, account_id, date, description, amount, type,
	COALESCE(category, ''), external_ref, COALESCE(import_reference, ''),
	COALESCE(file_hash, ''), COALESCE(import_source, ''), import_date, created_at`

// FindInWindow returns the account's transactions within +/- windowDays
// of date, ordered by date then id for deterministic output.
func (s *SQLiteStorage) FindInWindow(ctx context.Context, accountID string, date time.Time, windowDays int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if err := validateDate(date, "date"); err != nil {
		return nil, err
	}

	start := date.AddDate(0, 0, -windowDays)
	end := date.AddDate(0, 0, windowDays)
	return s.FindInRange(ctx, accountID, start, end)
}

// FindInRange returns the account's transactions with start <= date <= end.
func (s *SQLiteStorage) FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	startDay := startOfDay(start)
	endDay := startOfDay(end).AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE account_id = ? AND date >= ? AND date < ?
		ORDER BY date, id
	`, transactionColumns), accountID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// GetTransactionByID returns one transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM transactions WHERE id = ?
	`, transactionColumns), id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Create persists a new ledger transaction and returns its id. A
// unique-constraint hit on (account_id, external_ref) surfaces as
// common.ErrDuplicateEntry: another import already committed this row.
func (s *SQLiteStorage) Create(ctx context.Context, txn *model.Transaction) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := txn.Validate(); err != nil {
		return "", fmt.Errorf("invalid transaction: %w", err)
	}

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, account_id, date, description, amount, type, category,
			external_ref, import_reference, file_hash, import_source, import_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.AccountID,
		startOfDay(txn.Date),
		txn.Description,
		txn.Amount.StringFixed(2),
		string(txn.Type),
		nullable(txn.Category),
		txn.ExternalRef,
		nullable(txn.ImportReference),
		nullable(txn.FileHash),
		nullable(txn.ImportSource),
		nullTime(txn.ImportDate),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return "", fmt.Errorf("transaction with reference %q already exists: %w",
				txn.ExternalRef, common.ErrDuplicateEntry)
		}
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return txn.ID, nil
}

// Update applies the non-nil patch fields to an existing transaction.
func (s *SQLiteStorage) Update(ctx context.Context, id string, patch model.TransactionPatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	var sets []string
	var args []any

	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, startOfDay(*patch.Date))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.ExternalRef != nil {
		sets = append(sets, "external_ref = ?")
		args = append(args, *patch.ExternalRef)
	}
	if patch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*patch.Type))
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, patch.Amount.StringFixed(2))
	}

	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var amount string
	var importDate sql.NullTime

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Date,
		&txn.Description,
		&amount,
		&txn.Type,
		&txn.Category,
		&txn.ExternalRef,
		&txn.ImportReference,
		&txn.FileHash,
		&txn.ImportSource,
		&importDate,
		&txn.CreatedAt,
	)
	if err != nil {
		return txn, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return txn, fmt.Errorf("corrupt amount %q for transaction %s: %w", amount, txn.ID, err)
	}
	if importDate.Valid {
		txn.ImportDate = importDate.Time
	}
	return txn, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
