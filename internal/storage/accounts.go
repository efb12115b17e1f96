package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/model"
)

// CreateAccount persists a new account.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(account.Name, "account name"); err != nil {
		return err
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Currency == "" {
		account.Currency = "INR"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, currency) VALUES (?, ?, ?)
	`, account.ID, account.Name, account.Currency)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount returns one account or common.ErrNotFound.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var account model.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, currency, created_at FROM accounts WHERE id = ?
	`, id).Scan(&account.ID, &account.Name, &account.Currency, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, currency, created_at FROM accounts ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.Currency, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
