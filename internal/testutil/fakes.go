package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/model"
)

// FakeRepository is an in-memory service.TransactionRepository for
// tests, with per-call failure injection.
type FakeRepository struct {
	Accounts     map[string]model.Account
	Transactions []model.Transaction
	ImportRuns   []model.ImportRun

	// FindErr fails every find call when set.
	FindErr error
	// FailCreateFor fails Create for matching descriptions.
	FailCreateFor map[string]bool
	// FailUpdate fails every Update call when set.
	FailUpdate error

	FindCalls   int
	CreateCalls int
	UpdateCalls int
	Updates     []AppliedPatch
}

// AppliedPatch records one Update call.
type AppliedPatch struct {
	ID    string
	Patch model.TransactionPatch
}

// NewFakeRepository creates a fake with the standard test account.
func NewFakeRepository(existing ...model.Transaction) *FakeRepository {
	return &FakeRepository{
		Accounts: map[string]model.Account{
			TestAccountID: {ID: TestAccountID, Name: "Test Savings", Currency: "INR"},
		},
		Transactions: existing,
	}
}

func (f *FakeRepository) FindInWindow(_ context.Context, accountID string, date time.Time, windowDays int) ([]model.Transaction, error) {
	f.FindCalls++
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	start := date.AddDate(0, 0, -windowDays)
	end := date.AddDate(0, 0, windowDays)
	return f.inRange(accountID, start, end), nil
}

func (f *FakeRepository) FindInRange(_ context.Context, accountID string, start, end time.Time) ([]model.Transaction, error) {
	f.FindCalls++
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	return f.inRange(accountID, start, end), nil
}

func (f *FakeRepository) inRange(accountID string, start, end time.Time) []model.Transaction {
	var out []model.Transaction
	for _, txn := range f.Transactions {
		if txn.AccountID != accountID {
			continue
		}
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func (f *FakeRepository) GetTransactionByID(_ context.Context, id string) (*model.Transaction, error) {
	for i := range f.Transactions {
		if f.Transactions[i].ID == id {
			txn := f.Transactions[i]
			return &txn, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
}

func (f *FakeRepository) Create(_ context.Context, txn *model.Transaction) (string, error) {
	f.CreateCalls++
	if f.FailCreateFor[txn.Description] {
		return "", fmt.Errorf("injected create failure for %q", txn.Description)
	}
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	f.Transactions = append(f.Transactions, *txn)
	return txn.ID, nil
}

func (f *FakeRepository) Update(_ context.Context, id string, patch model.TransactionPatch) error {
	f.UpdateCalls++
	if f.FailUpdate != nil {
		return f.FailUpdate
	}
	f.Updates = append(f.Updates, AppliedPatch{ID: id, Patch: patch})
	return nil
}

func (f *FakeRepository) CreateAccount(_ context.Context, account *model.Account) error {
	if f.Accounts == nil {
		f.Accounts = make(map[string]model.Account)
	}
	f.Accounts[account.ID] = *account
	return nil
}

func (f *FakeRepository) GetAccount(_ context.Context, id string) (*model.Account, error) {
	if account, ok := f.Accounts[id]; ok {
		return &account, nil
	}
	return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
}

func (f *FakeRepository) ListAccounts(_ context.Context) ([]model.Account, error) {
	var out []model.Account
	for _, account := range f.Accounts {
		out = append(out, account)
	}
	return out, nil
}

func (f *FakeRepository) RecordImportRun(_ context.Context, run *model.ImportRun) error {
	f.ImportRuns = append(f.ImportRuns, *run)
	return nil
}

func (f *FakeRepository) GetImportRunByFileHash(_ context.Context, fileHash string) (*model.ImportRun, error) {
	for i := len(f.ImportRuns) - 1; i >= 0; i-- {
		if f.ImportRuns[i].FileHash == fileHash {
			run := f.ImportRuns[i]
			return &run, nil
		}
	}
	return nil, fmt.Errorf("import run: %w", common.ErrNotFound)
}

func (f *FakeRepository) Migrate(_ context.Context) error { return nil }

func (f *FakeRepository) Close() error { return nil }
