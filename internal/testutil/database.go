// Package testutil provides shared test fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/storage"
)

// TestAccountID is the account seeded into every test database.
const TestAccountID = "acct-test"

// SetupTestDB creates a migrated in-memory database with one seeded
// account. Cleanup is automatic.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	account := &model.Account{ID: TestAccountID, Name: "Test Savings", Currency: "INR"}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
