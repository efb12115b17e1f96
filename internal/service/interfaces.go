// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/kamthamc/wealthwise/internal/model"
)

// Statement is the raw output of parsing one uploaded file: a header
// row plus one name->value map per data row.
type Statement struct {
	Headers []string
	Rows    []map[string]string
}

// TransactionRepository is the persistence contract for the ledger.
type TransactionRepository interface {
	// FindInWindow returns the account's transactions whose date falls
	// within +/- windowDays of date.
	FindInWindow(ctx context.Context, accountID string, date time.Time, windowDays int) ([]model.Transaction, error)
	// FindInRange returns the account's transactions with start <= date <= end.
	FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	Create(ctx context.Context, txn *model.Transaction) (string, error)
	Update(ctx context.Context, id string, patch model.TransactionPatch) error

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// Import-run provenance
	RecordImportRun(ctx context.Context, run *model.ImportRun) error
	GetImportRunByFileHash(ctx context.Context, fileHash string) (*model.ImportRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// StatementExtractor turns an opaque document (a PDF statement) into a
// tabular Statement. Implemented outside this repository; the import
// pipeline only consumes it.
type StatementExtractor interface {
	Extract(ctx context.Context, r io.Reader) (*Statement, error)
}

// ReviewPrompter is the interactive surface the pipeline drives during
// column mapping and the review stage.
type ReviewPrompter interface {
	// ConfirmMapping shows the proposed column mapping and returns the
	// (possibly edited) final mapping.
	ConfirmMapping(ctx context.Context, headers []string, proposal model.ColumnMapping) (model.ColumnMapping, error)
	// ConfirmReimport warns that the same file was imported before.
	// Returning false cancels the import.
	ConfirmReimport(ctx context.Context, prior *model.ImportRun) (bool, error)
	// ReviewTransactions lets the user adjust per-item actions.
	// Returning false cancels before commit.
	ReviewTransactions(ctx context.Context, items []*model.ReviewItem) (bool, error)
}

// CommitStats aggregates the outcome of committing one review batch.
type CommitStats struct {
	Created  int
	Updated  int
	Skipped  int
	Failed   int
	FailedAt []int // indices of failed rows, in review order
}

// Succeeded returns the number of rows that produced a successful
// repository call.
func (s CommitStats) Succeeded() int {
	return s.Created + s.Updated
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
