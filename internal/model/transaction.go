package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType categorizes the direction of money movement.
type TransactionType string

// Transaction types.
const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// ValidTransactionType reports whether t is one of the known types.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Transaction represents a single persisted ledger transaction.
type Transaction struct {
	Date            time.Time
	ImportDate      time.Time
	CreatedAt       time.Time
	ID              string
	AccountID       string
	Description     string
	Category        string
	ExternalRef     string // Bank-provided reference (UTR, FITID, cheque number)
	ImportReference string
	FileHash        string
	ImportSource    string
	Type            TransactionType
	Amount          decimal.Decimal // Positive magnitude; Type carries direction
}

// GenerateHash creates a content hash for traceability.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate checks the transaction for storage.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return fmt.Errorf("account id is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if !ValidTransactionType(t.Type) {
		return fmt.Errorf("invalid transaction type: %q", t.Type)
	}
	return nil
}

// TransactionPatch holds the fields an update may apply onto an
// existing transaction. Nil fields are left untouched.
type TransactionPatch struct {
	Date        *time.Time
	Description *string
	Category    *string
	ExternalRef *string
	Type        *TransactionType
	Amount      *decimal.Decimal
}

// Account is a minimal account record; transactions belong to exactly one.
type Account struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Currency  string
}
