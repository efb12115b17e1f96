package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is the normalized representation of one imported
// statement row. It is created by the column-mapping step and never
// mutated afterwards.
type ParsedTransaction struct {
	Date        time.Time
	Description string
	Category    string
	Reference   string
	Type        TransactionType
	Amount      decimal.Decimal
}

// Validate reports whether the row carries every required field.
func (p *ParsedTransaction) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if p.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if !ValidTransactionType(p.Type) {
		return fmt.Errorf("invalid transaction type: %q", p.Type)
	}
	return nil
}
