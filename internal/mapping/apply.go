package mapping

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/service"
)

// dateLayouts are tried in order. Day-first layouts come before the
// US layout because the supported bank exports are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"02-Jan-2006",
	"02 Jan 2006",
	"2006/01/02",
	"01/02/2006",
}

// Apply materializes parsed transactions from statement rows using
// the confirmed mapping. Rows missing a required field are dropped
// and logged, not fatal; an empty result is an error because the
// import has nothing to offer the reviewer.
func Apply(stmt *service.Statement, m model.ColumnMapping) ([]model.ParsedTransaction, error) {
	if !m.Complete() {
		return nil, common.NewUserError(
			"Column mapping must assign date, description and an amount",
			common.ErrInvalidConfig)
	}

	var parsed []model.ParsedTransaction
	dropped := 0

	for i, row := range stmt.Rows {
		p, err := applyRow(row, m)
		if err != nil {
			dropped++
			slog.Debug("Dropping unmappable row", "row", i+1, "error", err)
			continue
		}
		parsed = append(parsed, p)
	}

	if dropped > 0 {
		slog.Info("Dropped rows missing required fields",
			"dropped", dropped,
			"kept", len(parsed))
	}

	if len(parsed) == 0 {
		return nil, common.NewUserError("No valid transactions found in file", common.ErrNoValidRows)
	}
	return parsed, nil
}

func applyRow(row map[string]string, m model.ColumnMapping) (model.ParsedTransaction, error) {
	var p model.ParsedTransaction

	dateCol, _ := m.ColumnFor(model.FieldDate)
	date, err := parseDate(row[dateCol])
	if err != nil {
		return p, err
	}
	p.Date = date

	descCol, _ := m.ColumnFor(model.FieldDescription)
	p.Description = strings.TrimSpace(row[descCol])
	if p.Description == "" {
		return p, fmt.Errorf("empty description")
	}

	amount, txnType, err := resolveAmount(row, m)
	if err != nil {
		return p, err
	}
	p.Amount = amount
	p.Type = txnType

	if col, ok := m.ColumnFor(model.FieldCategory); ok {
		p.Category = strings.TrimSpace(row[col])
	}
	if col, ok := m.ColumnFor(model.FieldReference); ok {
		p.Reference = strings.TrimSpace(row[col])
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// resolveAmount derives the positive magnitude and transaction type.
// A debit/credit column pair wins: nonzero debit is an expense,
// nonzero credit an income. A single amount column uses the mapped
// type column when present, otherwise the amount's sign.
func resolveAmount(row map[string]string, m model.ColumnMapping) (decimal.Decimal, model.TransactionType, error) {
	debitCol, hasDebit := m.ColumnFor(model.FieldAmountDebit)
	creditCol, hasCredit := m.ColumnFor(model.FieldAmountCredit)

	if hasDebit || hasCredit {
		if hasDebit {
			if debit, ok := parseNonzeroAmount(row[debitCol]); ok {
				return debit.Abs(), model.TypeExpense, nil
			}
		}
		if hasCredit {
			if credit, ok := parseNonzeroAmount(row[creditCol]); ok {
				return credit.Abs(), model.TypeIncome, nil
			}
		}
		return decimal.Zero, "", fmt.Errorf("no debit or credit amount")
	}

	amountCol, _ := m.ColumnFor(model.FieldAmount)
	amount, err := parseAmount(row[amountCol])
	if err != nil {
		return decimal.Zero, "", err
	}

	if col, ok := m.ColumnFor(model.FieldType); ok {
		txnType, typeErr := parseType(row[col])
		if typeErr != nil {
			return decimal.Zero, "", typeErr
		}
		return amount.Abs(), txnType, nil
	}

	// No type column: the sign carries direction.
	if amount.IsNegative() {
		return amount.Abs(), model.TypeExpense, nil
	}
	return amount, model.TypeIncome, nil
}

// parseAmount handles currency symbols, thousands separators and
// accounting-style parentheses for negatives.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func parseNonzeroAmount(raw string) (decimal.Decimal, bool) {
	amount, err := parseAmount(raw)
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}
	return amount, true
}

// parseType normalizes the bank's type vocabulary onto ours.
func parseType(raw string) (model.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "income", "credit", "cr", "deposit", "dep", "directdep", "int", "div":
		return model.TypeIncome, nil
	case "expense", "debit", "dr", "withdrawal", "payment", "check", "atm", "pos", "fee", "debit_card":
		return model.TypeExpense, nil
	case "transfer", "xfer":
		return model.TypeTransfer, nil
	}
	return "", fmt.Errorf("unrecognized transaction type %q", raw)
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
