// Package dedup implements duplicate detection for imported bank
// statement rows: a deterministic scorer over independent match
// signals, a per-row detector, and an order-preserving batch checker.
package dedup

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kamthamc/wealthwise/internal/model"
)

// Signal weights. Reference equality is near-certain proof of
// duplication (bank references are unique per transaction) so it
// dominates; amount+date together approximate reference strength;
// description similarity is the noisiest signal and weighs least.
const (
	referencePoints   = 45
	amountPoints      = 25
	exactDatePoints   = 15
	nearDatePoints    = 8
	descriptionPoints = 15
	typePoints        = 5

	// nearDateDays is how far apart two dates may be and still count
	// as a near match, covering posting-date vs value-date skew.
	nearDateDays = 3

	// similarityFloor is the minimum normalized description
	// similarity for the description signal to fire.
	similarityFloor = 0.8
)

// amountEpsilon treats amounts within a hundredth as equal.
var amountEpsilon = decimal.New(1, -2)

// Score compares a parsed row against one existing transaction and
// returns a 0-100 score with the reasons that contributed. Pure
// function: no side effects, no clock reads.
func Score(parsed model.ParsedTransaction, existing model.Transaction) (int, []string) {
	score := 0
	var reasons []string

	if ref := normalizeReference(parsed.Reference); ref != "" && ref == normalizeReference(existing.ExternalRef) {
		score += referencePoints
		reasons = append(reasons, "Matching transaction reference")
	}

	if parsed.Amount.Sub(existing.Amount).Abs().LessThan(amountEpsilon) {
		score += amountPoints
		reasons = append(reasons, "Exact amount match")
	}

	switch days := dateDistanceDays(parsed.Date, existing.Date); {
	case days == 0:
		score += exactDatePoints
		reasons = append(reasons, "Same date")
	case days <= nearDateDays:
		score += nearDatePoints
		reasons = append(reasons, fmt.Sprintf("Date within %d days", days))
	}

	if DescriptionSimilarity(parsed.Description, existing.Description) >= similarityFloor {
		score += descriptionPoints
		reasons = append(reasons, "Similar description")
	}

	if parsed.Type == existing.Type {
		score += typePoints
		reasons = append(reasons, "Same transaction type")
	}

	if score > model.MaxScore {
		score = model.MaxScore
	}
	return score, reasons
}

// normalizeReference makes reference comparison case and whitespace
// insensitive.
func normalizeReference(ref string) string {
	return strings.ToLower(strings.Join(strings.Fields(ref), ""))
}

// dateDistanceDays returns the absolute calendar-day distance,
// ignoring time-of-day.
func dateDistanceDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
