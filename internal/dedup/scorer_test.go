package dedup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kamthamc/wealthwise/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		wantReason  string
		parsed      model.ParsedTransaction
		existing    model.Transaction
		wantScore   int
	}{
		{
			name: "reference amount and date match with differing description",
			parsed: model.ParsedTransaction{
				Date:        day(2025, 1, 15),
				Description: "BigBasket Grocery",
				Amount:      amount("2500"),
				Type:        model.TypeExpense,
				Reference:   "UTR123",
			},
			existing: model.Transaction{
				Date:        day(2025, 1, 15),
				Description: "Grocery Store",
				Amount:      amount("2500"),
				Type:        model.TypeIncome, // type differs too
				ExternalRef: "UTR123",
			},
			// reference 45 + amount 25 + exact date 15
			wantScore:  85,
			wantReason: "Matching transaction reference",
		},
		{
			name: "near date only",
			parsed: model.ParsedTransaction{
				Date:        day(2025, 1, 15),
				Description: "Uber ride downtown",
				Amount:      amount("350.00"),
				Type:        model.TypeExpense,
			},
			existing: model.Transaction{
				Date:        day(2025, 1, 17),
				Description: "Salary credit January",
				Amount:      amount("350.50"),
				Type:        model.TypeIncome,
			},
			wantScore:  8,
			wantReason: "Date within 2 days",
		},
		{
			name: "everything matches",
			parsed: model.ParsedTransaction{
				Date:        day(2025, 3, 2),
				Description: "Amazon order 4411",
				Amount:      amount("1299.00"),
				Type:        model.TypeExpense,
				Reference:   "REF-777",
			},
			existing: model.Transaction{
				Date:        day(2025, 3, 2),
				Description: "Amazon Order 4411",
				Amount:      amount("1299.00"),
				Type:        model.TypeExpense,
				ExternalRef: "ref-777",
			},
			// 45+25+15+15+5 = 105, capped
			wantScore:  100,
			wantReason: "Similar description",
		},
		{
			name: "no signals fire",
			parsed: model.ParsedTransaction{
				Date:        day(2025, 1, 1),
				Description: "Coffee",
				Amount:      amount("120"),
				Type:        model.TypeExpense,
			},
			existing: model.Transaction{
				Date:        day(2025, 2, 1),
				Description: "Rent payment",
				Amount:      amount("30000"),
				Type:        model.TypeIncome,
			},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := Score(tt.parsed, tt.existing)
			if score != tt.wantScore {
				t.Errorf("score = %d, want %d (reasons: %v)", score, tt.wantScore, reasons)
			}
			if score > 0 && len(reasons) == 0 {
				t.Error("positive score must carry reasons")
			}
			if tt.wantReason != "" && !containsReason(reasons, tt.wantReason) {
				t.Errorf("reasons %v missing %q", reasons, tt.wantReason)
			}
		})
	}
}

func TestScoreConfidenceScenario(t *testing.T) {
	// Matching reference, amount and date but a different description
	// is high confidence, not exact.
	parsed := model.ParsedTransaction{
		Date:        day(2025, 1, 15),
		Description: "BigBasket Grocery",
		Amount:      amount("2500"),
		Type:        model.TypeExpense,
		Reference:   "UTR123",
	}
	existing := model.Transaction{
		Date:        day(2025, 1, 15),
		Description: "Grocery Store",
		Amount:      amount("2500"),
		Type:        model.TypeIncome,
		ExternalRef: "UTR123",
	}

	score, _ := Score(parsed, existing)
	if got := model.ConfidenceForScore(score); got != model.ConfidenceHigh {
		t.Errorf("confidence = %s (score %d), want high", got, score)
	}
}

func TestScoreReferenceMonotonicity(t *testing.T) {
	parsed := model.ParsedTransaction{
		Date:        day(2025, 1, 10),
		Description: "Electricity bill",
		Amount:      amount("840"),
		Type:        model.TypeExpense,
	}
	existing := model.Transaction{
		Date:        day(2025, 1, 10),
		Description: "Electricity bill",
		Amount:      amount("840"),
		Type:        model.TypeExpense,
	}

	without, _ := Score(parsed, existing)

	parsed.Reference = "CHQ-100"
	existing.ExternalRef = "chq-100"
	with, _ := Score(parsed, existing)

	if with <= without {
		t.Errorf("adding a reference match must strictly increase the score: %d -> %d", without, with)
	}
}

func TestScoreDateMonotonicity(t *testing.T) {
	parsed := model.ParsedTransaction{
		Date:        day(2025, 1, 10),
		Description: "Fuel",
		Amount:      amount("2000"),
		Type:        model.TypeExpense,
	}
	sameDay := model.Transaction{Date: day(2025, 1, 10), Description: "Fuel", Amount: amount("2000"), Type: model.TypeExpense}
	nearDay := model.Transaction{Date: day(2025, 1, 12), Description: "Fuel", Amount: amount("2000"), Type: model.TypeExpense}
	farDay := model.Transaction{Date: day(2025, 1, 20), Description: "Fuel", Amount: amount("2000"), Type: model.TypeExpense}

	exact, _ := Score(parsed, sameDay)
	near, _ := Score(parsed, nearDay)
	far, _ := Score(parsed, farDay)

	if exact < near {
		t.Errorf("exact date (%d) must score >= near date (%d)", exact, near)
	}
	if near <= far {
		t.Errorf("near date (%d) must score > out-of-window date (%d)", near, far)
	}
}

func TestScoreDeterminism(t *testing.T) {
	parsed := model.ParsedTransaction{
		Date:        day(2025, 5, 5),
		Description: "Netflix subscription",
		Amount:      amount("649"),
		Type:        model.TypeExpense,
		Reference:   "NFX-55",
	}
	existing := model.Transaction{
		Date:        day(2025, 5, 6),
		Description: "NETFLIX SUBSCRIPTION",
		Amount:      amount("649"),
		Type:        model.TypeExpense,
		ExternalRef: "NFX-55",
	}

	firstScore, firstReasons := Score(parsed, existing)
	for i := 0; i < 10; i++ {
		score, reasons := Score(parsed, existing)
		if score != firstScore || len(reasons) != len(firstReasons) {
			t.Fatalf("score not deterministic: run %d got %d/%v, first %d/%v",
				i, score, reasons, firstScore, firstReasons)
		}
	}
}

func containsReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
