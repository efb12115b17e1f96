package dedup

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/testutil"
)

func TestDetectorDetect(t *testing.T) {
	existing := []model.Transaction{
		{
			ID:          "t1",
			AccountID:   testutil.TestAccountID,
			Date:        day(2025, 1, 15),
			Description: "Grocery Store",
			Amount:      amount("2500"),
			Type:        model.TypeExpense,
			ExternalRef: "UTR123",
		},
		{
			ID:          "t2",
			AccountID:   testutil.TestAccountID,
			Date:        day(2025, 1, 14),
			Description: "Completely unrelated",
			Amount:      amount("99999"),
			Type:        model.TypeIncome,
		},
	}
	repo := testutil.NewFakeRepository(existing...)
	detector := NewDetector(repo, DefaultWindowDays)

	parsed := model.ParsedTransaction{
		Date:        day(2025, 1, 15),
		Description: "BigBasket Grocery",
		Amount:      amount("2500"),
		Type:        model.TypeExpense,
		Reference:   "UTR123",
	}

	result, err := detector.Detect(context.Background(), testutil.TestAccountID, parsed)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.IsNewTransaction {
		t.Fatal("expected a duplicate match")
	}
	best := result.BestMatch()
	if best.Existing.ID != "t1" {
		t.Errorf("best match id = %s, want t1", best.Existing.ID)
	}
	if best.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %s, want high", best.Confidence)
	}

	// t2 shares nothing but... the near-date signal fires, so it may
	// appear as a weak possible match; it must never outrank t1.
	for _, m := range result.DuplicateMatches[1:] {
		if m.Score >= best.Score {
			t.Errorf("weaker match score %d outranks best %d", m.Score, best.Score)
		}
	}
}

func TestDetectorNewTransaction(t *testing.T) {
	repo := testutil.NewFakeRepository()
	detector := NewDetector(repo, DefaultWindowDays)

	parsed := model.ParsedTransaction{
		Date:        day(2025, 6, 1),
		Description: "First ever transaction",
		Amount:      amount("10"),
		Type:        model.TypeExpense,
	}

	result, err := detector.Detect(context.Background(), testutil.TestAccountID, parsed)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !result.IsNewTransaction {
		t.Error("expected a new transaction")
	}
	if len(result.DuplicateMatches) != 0 {
		t.Error("new transaction must have no matches")
	}
}

func TestDetectorFetchErrorPropagates(t *testing.T) {
	repo := testutil.NewFakeRepository()
	repo.FindErr = errors.New("repository unreachable")
	detector := NewDetector(repo, DefaultWindowDays)

	_, err := detector.Detect(context.Background(), testutil.TestAccountID, model.ParsedTransaction{
		Date:        day(2025, 6, 1),
		Description: "whatever",
		Amount:      amount("10"),
		Type:        model.TypeExpense,
	})
	if err == nil {
		t.Fatal("fetch failure must propagate, never default to new")
	}
}

func TestDetectorTieBreaking(t *testing.T) {
	// Two candidates with identical signals; the more recent date
	// must sort first and become the best match.
	older := model.Transaction{
		ID:          "older",
		AccountID:   testutil.TestAccountID,
		Date:        day(2025, 1, 14),
		Description: "Rent January",
		Amount:      amount("30000"),
		Type:        model.TypeExpense,
	}
	newer := model.Transaction{
		ID:          "newer",
		AccountID:   testutil.TestAccountID,
		Date:        day(2025, 1, 16),
		Description: "Rent January",
		Amount:      amount("30000"),
		Type:        model.TypeExpense,
	}
	repo := testutil.NewFakeRepository(older, newer)
	detector := NewDetector(repo, DefaultWindowDays)

	parsed := model.ParsedTransaction{
		Date:        day(2025, 1, 15),
		Description: "Rent January",
		Amount:      amount("30000"),
		Type:        model.TypeExpense,
	}

	result, err := detector.Detect(context.Background(), testutil.TestAccountID, parsed)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.DuplicateMatches) != 2 {
		t.Fatalf("matches = %d, want 2", len(result.DuplicateMatches))
	}
	if result.DuplicateMatches[0].Score != result.DuplicateMatches[1].Score {
		t.Fatalf("test assumes tied scores, got %d and %d",
			result.DuplicateMatches[0].Score, result.DuplicateMatches[1].Score)
	}
	if result.BestMatch().Existing.ID != "newer" {
		t.Errorf("best match = %s, want the more recent candidate", result.BestMatch().Existing.ID)
	}
}

func TestDetectorIDTieBreaking(t *testing.T) {
	// Same score, same date: ascending id keeps ordering stable.
	a := model.Transaction{
		ID: "aaa", AccountID: testutil.TestAccountID, Date: day(2025, 2, 1),
		Description: "Gym membership", Amount: amount("1500"), Type: model.TypeExpense,
	}
	b := a
	b.ID = "bbb"
	repo := testutil.NewFakeRepository(b, a)
	detector := NewDetector(repo, DefaultWindowDays)

	parsed := model.ParsedTransaction{
		Date: day(2025, 2, 1), Description: "Gym membership",
		Amount: amount("1500"), Type: model.TypeExpense,
	}

	first, err := detector.Detect(context.Background(), testutil.TestAccountID, parsed)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if first.BestMatch().Existing.ID != "aaa" {
		t.Errorf("best match = %s, want aaa (ascending id)", first.BestMatch().Existing.ID)
	}

	for i := 0; i < 5; i++ {
		again, err := detector.Detect(context.Background(), testutil.TestAccountID, parsed)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("ordering must not vary between runs")
		}
	}
}
