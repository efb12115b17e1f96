package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/kamthamc/wealthwise/internal/model"
	"github.com/kamthamc/wealthwise/internal/testutil"
)

func TestBatchCheckerOrderPreserved(t *testing.T) {
	existing := model.Transaction{
		ID:          "t1",
		AccountID:   testutil.TestAccountID,
		Date:        day(2025, 1, 10),
		Description: "Broadband bill",
		Amount:      amount("999"),
		Type:        model.TypeExpense,
		ExternalRef: "BB-2025-01",
	}
	repo := testutil.NewFakeRepository(existing)
	checker := NewBatchChecker(repo, DefaultWindowDays)

	batch := []model.ParsedTransaction{
		{Date: day(2025, 3, 1), Description: "Unrelated one", Amount: amount("1"), Type: model.TypeIncome},
		{Date: day(2025, 1, 10), Description: "Broadband bill", Amount: amount("999"), Type: model.TypeExpense, Reference: "BB-2025-01"},
		{Date: day(2025, 4, 1), Description: "Unrelated two", Amount: amount("2"), Type: model.TypeIncome},
	}

	results, err := checker.CheckBatch(context.Background(), testutil.TestAccountID, batch)
	if err != nil {
		t.Fatalf("CheckBatch failed: %v", err)
	}

	if len(results) != len(batch) {
		t.Fatalf("results = %d, want %d", len(results), len(batch))
	}
	if !results[0].IsNewTransaction || !results[2].IsNewTransaction {
		t.Error("unrelated rows must be new")
	}
	if results[1].IsNewTransaction {
		t.Fatal("row 1 must be flagged")
	}
	if results[1].BestMatch().Existing.ID != "t1" {
		t.Errorf("results[1] matches %s, want t1", results[1].BestMatch().Existing.ID)
	}
	if results[1].BestMatch().Confidence != model.ConfidenceExact {
		t.Errorf("confidence = %s, want exact", results[1].BestMatch().Confidence)
	}
}

func TestBatchCheckerEmptyBatch(t *testing.T) {
	repo := testutil.NewFakeRepository()
	checker := NewBatchChecker(repo, DefaultWindowDays)

	results, err := checker.CheckBatch(context.Background(), testutil.TestAccountID, nil)
	if err != nil {
		t.Fatalf("CheckBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	if repo.FindCalls != 0 {
		t.Errorf("empty batch must not hit the repository, got %d calls", repo.FindCalls)
	}
}

func TestBatchCheckerAllOrNothing(t *testing.T) {
	repo := testutil.NewFakeRepository()
	repo.FindErr = errors.New("repository unreachable")
	checker := NewBatchChecker(repo, DefaultWindowDays)

	batch := make([]model.ParsedTransaction, 5)
	for i := range batch {
		batch[i] = model.ParsedTransaction{
			Date:        day(2025, 1, 10+i),
			Description: "row",
			Amount:      amount("100"),
			Type:        model.TypeExpense,
		}
	}

	results, err := checker.CheckBatch(context.Background(), testutil.TestAccountID, batch)
	if err == nil {
		t.Fatal("fetch failure must fail the whole batch")
	}
	if results != nil {
		t.Errorf("no partial results on failure, got %d", len(results))
	}
}

func TestBatchCheckerSingleFetch(t *testing.T) {
	repo := testutil.NewFakeRepository()
	checker := NewBatchChecker(repo, DefaultWindowDays)

	batch := []model.ParsedTransaction{
		{Date: day(2025, 1, 1), Description: "a", Amount: amount("1"), Type: model.TypeExpense},
		{Date: day(2025, 1, 20), Description: "b", Amount: amount("2"), Type: model.TypeExpense},
		{Date: day(2025, 2, 10), Description: "c", Amount: amount("3"), Type: model.TypeExpense},
	}

	if _, err := checker.CheckBatch(context.Background(), testutil.TestAccountID, batch); err != nil {
		t.Fatalf("CheckBatch failed: %v", err)
	}
	if repo.FindCalls != 1 {
		t.Errorf("batch must fetch candidates once, got %d calls", repo.FindCalls)
	}
}

func TestBatchCheckerWindowRespected(t *testing.T) {
	// A candidate 4 days away is outside the +/-3 day window even
	// though the batched range fetch returned it.
	outside := model.Transaction{
		ID:          "far",
		AccountID:   testutil.TestAccountID,
		Date:        day(2025, 1, 19),
		Description: "Grocery run",
		Amount:      amount("500"),
		Type:        model.TypeExpense,
	}
	repo := testutil.NewFakeRepository(outside)
	checker := NewBatchChecker(repo, DefaultWindowDays)

	batch := []model.ParsedTransaction{
		{Date: day(2025, 1, 15), Description: "Grocery run", Amount: amount("500"), Type: model.TypeExpense},
		{Date: day(2025, 1, 18), Description: "Fuel", Amount: amount("900"), Type: model.TypeExpense},
	}

	results, err := checker.CheckBatch(context.Background(), testutil.TestAccountID, batch)
	if err != nil {
		t.Fatalf("CheckBatch failed: %v", err)
	}
	if !results[0].IsNewTransaction {
		t.Error("candidate outside the row's window must not match")
	}
}
