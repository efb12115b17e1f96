package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kamthamc/wealthwise/internal/model"
)

func reviewItem(t *testing.T, isNew bool) *model.ReviewItem {
	t.Helper()

	parsed := model.ParsedTransaction{
		Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Description: "Coffee shop",
		Amount:      decimal.RequireFromString("120.50"),
		Type:        model.TypeExpense,
	}

	var result model.DuplicateCheckResult
	if !isNew {
		result = model.NewCheckResult([]model.DuplicateMatch{{
			Existing: model.Transaction{
				ID:          "t1",
				Date:        parsed.Date,
				Description: "Coffee shop",
				Amount:      parsed.Amount,
				Type:        model.TypeExpense,
			},
			Confidence:   model.ConfidenceHigh,
			Score:        85,
			MatchReasons: []string{"Exact amount match", "Same date"},
		}})
	} else {
		result = model.NewCheckResult(nil)
	}

	return &model.ReviewItem{
		Parsed: parsed,
		Result: result,
		Action: model.DefaultAction(result),
	}
}

func TestConfirmMappingAccept(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\n"), &out)

	headers := []string{"Date", "Description", "Amount"}
	proposal := model.ColumnMapping{
		"Date":        model.FieldDate,
		"Description": model.FieldDescription,
		"Amount":      model.FieldAmount,
	}

	confirmed, err := p.ConfirmMapping(context.Background(), headers, proposal)
	if err != nil {
		t.Fatalf("ConfirmMapping failed: %v", err)
	}
	if confirmed["Amount"] != model.FieldAmount {
		t.Errorf("confirmed mapping = %v", confirmed)
	}
	if !strings.Contains(out.String(), "Column mapping") {
		t.Error("mapping table must be rendered")
	}
}

func TestConfirmMappingEdit(t *testing.T) {
	var out bytes.Buffer
	// Edit column 3 to reference, finish editing, accept.
	input := "e\n3\nreference\n\ny\n"
	p := NewPrompter(strings.NewReader(input), &out)

	headers := []string{"Date", "Description", "Amount", "Txn ID"}
	proposal := model.ColumnMapping{
		"Date":        model.FieldDate,
		"Description": model.FieldDescription,
		"Amount":      model.FieldAmount,
		"Txn ID":      model.FieldSkip,
	}

	confirmed, err := p.ConfirmMapping(context.Background(), headers, proposal)
	if err != nil {
		t.Fatalf("ConfirmMapping failed: %v", err)
	}
	if confirmed["Amount"] != model.FieldAmount {
		t.Errorf("Amount = %s", confirmed["Amount"])
	}
	if confirmed["Txn ID"] != model.FieldReference {
		t.Errorf("edited column = %s, want reference", confirmed["Txn ID"])
	}
}

func TestConfirmMappingRejectsIncomplete(t *testing.T) {
	var out bytes.Buffer
	// Try to accept the incomplete mapping, then give up.
	p := NewPrompter(strings.NewReader("y\nn\n"), &out)

	headers := []string{"Date", "Description"}
	proposal := model.ColumnMapping{
		"Date":        model.FieldDate,
		"Description": model.FieldDescription,
	}

	_, err := p.ConfirmMapping(context.Background(), headers, proposal)
	if err == nil {
		t.Fatal("rejected mapping must return an error")
	}
	if !strings.Contains(out.String(), "incomplete") {
		t.Error("incomplete warning must be shown")
	}
}

func TestConfirmMappingAutoConfirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)
	p.AutoConfirm = true

	proposal := model.ColumnMapping{
		"Date":        model.FieldDate,
		"Description": model.FieldDescription,
		"Amount":      model.FieldAmount,
	}

	confirmed, err := p.ConfirmMapping(context.Background(), []string{"Date", "Description", "Amount"}, proposal)
	if err != nil {
		t.Fatalf("ConfirmMapping failed: %v", err)
	}
	if len(confirmed) != 3 {
		t.Errorf("confirmed = %v", confirmed)
	}
}

func TestConfirmReimportDefaultsToNo(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n"), &out)

	prior := &model.ImportRun{Reference: "run-1", CreatedAt: time.Now(), CreatedCount: 5}
	proceed, err := p.ConfirmReimport(context.Background(), prior)
	if err != nil {
		t.Fatalf("ConfirmReimport failed: %v", err)
	}
	if proceed {
		t.Error("blank answer must decline the re-import")
	}
	if !strings.Contains(out.String(), "already imported") {
		t.Error("warning must be shown")
	}
}

func TestReviewTransactionsChangesAction(t *testing.T) {
	var out bytes.Buffer
	// Update the flagged row, then commit.
	p := NewPrompter(strings.NewReader("u\ny\n"), &out)

	items := []*model.ReviewItem{
		reviewItem(t, true),
		reviewItem(t, false),
	}

	confirmed, err := p.ReviewTransactions(context.Background(), items)
	if err != nil {
		t.Fatalf("ReviewTransactions failed: %v", err)
	}
	if !confirmed {
		t.Fatal("review must be confirmed")
	}

	if items[0].Action != model.ActionImport {
		t.Errorf("new row action = %s, want import default", items[0].Action)
	}
	if items[1].Action != model.ActionUpdate {
		t.Errorf("flagged row action = %s, want update", items[1].Action)
	}
	if !strings.Contains(out.String(), "Possible duplicate") {
		t.Error("duplicate box must be rendered")
	}
}

func TestReviewTransactionsCancel(t *testing.T) {
	var out bytes.Buffer
	// Keep the default for the flagged row, then decline the commit.
	p := NewPrompter(strings.NewReader("\nn\n"), &out)

	items := []*model.ReviewItem{reviewItem(t, false)}

	confirmed, err := p.ReviewTransactions(context.Background(), items)
	if err != nil {
		t.Fatalf("ReviewTransactions failed: %v", err)
	}
	if confirmed {
		t.Error("declining the summary must cancel")
	}
	if items[0].Action != model.ActionSkip {
		t.Errorf("default action = %s, want skip", items[0].Action)
	}
}

func TestReviewTransactionsAutoConfirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)
	p.AutoConfirm = true

	items := []*model.ReviewItem{
		reviewItem(t, true),
		reviewItem(t, false),
	}

	confirmed, err := p.ReviewTransactions(context.Background(), items)
	if err != nil {
		t.Fatalf("ReviewTransactions failed: %v", err)
	}
	if !confirmed {
		t.Error("auto-confirm must accept the defaults")
	}
	if items[1].Action != model.ActionSkip {
		t.Errorf("auto-confirm must keep the safe default, got %s", items[1].Action)
	}
}
