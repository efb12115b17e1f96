// Package mapping assigns semantic fields to raw statement columns
// and materializes parsed transactions from statement rows.
package mapping

import (
	"strings"

	"github.com/kamthamc/wealthwise/internal/model"
)

// fieldAliases maps normalized header names to semantic fields.
// Covers the common Indian-bank and US-bank export vocabularies.
var fieldAliases = map[string]model.Field{
	"date":              model.FieldDate,
	"txn date":          model.FieldDate,
	"transaction date":  model.FieldDate,
	"value date":        model.FieldDate,
	"value dt":          model.FieldDate,
	"posting date":      model.FieldDate,
	"post date":         model.FieldDate,

	"description":         model.FieldDescription,
	"narration":           model.FieldDescription,
	"particulars":         model.FieldDescription,
	"details":             model.FieldDescription,
	"transaction details": model.FieldDescription,
	"transaction remarks": model.FieldDescription,
	"remarks":             model.FieldDescription,
	"name":                model.FieldDescription,

	"amount":             model.FieldAmount,
	"transaction amount": model.FieldAmount,
	"amt":                model.FieldAmount,

	"debit":            model.FieldAmountDebit,
	"debit amount":     model.FieldAmountDebit,
	"withdrawal":       model.FieldAmountDebit,
	"withdrawal amt":   model.FieldAmountDebit,
	"withdrawal amount": model.FieldAmountDebit,
	"dr":               model.FieldAmountDebit,

	"credit":         model.FieldAmountCredit,
	"credit amount":  model.FieldAmountCredit,
	"deposit":        model.FieldAmountCredit,
	"deposit amt":    model.FieldAmountCredit,
	"deposit amount": model.FieldAmountCredit,
	"cr":             model.FieldAmountCredit,

	"type":             model.FieldType,
	"transaction type": model.FieldType,
	"dr/cr":            model.FieldType,
	"cr/dr":            model.FieldType,

	"category": model.FieldCategory,

	"reference":        model.FieldReference,
	"reference number": model.FieldReference,
	"ref no":           model.FieldReference,
	"ref number":       model.FieldReference,
	"chq/ref number":   model.FieldReference,
	"chq/ref no":       model.FieldReference,
	"chq/refno":        model.FieldReference,
	"cheque no":        model.FieldReference,
	"chq no":           model.FieldReference,
	"utr":              model.FieldReference,
	"utr number":       model.FieldReference,
	"transaction id":   model.FieldReference,
}

// Propose suggests a field for every header. Unrecognized columns map
// to skip; the user confirms or edits the proposal before it is used.
func Propose(headers []string) model.ColumnMapping {
	proposal := make(model.ColumnMapping, len(headers))
	assigned := make(map[model.Field]bool)

	for _, header := range headers {
		field, ok := fieldAliases[normalizeHeader(header)]
		if !ok || assigned[field] {
			proposal[header] = model.FieldSkip
			continue
		}
		proposal[header] = field
		assigned[field] = true
	}
	return proposal
}

// normalizeHeader lowercases and strips punctuation noise so
// "Chq./Ref.No." and "chq/refno" compare equal.
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, ".", "")
	h = strings.ReplaceAll(h, "_", " ")
	h = strings.ReplaceAll(h, "-", " ")
	return strings.Join(strings.Fields(h), " ")
}

// knownSources are bank labels sniffed from the uploaded file name.
var knownSources = []string{"hdfc", "icici", "sbi", "axis", "kotak", "chase"}

// DetectSource labels the statement's bank format from the file name,
// falling back to header vocabulary. Best-effort; "unknown" is fine.
func DetectSource(fileName string, headers []string) string {
	lower := strings.ToLower(fileName)
	for _, source := range knownSources {
		if strings.Contains(lower, source) {
			return source
		}
	}

	for _, header := range headers {
		if normalizeHeader(header) == "narration" {
			// HDFC exports are the common "Narration" statements.
			return "hdfc"
		}
	}
	return "unknown"
}
