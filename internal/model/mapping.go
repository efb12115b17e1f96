package model

// Field is the semantic meaning assigned to one statement column.
type Field string

// Mappable fields. FieldSkip drops a column entirely.
const (
	FieldDate         Field = "date"
	FieldDescription  Field = "description"
	FieldAmount       Field = "amount"
	FieldAmountDebit  Field = "amount_debit"
	FieldAmountCredit Field = "amount_credit"
	FieldType         Field = "type"
	FieldCategory     Field = "category"
	FieldReference    Field = "reference"
	FieldSkip         Field = "skip"
)

// ValidField reports whether f is a known semantic field.
func ValidField(f Field) bool {
	switch f {
	case FieldDate, FieldDescription, FieldAmount, FieldAmountDebit,
		FieldAmountCredit, FieldType, FieldCategory, FieldReference, FieldSkip:
		return true
	}
	return false
}

// ColumnMapping assigns a semantic field to each statement column.
type ColumnMapping map[string]Field

// ColumnFor returns the first column mapped to field, if any.
func (m ColumnMapping) ColumnFor(field Field) (string, bool) {
	for col, f := range m {
		if f == field {
			return col, true
		}
	}
	return "", false
}

// HasAmount reports whether the mapping can resolve an amount, either
// from a single amount column or a debit/credit pair.
func (m ColumnMapping) HasAmount() bool {
	if _, ok := m.ColumnFor(FieldAmount); ok {
		return true
	}
	_, debit := m.ColumnFor(FieldAmountDebit)
	_, credit := m.ColumnFor(FieldAmountCredit)
	return debit || credit
}

// Complete reports whether every required field is resolvable.
func (m ColumnMapping) Complete() bool {
	if _, ok := m.ColumnFor(FieldDate); !ok {
		return false
	}
	if _, ok := m.ColumnFor(FieldDescription); !ok {
		return false
	}
	return m.HasAmount()
}
