package parse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/service"
)

// CSVParser parses comma-separated statement exports. The first
// non-empty record is treated as the header row.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the file extensions this parser handles.
func (p *CSVParser) Extensions() []string { return []string{"csv"} }

// Parse reads the CSV into headers plus one column map per row.
func (p *CSVParser) Parse(_ context.Context, r io.Reader) (*service.Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // bank exports pad rows inconsistently
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, common.NewUserError("Could not read CSV file", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}

	headers, body := splitHeader(records)
	if len(headers) == 0 {
		return nil, common.NewUserError("CSV file has no header row", common.ErrParseFailed)
	}

	stmt := &service.Statement{Headers: headers}
	for _, rec := range body {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		stmt.Rows = append(stmt.Rows, row)
	}
	return stmt, nil
}

// splitHeader skips leading blank records and returns the header row
// and the remaining data records.
func splitHeader(records [][]string) ([]string, [][]string) {
	for i, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		headers := make([]string, len(rec))
		for j, h := range rec {
			headers[j] = strings.TrimSpace(h)
		}
		return headers, records[i+1:]
	}
	return nil, nil
}

func isBlankRecord(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
