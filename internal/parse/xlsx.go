package parse

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/service"
)

// ExcelParser parses XLSX/XLS workbook exports. Only the first sheet
// is read; bank exports put the statement there.
type ExcelParser struct{}

// Format returns the parser name.
func (p *ExcelParser) Format() string { return "excel" }

// Extensions returns the file extensions this parser handles.
func (p *ExcelParser) Extensions() []string { return []string{"xlsx", "xls"} }

// Parse reads the first sheet into headers plus row maps.
func (p *ExcelParser) Parse(_ context.Context, r io.Reader) (*service.Statement, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, common.NewUserError("Could not read Excel file", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewUserError("Excel file has no sheets", common.ErrParseFailed)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, common.NewUserError("Could not read Excel sheet", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}

	headers, body := splitHeader(rows)
	if len(headers) == 0 {
		return nil, common.NewUserError("Excel sheet has no header row", common.ErrParseFailed)
	}

	stmt := &service.Statement{Headers: headers}
	for _, rec := range body {
		if isBlankRecord(rec) {
			continue
		}
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
