package parse

import (
	"context"
	"fmt"
	"io"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/service"
)

// PDFParser accepts PDF statements and delegates text extraction to
// an injected service. This repository ships no OCR; without an
// extractor, PDF parsing fails with a user-facing error.
type PDFParser struct {
	Extractor service.StatementExtractor
}

// Format returns the parser name.
func (p *PDFParser) Format() string { return "pdf" }

// Extensions returns the file extensions this parser handles.
func (p *PDFParser) Extensions() []string { return []string{"pdf"} }

// Parse delegates to the configured extraction service.
func (p *PDFParser) Parse(ctx context.Context, r io.Reader) (*service.Statement, error) {
	if p.Extractor == nil {
		return nil, common.NewUserError(
			"PDF statements require a configured extraction service",
			common.ErrParseFailed)
	}

	stmt, err := p.Extractor.Extract(ctx, r)
	if err != nil {
		return nil, common.NewUserError("Could not extract PDF statement", fmt.Errorf("%w: %v", common.ErrParseFailed, err))
	}
	return stmt, nil
}
