// Package parse turns uploaded statement files into rows of named
// columns. Formats register themselves in a Registry keyed by file
// extension.
package parse

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamthamc/wealthwise/internal/common"
	"github.com/kamthamc/wealthwise/internal/service"
)

// Parser converts one statement file into a tabular Statement.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*service.Statement, error)
	Format() string
	Extensions() []string
}

// Registry holds parsers keyed by file extension.
type Registry struct {
	byExtension map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string]Parser)}
}

// Register adds a parser. Panics on a duplicate extension.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.Extensions() {
		key := strings.ToLower(ext)
		if _, ok := r.byExtension[key]; ok {
			panic("duplicate parser extension: " + key)
		}
		r.byExtension[key] = p
	}
}

// ForFile returns the parser for the file's extension.
func (r *Registry) ForFile(fileName string) (Parser, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if p, ok := r.byExtension[ext]; ok {
		return p, nil
	}
	return nil, common.NewUserError(
		"Unsupported file type: ."+ext+" (supported: "+strings.Join(r.SupportedExtensions(), ", ")+")",
		common.ErrUnsupportedFormat)
}

// SupportedExtensions lists registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultRegistry returns a registry with all built-in parsers. The
// extractor serves PDF statements; pass nil when no extraction
// service is available.
func DefaultRegistry(extractor service.StatementExtractor) *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&ExcelParser{})
	r.Register(&OFXParser{})
	r.Register(&PDFParser{Extractor: extractor})
	return r
}
