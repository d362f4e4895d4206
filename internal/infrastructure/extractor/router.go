// Package extractor dispatches uploaded documents to format specific
// extractors by file extension, falling back to the declared MIME type.
package extractor

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/extractor/htmltext"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/extractor/spreadsheet"
)

const (
	formatText  = "text"
	formatHTML  = "html"
	formatPDF   = "pdf"
	formatSheet = "xlsx"
)

var extensionFormats = map[string]string{
	".txt":      formatText,
	".text":     formatText,
	".md":       formatText,
	".markdown": formatText,
	".html":     formatHTML,
	".htm":      formatHTML,
	".pdf":      formatPDF,
	".xlsx":     formatSheet,
}

var mimeFormats = map[string]string{
	"text/plain":      formatText,
	"text/markdown":   formatText,
	"text/html":       formatHTML,
	"application/pdf": formatPDF,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": formatSheet,
}

type Router struct {
	text  map[string]ports.TextExtractor
	pairs map[string]ports.PairExtractor
}

func NewRouter(storage ports.ObjectStorage) *Router {
	sheet := spreadsheet.NewExtractor(storage)
	return &Router{
		text: map[string]ports.TextExtractor{
			formatText:  plaintext.NewExtractor(storage),
			formatHTML:  htmltext.NewExtractor(storage),
			formatPDF:   pdf.NewExtractor(storage),
			formatSheet: sheet,
		},
		pairs: map[string]ports.PairExtractor{
			formatSheet: sheet,
		},
	}
}

// Supports reports whether a document with this name and content type
// can be harvested.
func (r *Router) Supports(filename, mimeType string) bool {
	return formatOf(filename, mimeType) != ""
}

func (r *Router) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	format := formatOf(doc.Filename, doc.MimeType)
	extractor, ok := r.text[format]
	if !ok {
		return "", unsupported(doc)
	}
	return extractor.Extract(ctx, doc)
}

func (r *Router) ExtractPairs(ctx context.Context, doc *domain.Document) ([]domain.QAPair, bool, error) {
	extractor, ok := r.pairs[formatOf(doc.Filename, doc.MimeType)]
	if !ok {
		return nil, false, nil
	}
	return extractor.ExtractPairs(ctx, doc)
}

func formatOf(filename, mimeType string) string {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return format
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	if format, ok := mimeFormats[mediaType]; ok {
		return format
	}
	return ""
}

func unsupported(doc *domain.Document) error {
	return domain.WrapError(domain.ErrInvalidInput, "extract document", fmt.Errorf("unsupported format: %s (%s)", doc.Filename, doc.MimeType))
}
