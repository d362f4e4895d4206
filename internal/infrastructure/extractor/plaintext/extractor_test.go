package plaintext

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

type storageFake struct {
	body string
}

func (f *storageFake) Save(context.Context, string, io.Reader) error { return nil }

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *storageFake) Delete(context.Context, string) error { return nil }

func TestExtractRewritesMarkdownHeadings(t *testing.T) {
	e := NewExtractor(&storageFake{body: "# Recovery\nRest for a week.\n\n## Costs:\nAbout $500.\n#\n"})

	text, err := e.Extract(context.Background(), &domain.Document{Filename: "faq.md"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "Recovery:\nRest for a week.\n\nCosts:\nAbout $500."
	if text != want {
		t.Fatalf("Extract() = %q, want %q", text, want)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	e := NewExtractor(&storageFake{body: string([]byte{0xff, 0xfe, 0x00})})

	_, err := e.Extract(context.Background(), &domain.Document{Filename: "blob.txt"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
