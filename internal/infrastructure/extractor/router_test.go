package extractor

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

func TestSupports(t *testing.T) {
	r := NewRouter(&storageFake{})

	cases := []struct {
		filename string
		mimeType string
		want     bool
	}{
		{"faq.md", "", true},
		{"FAQ.PDF", "", true},
		{"sheet.xlsx", "application/octet-stream", true},
		{"upload", "text/html; charset=utf-8", true},
		{"image.png", "image/png", false},
		{"blob", "", false},
	}
	for _, tc := range cases {
		if got := r.Supports(tc.filename, tc.mimeType); got != tc.want {
			t.Fatalf("Supports(%q, %q) = %v, want %v", tc.filename, tc.mimeType, got, tc.want)
		}
	}
}

func TestExtractRoutesByExtension(t *testing.T) {
	r := NewRouter(&storageFake{body: "<h1>Costs</h1><p>Covered by VA.</p>"})

	text, err := r.Extract(context.Background(), &domain.Document{Filename: "costs.html"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Costs:\nCovered by VA." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractPairsUnstructuredFormat(t *testing.T) {
	r := NewRouter(&storageFake{body: "Costs:\nCovered."})

	pairs, structured, err := r.ExtractPairs(context.Background(), &domain.Document{Filename: "costs.txt"})
	if err != nil {
		t.Fatalf("ExtractPairs() error = %v", err)
	}
	if structured || pairs != nil {
		t.Fatalf("expected unstructured result, got %v %+v", structured, pairs)
	}
}

func TestExtractUnsupported(t *testing.T) {
	r := NewRouter(&storageFake{})

	_, err := r.Extract(context.Background(), &domain.Document{Filename: "photo.png", MimeType: "image/png"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
