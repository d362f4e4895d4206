package htmltext

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

func TestExtractFlattensHeadingsAndParagraphs(t *testing.T) {
	page := `<!doctype html>
<html><head><title>Ignored</title><style>p{color:red}</style></head>
<body>
  <h2>Prescription Refills</h2>
  <p>Order refills   online through <b>My HealtheVet</b>.</p>
  <ul><li>Mail delivery in 3-5 days</li></ul>
  <script>var x = 1;</script>
  <div>Loose text</div>
</body></html>`
	e := NewExtractor(&storageFake{body: page})

	text, err := e.Extract(context.Background(), &domain.Document{Filename: "refills.html"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := strings.Join([]string{
		"Prescription Refills:",
		"Order refills online through My HealtheVet .",
		"Mail delivery in 3-5 days",
		"Loose text",
	}, "\n")
	if text != want {
		t.Fatalf("Extract() = %q, want %q", text, want)
	}
}
