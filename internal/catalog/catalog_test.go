package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(c.Entries) == 0 {
		t.Fatalf("expected built-in entries")
	}
	if len(c.Fallbacks) != 4 {
		t.Fatalf("expected 4 fallbacks, got %d", len(c.Fallbacks))
	}
	if !strings.HasPrefix(c.Emergency.Message, "If you're experiencing a medical emergency") {
		t.Fatalf("unexpected emergency message: %q", c.Emergency.Message)
	}
	recovery := c.Continuations["recovery"]
	if len(recovery) == 0 || recovery[0].Trigger != "how long" {
		t.Fatalf("expected recovery continuations to start with 'how long', got %+v", recovery)
	}
}

func TestBuiltinsNormalizeKeys(t *testing.T) {
	c := &Catalog{
		Fallbacks: []string{"sorry"},
		Entries: []Entry{
			{Question: "  What Is A Vasectomy ", Answer: "A procedure.", Category: "general"},
			{Question: "uncategorized", Answer: "x"},
		},
	}
	entries := c.Builtins()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "what is a vasectomy" {
		t.Fatalf("unexpected key %q", entries[0].Key)
	}
	if entries[0].Source != domain.SourceBuiltin || entries[0].Confidence != 1.0 {
		t.Fatalf("unexpected provenance: %+v", entries[0])
	}
	if entries[1].Category != "general" {
		t.Fatalf("expected default category general, got %q", entries[1].Category)
	}
}

func TestCategorizeUsesRuleOrder(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	cases := map[string]string{
		"Crisis Support: call the line":        "mental-health",
		"Clinic hours for your next visit":     "healthcare",
		"Schedule an appointment online":       "appointments",
		"GI Bill provides education funding":   "benefits",
		"Parking is available behind building": "general",
	}
	for text, want := range cases {
		if got := c.Categorize(text); got != want {
			t.Fatalf("Categorize(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
fallbacks: ["nothing here"]
entries:
  - question: "Where is the clinic"
    answer: "Main street."
    category: healthcare
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Entries) != 1 || c.Entries[0].Answer != "Main street." {
		t.Fatalf("unexpected entries: %+v", c.Entries)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := []string{
		"",
		"fallbacks: []",
		"fallbacks: [\"ok\"]\nentries:\n  - question: \"\"\n    answer: \"x\"",
		"fallbacks: [\"ok\"]\nemergency:\n  keywords: [\"pain\"]",
	}
	for _, body := range cases {
		_, err := Parse(strings.NewReader(body))
		if err == nil {
			t.Fatalf("expected error for %q", body)
		}
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input kind for %q, got %v", body, err)
		}
	}
}
