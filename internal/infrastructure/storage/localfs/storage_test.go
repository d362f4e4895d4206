package localfs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "doc-1/faq.md", strings.NewReader("Costs:\nFree.")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	r, err := s.Open(context.Background(), "doc-1/faq.md")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != "Costs:\nFree." {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"../outside.txt", "/etc/passwd", "", "a/../../b"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Save(%q) expected invalid input, got %v", key, err)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.Open(context.Background(), "nope.txt"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesBlobAndIgnoresMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "doc-2_faq.txt", strings.NewReader("Costs:\nFree.")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(ctx, "doc-2_faq.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Open(ctx, "doc-2_faq.txt"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected deleted blob to be gone, got %v", err)
	}
	if err := s.Delete(ctx, "doc-2_faq.txt"); err != nil {
		t.Fatalf("Delete() of missing key error = %v", err)
	}
}
