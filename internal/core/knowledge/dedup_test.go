package knowledge

import (
	"math"
	"testing"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func entriesFromKeys(keys ...string) []domain.AnswerEntry {
	out := make([]domain.AnswerEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, domain.AnswerEntry{Key: key, Answer: "answer for " + key})
	}
	return out
}

func TestOptimizeDropsNearDuplicates(t *testing.T) {
	entries := entriesFromKeys(
		"what is a test",
		"what is a test?",
		"what is a completely different unrelated thing",
	)

	retained, removed := NewDeduplicator(0).Optimize(entries)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if len(retained) != 2 {
		t.Fatalf("expected 2 retained, got %d", len(retained))
	}
	if retained[0].Key != "what is a test" || retained[1].Key != "what is a completely different unrelated thing" {
		t.Fatalf("unexpected retained keys: %q, %q", retained[0].Key, retained[1].Key)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	entries := entriesFromKeys(
		"how long is recovery",
		"how long is recovery?",
		"how long is the recovery",
		"does it hurt",
		"does it hurt?",
		"what is choice program",
	)
	dedup := NewDeduplicator(0)

	first, _ := dedup.Optimize(entries)
	second, removed := dedup.Optimize(first)
	if removed != 0 {
		t.Fatalf("expected second pass to remove 0, got %d", removed)
	}
	if len(second) != len(first) {
		t.Fatalf("expected stable output, got %d vs %d", len(second), len(first))
	}
}

func TestOptimizeEmpty(t *testing.T) {
	retained, removed := NewDeduplicator(0).Optimize(nil)
	if len(retained) != 0 || removed != 0 {
		t.Fatalf("expected empty result, got %d retained %d removed", len(retained), removed)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "abc", 1.0},
		{"kitten", "sitting", 4.0 / 7.0},
		{"abc", "", 0},
	}
	for _, tc := range cases {
		if got := Similarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
