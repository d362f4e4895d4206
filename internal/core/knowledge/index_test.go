package knowledge

import (
	"testing"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func TestBuildIndexGeneratesVariants(t *testing.T) {
	store := NewStore()
	store.Put(domain.AnswerEntry{Key: "what is x", Answer: "X is a thing", Category: "general"})

	ix := BuildIndex(store)
	if ix.Len() != 12 {
		t.Fatalf("expected own phrasing + 10 starters + question mark = 12, got %d", ix.Len())
	}

	phrasings := make(map[string]bool, ix.Len())
	for _, entry := range ix.Entries() {
		phrasings[entry.Phrasing] = true
		if entry.Entry.Key != "what is x" {
			t.Fatalf("variant %q bound to wrong entry %q", entry.Phrasing, entry.Entry.Key)
		}
	}
	for _, want := range []string{"what is x", "how what is x", "do what is x", "what is x?"} {
		if !phrasings[want] {
			t.Fatalf("expected phrasing %q in index", want)
		}
	}
	if phrasings["what what is x"] {
		t.Fatalf("starter already present must not be prefixed again")
	}
}

func TestBuildIndexSkipsQuestionMarkVariant(t *testing.T) {
	store := NewStore()
	store.Put(domain.AnswerEntry{Key: "how long?", Answer: "About a week."})

	ix := BuildIndex(store)
	if ix.Len() != 11 {
		t.Fatalf("expected own phrasing + 10 starters = 11, got %d", ix.Len())
	}
	if ix.Entries()[0].Phrasing != "how long?" {
		t.Fatalf("expected own phrasing first, got %q", ix.Entries()[0].Phrasing)
	}
}

func TestBuildIndexKeywordsIncludeAnswer(t *testing.T) {
	store := NewStore()
	store.Put(domain.AnswerEntry{Key: "recovery time", Answer: "Most men recover within a week."})

	first := BuildIndex(store).Entries()[0]
	for _, want := range []string{"recovery", "time", "recover", "week"} {
		if _, ok := first.Keywords[want]; !ok {
			t.Fatalf("expected keyword %q in %v", want, first.Keywords)
		}
	}
}

func TestIndexNilSafe(t *testing.T) {
	var ix *Index
	if ix.Len() != 0 || ix.Entries() != nil {
		t.Fatalf("expected empty nil index")
	}
	if _, ok := ix.Lookup("x"); ok {
		t.Fatalf("expected nil index lookup miss")
	}
}

func TestPhrasingVariantsMatchWholeStarterWord(t *testing.T) {
	variants := make(map[string]bool)
	for _, v := range phrasingVariants("does it hurt") {
		variants[v] = true
	}
	if !variants["do does it hurt"] {
		t.Fatalf("expected %q: %q is not the leading word", "do does it hurt", "do")
	}
	if variants["does does it hurt"] {
		t.Fatalf("starter %q already leads the key", "does")
	}
}
