package knowledge

import (
	"strings"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

var questionStarters = []string{"what", "how", "when", "where", "why", "is", "are", "can", "will", "does", "do"}

// IndexEntry is one searchable phrasing bound to the entry it came from.
type IndexEntry struct {
	Phrasing string
	Keywords map[string]struct{}
	Terms    []string
	Entry    domain.AnswerEntry
}

// Index is a disposable projection of a Store. It is never mutated after
// BuildIndex returns; a store change requires a fresh build.
type Index struct {
	entries []IndexEntry
	exact   map[string]domain.AnswerEntry
}

// BuildIndex flattens every entry of store into its own phrasing plus the
// generated variants, in store order.
func BuildIndex(store *Store) *Index {
	all := store.All()
	ix := &Index{
		entries: make([]IndexEntry, 0, len(all)*(len(questionStarters)+2)),
		exact:   make(map[string]domain.AnswerEntry, len(all)),
	}
	for _, entry := range all {
		ix.exact[entry.Key] = entry
		ix.add(entry.Key, entry)
		for _, variant := range phrasingVariants(entry.Key) {
			ix.add(variant, entry)
		}
	}
	return ix
}

func (ix *Index) add(phrasing string, entry domain.AnswerEntry) {
	ix.entries = append(ix.entries, IndexEntry{
		Phrasing: phrasing,
		Keywords: keywordSet(phrasing + " " + entry.Answer),
		Terms:    Extract(phrasing),
		Entry:    entry,
	})
}

func phrasingVariants(key string) []string {
	variants := make([]string, 0, len(questionStarters)+1)
	for _, starter := range questionStarters {
		if startsWithWord(key, starter) {
			continue
		}
		variants = append(variants, starter+" "+key)
	}
	if !strings.HasSuffix(key, "?") {
		variants = append(variants, key+"?")
	}
	return variants
}

// startsWithWord matches the starter as a whole leading word, so "does it
// hurt" still gets a "do does it hurt" variant. A plain prefix test would
// treat "do" as already present there.
func startsWithWord(text, word string) bool {
	return text == word || strings.HasPrefix(text, word+" ")
}

// Lookup finds an entry by its exact key.
func (ix *Index) Lookup(key string) (domain.AnswerEntry, bool) {
	if ix == nil {
		return domain.AnswerEntry{}, false
	}
	entry, ok := ix.exact[key]
	return entry, ok
}

func (ix *Index) Entries() []IndexEntry {
	if ix == nil {
		return nil
	}
	return ix.entries
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}
