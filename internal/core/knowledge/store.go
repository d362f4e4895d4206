package knowledge

import (
	"strings"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

// Store maps canonical question keys to answer entries. It is a passive
// container: mutations do not notify anyone, so whoever mutates it must
// rebuild the search index before the next query.
type Store struct {
	order   []string
	entries map[string]domain.AnswerEntry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]domain.AnswerEntry)}
}

// Put inserts or overwrites an entry by its normalized key. Overwrites keep
// the original insertion position. Entries without a usable key are ignored.
// Confidence outside [0,1] is replaced by the source default.
func (s *Store) Put(entry domain.AnswerEntry) bool {
	entry.Key = domain.NormalizeKey(entry.Key)
	if entry.Key == "" || strings.TrimSpace(entry.Answer) == "" {
		return false
	}
	if entry.Source == "" {
		entry.Source = domain.SourceTraining
	}
	if entry.Confidence < 0 || entry.Confidence > 1 {
		entry.Confidence = entry.Source.DefaultConfidence()
	}
	if _, exists := s.entries[entry.Key]; !exists {
		s.order = append(s.order, entry.Key)
	}
	s.entries[entry.Key] = entry
	return true
}

// Merge puts every entry in iteration order, so the last of several
// colliding entries wins. It returns how many entries were stored.
func (s *Store) Merge(entries []domain.AnswerEntry) int {
	stored := 0
	for _, entry := range entries {
		if s.Put(entry) {
			stored++
		}
	}
	return stored
}

// Replace drops everything and loads entries in order.
func (s *Store) Replace(entries []domain.AnswerEntry) {
	s.order = s.order[:0]
	s.entries = make(map[string]domain.AnswerEntry, len(entries))
	s.Merge(entries)
}

func (s *Store) Get(key string) (domain.AnswerEntry, bool) {
	entry, ok := s.entries[domain.NormalizeKey(key)]
	return entry, ok
}

func (s *Store) All() []domain.AnswerEntry {
	out := make([]domain.AnswerEntry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entries[key])
	}
	return out
}

func (s *Store) Len() int {
	return len(s.order)
}
