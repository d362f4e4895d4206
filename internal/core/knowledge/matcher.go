package knowledge

import (
	"strings"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

const DefaultMatchThreshold = 0.3

// Weights are the per-term contributions of the fuzzy score.
type Weights struct {
	KeywordHit  float64
	ExactTerm   float64
	PartialTerm float64
}

func DefaultWeights() Weights {
	return Weights{KeywordHit: 0.8, ExactTerm: 1.0, PartialTerm: 0.5}
}

type Match struct {
	Entry    domain.AnswerEntry
	Phrasing string
	Score    float64
	Exact    bool
}

type Matcher struct {
	threshold float64
	weights   Weights
}

func NewMatcher(threshold float64, weights Weights) *Matcher {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultMatchThreshold
	}
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Matcher{threshold: threshold, weights: weights}
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match resolves query against ix: an exact key hit wins outright with score
// 1, otherwise the best fuzzy candidate above the threshold is returned.
// The earliest index entry wins ties.
func (m *Matcher) Match(query string, ix *Index) (Match, bool) {
	if strings.TrimSpace(query) == "" || ix.Len() == 0 {
		return Match{}, false
	}

	for _, key := range exactCandidates(query) {
		if entry, ok := ix.Lookup(key); ok {
			return Match{Entry: entry, Phrasing: entry.Key, Score: 1.0, Exact: true}, true
		}
	}

	queryTerms := Extract(query)
	if len(queryTerms) == 0 {
		return Match{}, false
	}

	var best *IndexEntry
	bestScore := 0.0
	entries := ix.Entries()
	for i := range entries {
		score := m.score(queryTerms, &entries[i])
		if score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}
	if best == nil || bestScore <= m.threshold {
		return Match{}, false
	}
	return Match{Entry: best.Entry, Phrasing: best.Phrasing, Score: bestScore}, true
}

// Score is the fuzzy similarity of query against one index entry.
func (m *Matcher) Score(query string, entry IndexEntry) float64 {
	if entry.Terms == nil {
		entry.Terms = Extract(entry.Phrasing)
	}
	return m.score(Extract(query), &entry)
}

func (m *Matcher) score(queryTerms []string, entry *IndexEntry) float64 {
	total := 0.0
	for _, userWord := range queryTerms {
		if _, ok := entry.Keywords[userWord]; ok {
			total += m.weights.KeywordHit
		}
		for _, entryWord := range entry.Terms {
			switch {
			case userWord == entryWord:
				total += m.weights.ExactTerm
			case strings.Contains(userWord, entryWord) || strings.Contains(entryWord, userWord):
				total += m.weights.PartialTerm
			}
		}
	}

	norm := max(len(queryTerms), len(entry.Terms))
	if norm == 0 {
		return 0
	}
	return total / float64(norm)
}

// exactCandidates lists the spellings of query that may hit a key verbatim:
// the normalized query, its whitespace-collapsed form, and both with the
// trailing question mark toggled.
func exactCandidates(query string) []string {
	normalized := domain.NormalizeKey(query)
	collapsed := strings.Join(strings.Fields(normalized), " ")

	out := make([]string, 0, 6)
	seen := make(map[string]struct{}, 6)
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, base := range []string{normalized, collapsed} {
		add(base)
	}
	for _, base := range []string{normalized, collapsed} {
		trimmed := strings.TrimSpace(strings.TrimRight(base, "?"))
		add(trimmed)
		add(trimmed + "?")
	}
	return out
}
