package knowledge

import "github.com/kirillkom/faq-assistant/internal/core/domain"

const DefaultDedupThreshold = 0.8

type Deduplicator struct {
	threshold float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDedupThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Optimize keeps entries in their original order and drops every entry
// whose key is more similar than the threshold to an already retained key.
// The result depends on input order; running it on its own output is a
// no-op.
func (d *Deduplicator) Optimize(entries []domain.AnswerEntry) ([]domain.AnswerEntry, int) {
	retained := make([]domain.AnswerEntry, 0, len(entries))
	retainedKeys := make([][]rune, 0, len(entries))

	for _, entry := range entries {
		key := []rune(entry.Key)
		duplicate := false
		for _, other := range retainedKeys {
			if similarity(key, other) > d.threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		retained = append(retained, entry)
		retainedKeys = append(retainedKeys, key)
	}
	return retained, len(entries) - len(retained)
}

// Similarity is the edit-distance similarity of a and b in [0,1].
func Similarity(a, b string) float64 {
	return similarity([]rune(a), []rune(b))
}

func similarity(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	return float64(longest-levenshtein(a, b)) / float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
