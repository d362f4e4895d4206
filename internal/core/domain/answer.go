package domain

import "strings"

type Source string

const (
	SourceBuiltin  Source = "builtin"
	SourceDocument Source = "document"
	SourceManual   Source = "manual"
	SourceTraining Source = "training"
)

// ParseSource maps free-form provenance labels onto the closed source set.
// "custom" is the label older training payloads use for hand-authored pairs.
func ParseSource(raw string) Source {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "builtin":
		return SourceBuiltin
	case "document":
		return SourceDocument
	case "manual", "custom":
		return SourceManual
	default:
		return SourceTraining
	}
}

// DefaultConfidence is the trust weight used when a record carries none.
func (s Source) DefaultConfidence() float64 {
	switch s {
	case SourceBuiltin, SourceManual:
		return 1.0
	default:
		return 0.8
	}
}

type AnswerEntry struct {
	Key        string  `json:"key"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// NormalizeKey canonicalizes question text into a knowledge key.
func NormalizeKey(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

type MatchedVia string

const (
	MatchedExact      MatchedVia = "exact"
	MatchedFuzzy      MatchedVia = "fuzzy"
	MatchedContextual MatchedVia = "contextual"
	MatchedFallback   MatchedVia = "fallback"
)

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text       string     `json:"text"`
	Category   string     `json:"category,omitempty"`
	MatchedVia MatchedVia `json:"matched_via"`
	Score      float64    `json:"score"`
	MatchedKey string     `json:"matched_key,omitempty"`
}
