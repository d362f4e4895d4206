package dialogue

import (
	"strings"
	"time"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

const DefaultHistoryLimit = 20

// DefaultFollowUpPhrases are the cues that mark a query as a continuation of
// the current topic.
var DefaultFollowUpPhrases = []string{
	"how is it done", "how does it work", "how do i do that", "how do you do that",
	"what does that mean", "can you explain", "tell me more", "more details",
	"what about", "how about", "what if", "why is that", "how come",
	"explain that", "what exactly", "how exactly", "what happens then",
	"how", "what", "when", "where", "why", "explain", "clarify",
}

// Continuation is a canned follow-up answer for a topic, selected when its
// trigger occurs in the query.
type Continuation struct {
	Trigger string `yaml:"trigger" json:"trigger"`
	Text    string `yaml:"text" json:"text"`
}

type Options struct {
	FollowUpPhrases []string
	// Continuations are consulted in slice order per category.
	Continuations map[string][]Continuation
	HistoryLimit  int
	Now           func() time.Time
}

// Tracker holds the state of one conversation. It is not safe for
// concurrent use; callers serialize turns.
type Tracker struct {
	followUps     []string
	continuations map[string][]Continuation
	historyLimit  int
	now           func() time.Time

	currentTopic string
	topicMemory  map[string]domain.TopicMemo
	history      []domain.Turn
}

func NewTracker(opts Options) *Tracker {
	followUps := opts.FollowUpPhrases
	if len(followUps) == 0 {
		followUps = DefaultFollowUpPhrases
	}
	normalized := make([]string, 0, len(followUps))
	for _, phrase := range followUps {
		if p := domain.NormalizeKey(phrase); p != "" {
			normalized = append(normalized, p)
		}
	}

	continuations := make(map[string][]Continuation, len(opts.Continuations))
	for category, list := range opts.Continuations {
		for _, c := range list {
			trigger := domain.NormalizeKey(c.Trigger)
			if trigger == "" || strings.TrimSpace(c.Text) == "" {
				continue
			}
			continuations[category] = append(continuations[category], Continuation{Trigger: trigger, Text: c.Text})
		}
	}

	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		followUps:     normalized,
		continuations: continuations,
		historyLimit:  limit,
		now:           now,
		topicMemory:   make(map[string]domain.TopicMemo),
	}
}

// IsFollowUp reports whether query reads like a continuation. Queries of at
// most three words qualify when any cue occurs anywhere in them; longer
// queries only when they open with a cue.
func (t *Tracker) IsFollowUp(query string) bool {
	normalized := domain.NormalizeKey(query)
	if normalized == "" {
		return false
	}

	if len(strings.Fields(normalized)) <= 3 {
		for _, phrase := range t.followUps {
			if strings.Contains(normalized, phrase) {
				return true
			}
		}
		return false
	}

	for _, phrase := range t.followUps {
		if strings.HasPrefix(normalized, phrase) {
			return true
		}
	}
	return false
}

// Resolve answers query from the canned continuations of topic.
func (t *Tracker) Resolve(query, topic string) (domain.AnswerEntry, bool) {
	table, ok := t.continuations[topic]
	if !ok {
		return domain.AnswerEntry{}, false
	}

	normalized := domain.NormalizeKey(query)
	for _, c := range table {
		if strings.Contains(normalized, c.Trigger) {
			return domain.AnswerEntry{
				Key:        normalized,
				Answer:     c.Text,
				Category:   topic,
				Source:     domain.SourceBuiltin,
				Confidence: domain.SourceBuiltin.DefaultConfidence(),
			}, true
		}
	}
	return domain.AnswerEntry{}, false
}

// Update records a resolved exchange and makes category the current topic.
func (t *Tracker) Update(category, question, answer string) {
	now := t.now()

	t.currentTopic = category
	t.topicMemory[category] = domain.TopicMemo{
		LastQuestion: question,
		LastAnswer:   answer,
		UpdatedAt:    now,
	}

	t.history = append(t.history,
		domain.Turn{Speaker: domain.SpeakerUser, Text: question, Timestamp: now},
		domain.Turn{Speaker: domain.SpeakerBot, Text: answer, Category: category, Timestamp: now},
	)
	if overflow := len(t.history) - t.historyLimit; overflow > 0 {
		t.history = append(t.history[:0:0], t.history[overflow:]...)
	}
}

func (t *Tracker) CurrentTopic() (string, bool) {
	return t.currentTopic, t.currentTopic != ""
}

func (t *Tracker) Snapshot() domain.ContextSnapshot {
	memory := make(map[string]domain.TopicMemo, len(t.topicMemory))
	for k, v := range t.topicMemory {
		memory[k] = v
	}
	history := make([]domain.Turn, len(t.history))
	copy(history, t.history)

	return domain.ContextSnapshot{
		CurrentTopic: t.currentTopic,
		TopicMemory:  memory,
		History:      history,
	}
}

// Reset returns the tracker to the no-topic state with empty history.
func (t *Tracker) Reset() {
	t.currentTopic = ""
	t.topicMemory = make(map[string]domain.TopicMemo)
	t.history = nil
}
