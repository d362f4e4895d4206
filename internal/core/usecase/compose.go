package usecase

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/kirillkom/faq-assistant/internal/catalog"
)

// RandomFallback picks a fallback uniformly.
type RandomFallback struct{}

func (RandomFallback) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.IntN(n)
}

// FirstFallback always picks the first fallback.
type FirstFallback struct{}

func (FirstFallback) Pick(int) int { return 0 }

type glossaryRule struct {
	pattern     *regexp.Regexp
	explanation string
}

// simplifier annotates domain terms and appends topic suggestions.
type simplifier struct {
	rules       []glossaryRule
	suggestions map[string]string
}

func newSimplifier(glossary []catalog.GlossaryTerm, suggestions map[string]string) *simplifier {
	s := &simplifier{suggestions: suggestions}
	for _, g := range glossary {
		term := strings.TrimSpace(g.Term)
		if term == "" || strings.TrimSpace(g.Explanation) == "" {
			continue
		}
		s.rules = append(s.rules, glossaryRule{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			explanation: g.Explanation,
		})
	}
	return s
}

func (s *simplifier) Apply(answer, category string) string {
	out := answer
	for _, rule := range s.rules {
		explanation := rule.explanation
		out = rule.pattern.ReplaceAllStringFunc(out, func(match string) string {
			return match + " (" + explanation + ")"
		})
	}
	if suggestion := strings.TrimSpace(s.suggestions[category]); suggestion != "" {
		out += "\n\n" + suggestion
	}
	return out
}

type fallbackPolicy struct {
	pool              []string
	emergencyKeywords []string
	emergencyMessage  string
}

func newFallbackPolicy(c *catalog.Catalog) fallbackPolicy {
	keywords := make([]string, 0, len(c.Emergency.Keywords))
	for _, kw := range c.Emergency.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return fallbackPolicy{
		pool:              c.Fallbacks,
		emergencyKeywords: keywords,
		emergencyMessage:  c.Emergency.Message,
	}
}

// text never returns an empty string.
func (p fallbackPolicy) text(normalizedQuery string, pick func(int) int) (string, bool) {
	if p.emergencyMessage != "" {
		for _, kw := range p.emergencyKeywords {
			if strings.Contains(normalizedQuery, kw) {
				return p.emergencyMessage, true
			}
		}
	}
	if len(p.pool) == 0 {
		return defaultFallback, false
	}
	i := pick(len(p.pool))
	if i < 0 || i >= len(p.pool) {
		i = 0
	}
	return p.pool[i], false
}

const defaultFallback = "I'm sorry, I don't have information about that. Could you try rephrasing your question?"
