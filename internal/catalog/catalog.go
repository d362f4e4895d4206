// Package catalog loads the authored domain content: built-in answers,
// topic continuations, glossary, follow-up suggestions and fallbacks.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/faq-assistant/internal/core/dialogue"
	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

type Catalog struct {
	Version          string                             `yaml:"version"`
	FollowUpPhrases  []string                           `yaml:"follow_up_phrases"`
	Fallbacks        []string                           `yaml:"fallbacks"`
	Emergency        Emergency                          `yaml:"emergency"`
	Glossary         []GlossaryTerm                     `yaml:"glossary"`
	Suggestions      map[string]string                  `yaml:"suggestions"`
	Continuations    map[string][]dialogue.Continuation `yaml:"continuations"`
	CategoryKeywords []CategoryRule                     `yaml:"category_keywords"`
	Entries          []Entry                            `yaml:"entries"`
}

type Emergency struct {
	Keywords []string `yaml:"keywords"`
	Message  string   `yaml:"message"`
}

type GlossaryTerm struct {
	Term        string `yaml:"term"`
	Explanation string `yaml:"explanation"`
}

// CategoryRule assigns Category to text containing any of Keywords.
// Rules are evaluated in file order.
type CategoryRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Category string `yaml:"category"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	c, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse catalog", errors.New("catalog is empty"))
		}
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse catalog", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if len(c.Fallbacks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate catalog", errors.New("at least one fallback is required"))
	}
	for i, f := range c.Fallbacks {
		if strings.TrimSpace(f) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "validate catalog", fmt.Errorf("fallback %d is empty", i))
		}
	}
	if len(c.Emergency.Keywords) > 0 && strings.TrimSpace(c.Emergency.Message) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate catalog", errors.New("emergency keywords require a message"))
	}
	for i, e := range c.Entries {
		if domain.NormalizeKey(e.Question) == "" || strings.TrimSpace(e.Answer) == "" {
			return domain.WrapError(domain.ErrInvalidInput, "validate catalog", fmt.Errorf("entry %d needs question and answer", i))
		}
	}
	return nil
}

// Builtins converts the authored entries into knowledge entries.
func (c *Catalog) Builtins() []domain.AnswerEntry {
	out := make([]domain.AnswerEntry, 0, len(c.Entries))
	for _, e := range c.Entries {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = "general"
		}
		out = append(out, domain.AnswerEntry{
			Key:        domain.NormalizeKey(e.Question),
			Answer:     e.Answer,
			Category:   category,
			Source:     domain.SourceBuiltin,
			Confidence: domain.SourceBuiltin.DefaultConfidence(),
		})
	}
	return out
}

// Categorize returns the category of the first rule with a keyword found
// in text, or "general".
func (c *Catalog) Categorize(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range c.CategoryKeywords {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return "general"
}
