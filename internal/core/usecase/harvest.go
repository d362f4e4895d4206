package usecase

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

const (
	maxAnswerLines     = 3
	harvestConfidence  = 0.8
	defaultHarvestKind = "general"
)

// HarvestPairs turns heading-structured text into question/answer pairs.
// A heading is a line ending in ':' or an uppercase-led line without an
// inner '.'; the following lines, up to three and stopping at the next
// colon-terminated line, form its answer.
func HarvestPairs(text string, categorize func(string) string) []domain.QAPair {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	pairs := make([]domain.QAPair, 0)
	for i, line := range lines {
		if !isHeading(line) {
			continue
		}

		answer := make([]string, 0, maxAnswerLines)
		for j := i + 1; j < len(lines) && j <= i+maxAnswerLines; j++ {
			if strings.HasSuffix(lines[j], ":") {
				break
			}
			answer = append(answer, lines[j])
		}
		if len(answer) == 0 {
			continue
		}

		question := strings.TrimSpace(strings.Replace(line, ":", "", 1))
		if question == "" {
			continue
		}
		answerText := strings.Join(answer, " ")

		category := defaultHarvestKind
		if categorize != nil {
			category = categorize(question + " " + answerText)
		}
		pairs = append(pairs, domain.QAPair{
			ID:         uuid.NewString(),
			Question:   question,
			Answer:     answerText,
			Category:   category,
			Source:     string(domain.SourceDocument),
			Confidence: domain.Confidence(harvestConfidence),
		})
	}
	return pairs
}

func isHeading(line string) bool {
	if strings.HasSuffix(line, ":") {
		return true
	}
	if len(line) < 2 || line[0] < 'A' || line[0] > 'Z' {
		return false
	}
	return !strings.Contains(line[1:len(line)-1], ".")
}
