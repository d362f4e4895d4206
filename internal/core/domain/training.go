package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	TrainingPayloadVersion = "1.0"
	defaultTrainingTopic   = "training"
)

// QAPair is one authored question/answer record as exchanged with the
// training subsystem.
type QAPair struct {
	ID         string   `json:"id,omitempty"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   string   `json:"category,omitempty"`
	Source     string   `json:"source,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Confidence returns a pointer for QAPair.Confidence.
func Confidence(v float64) *float64 {
	return &v
}

// Entry converts the pair into a knowledge entry. ok is false when the
// question or the answer is missing. A confidence that is absent or
// outside [0,1] falls back to the source default; an explicit 0 is kept.
func (p QAPair) Entry() (AnswerEntry, bool) {
	key := NormalizeKey(p.Question)
	answer := strings.TrimSpace(p.Answer)
	if key == "" || answer == "" {
		return AnswerEntry{}, false
	}

	source := ParseSource(p.Source)
	confidence := source.DefaultConfidence()
	if p.Confidence != nil && *p.Confidence >= 0 && *p.Confidence <= 1 {
		confidence = *p.Confidence
	}
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = defaultTrainingTopic
	}

	return AnswerEntry{
		Key:        key,
		Answer:     answer,
		Category:   category,
		Source:     source,
		Confidence: confidence,
	}, true
}

// PairFromEntry is the inverse of QAPair.Entry, used when persisting.
func PairFromEntry(e AnswerEntry) QAPair {
	return QAPair{
		Question:   e.Key,
		Answer:     e.Answer,
		Category:   e.Category,
		Source:     string(e.Source),
		Confidence: Confidence(e.Confidence),
	}
}

type TrainingPayload struct {
	QAPairs     []QAPair  `json:"qaPairs"`
	LastUpdated time.Time `json:"lastUpdated"`
	Version     string    `json:"version"`
}

type IngestReport struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// DecodeTrainingPayload parses a persisted payload leniently: records that
// fail to decode are counted in skipped and left out, the rest survive.
// Only an unreadable envelope is an error.
func DecodeTrainingPayload(raw []byte) (TrainingPayload, int, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return TrainingPayload{}, 0, nil
	}

	var envelope struct {
		QAPairs     json.RawMessage `json:"qaPairs"`
		LastUpdated json.RawMessage `json:"lastUpdated"`
		Version     string          `json:"version"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return TrainingPayload{}, 0, WrapError(ErrInvalidInput, "decode training payload", err)
	}

	payload := TrainingPayload{Version: envelope.Version}
	if len(envelope.LastUpdated) > 0 {
		var ts time.Time
		if err := json.Unmarshal(envelope.LastUpdated, &ts); err == nil {
			payload.LastUpdated = ts
		}
	}

	var records []json.RawMessage
	if len(envelope.QAPairs) > 0 && string(envelope.QAPairs) != "null" {
		if err := json.Unmarshal(envelope.QAPairs, &records); err != nil {
			return payload, 0, WrapError(ErrInvalidInput, "decode training payload", fmt.Errorf("qaPairs is not an array: %w", err))
		}
	}

	skipped := 0
	payload.QAPairs = make([]QAPair, 0, len(records))
	for _, record := range records {
		var pair QAPair
		if err := json.Unmarshal(record, &pair); err != nil {
			skipped++
			continue
		}
		if _, ok := pair.Entry(); !ok {
			skipped++
			continue
		}
		payload.QAPairs = append(payload.QAPairs, pair)
	}
	return payload, skipped, nil
}

// DecodeQAPairs decodes each record on its own. A record that fails to
// decode becomes an empty pair, which Entry rejects, so ingestion counts it
// as skipped instead of dropping the whole batch.
func DecodeQAPairs(records []json.RawMessage) []QAPair {
	pairs := make([]QAPair, 0, len(records))
	for _, record := range records {
		var pair QAPair
		if err := json.Unmarshal(record, &pair); err != nil {
			pair = QAPair{}
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

func EncodeTrainingPayload(payload TrainingPayload) ([]byte, error) {
	if payload.Version == "" {
		payload.Version = TrainingPayloadVersion
	}
	if payload.QAPairs == nil {
		payload.QAPairs = []QAPair{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode training payload: %w", err)
	}
	return raw, nil
}
