package domain

import "time"

type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type TopicMemo struct {
	LastQuestion string    `json:"last_question"`
	LastAnswer   string    `json:"last_answer"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContextSnapshot is a read-only copy of the conversation state.
type ContextSnapshot struct {
	SessionID    string               `json:"session_id"`
	CurrentTopic string               `json:"current_topic,omitempty"`
	TopicMemory  map[string]TopicMemo `json:"topic_memory"`
	History      []Turn               `json:"history"`
}

// KnowledgeStats summarizes the live knowledge base.
type KnowledgeStats struct {
	Entries      int            `json:"entries"`
	IndexEntries int            `json:"index_entries"`
	BySource     map[string]int `json:"by_source"`
	ByCategory   map[string]int `json:"by_category"`
}
