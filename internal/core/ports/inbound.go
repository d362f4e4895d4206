package ports

import (
	"context"
	"io"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

// Conversation is the inbound contract for answering user turns.
type Conversation interface {
	Answer(ctx context.Context, query string) (*domain.Reply, error)
	Context(ctx context.Context) (domain.ContextSnapshot, error)
	ResetContext(ctx context.Context) error
}

// KnowledgeBase is the inbound contract for maintaining the answer set.
type KnowledgeBase interface {
	IngestTraining(ctx context.Context, pairs []domain.QAPair) (domain.IngestReport, error)
	OptimizeKnowledgeBase(ctx context.Context) (int, error)
	Reload(ctx context.Context) error
	Knowledge(ctx context.Context) (domain.KnowledgeStats, []domain.AnswerEntry, error)
}

// TrainingIngestor accepts authored or harvested pairs.
type TrainingIngestor interface {
	IngestTraining(ctx context.Context, pairs []domain.QAPair) (domain.IngestReport, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
