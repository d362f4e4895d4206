package ports

import (
	"context"
	"io"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SavePairsExtracted(ctx context.Context, id string, count int) error
}

// ObjectStorage stores source documents. Delete of a missing key is not an
// error.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// DocumentFormats tells whether an uploaded file can be harvested.
type DocumentFormats interface {
	Supports(filename, mimeType string) bool
}

// MessageQueue publishes/consumes document ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TrainingStore holds the serialized training payload. Load returns
// domain.ErrTrainingPayloadMissing when nothing has been saved yet.
type TrainingStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// ChangeNotifier announces that the persisted training payload changed.
type ChangeNotifier interface {
	PublishTrainingUpdated(ctx context.Context) error
}

// ChangeSubscriber delivers training change announcements until ctx ends.
type ChangeSubscriber interface {
	SubscribeTrainingUpdated(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// PairExtractor yields question/answer pairs for formats that carry that
// structure directly (spreadsheets). structured is false for free text.
type PairExtractor interface {
	ExtractPairs(ctx context.Context, doc *domain.Document) (pairs []domain.QAPair, structured bool, err error)
}

// FallbackSelector picks one of the catalog fallbacks.
type FallbackSelector interface {
	Pick(n int) int
}

// AssistantMetrics receives answer and knowledge base observations.
type AssistantMetrics interface {
	ObserveAnswer(via domain.MatchedVia, score float64)
	ObserveKnowledge(entries, indexEntries int)
	ObserveIngest(accepted, skipped int)
	ObserveOptimize(removed int)
}
