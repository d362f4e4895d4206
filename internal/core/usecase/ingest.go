package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

const genericMimeType = "application/octet-stream"

// IngestDocumentUseCase accepts an uploaded training document, stores it
// and queues it for harvesting. Only formats the harvester can read are
// accepted, and a document that never reaches the queue leaves no blob
// behind.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	formats ports.DocumentFormats
	now     func() time.Time
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	formats ports.DocumentFormats,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		formats: formats,
		now:     time.Now,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	mimeType = resolveMimeType(filename, mimeType)
	if uc.formats != nil && !uc.formats.Supports(filename, mimeType) {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload document",
			fmt.Errorf("%s (%s) cannot be harvested", filename, mimeType))
	}

	doc := uc.newDocument(filename, mimeType)
	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		uc.discardBlob(ctx, doc)
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		uc.discardBlob(ctx, doc)
		uc.markUnqueued(ctx, doc, err)
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	slog.Info("document_queued", "document_id", doc.ID, "filename", doc.Filename, "mime_type", doc.MimeType)
	return doc, nil
}

func (uc *IngestDocumentUseCase) newDocument(filename, mimeType string) *domain.Document {
	id := uuid.NewString()
	now := uc.now().UTC()
	return &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// discardBlob runs even when ctx is already cancelled: a failed upload must
// not leave an unreferenced file in storage.
func (uc *IngestDocumentUseCase) discardBlob(ctx context.Context, doc *domain.Document) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), doc.StoragePath); err != nil {
		slog.Warn("document_cleanup_failed", "document_id", doc.ID, "storage_path", doc.StoragePath, "error", err)
	}
}

func (uc *IngestDocumentUseCase) markUnqueued(ctx context.Context, doc *domain.Document, queueErr error) {
	message := "not queued for harvesting: " + queueErr.Error()
	if err := uc.repo.UpdateStatus(context.WithoutCancel(ctx), doc.ID, domain.StatusFailed, message); err != nil {
		slog.Warn("document_status_update_failed", "document_id", doc.ID, "error", err)
	}
}

// resolveMimeType prefers the extension's registered type when the client
// sent nothing or only the generic binary type.
func resolveMimeType(filename, mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType != "" && mimeType != genericMimeType {
		return mimeType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	if mimeType == "" {
		return genericMimeType
	}
	return mimeType
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
