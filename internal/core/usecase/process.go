package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

// ProcessDocumentUseCase harvests question/answer pairs from an uploaded
// document and hands them to the training ingestor.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	extractor  ports.TextExtractor
	pairs      ports.PairExtractor
	ingestor   ports.TrainingIngestor
	categorize func(string) string
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	pairs ports.PairExtractor,
	ingestor ports.TrainingIngestor,
	categorize func(string) string,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		extractor:  extractor,
		pairs:      pairs,
		ingestor:   ingestor,
		categorize: categorize,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	accepted, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SavePairsExtracted(ctx, documentID, accepted); err != nil {
		err = fmt.Errorf("save pairs extracted: %w", err)
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	pairs, err := uc.harvest(ctx, doc)
	if err != nil {
		return 0, err
	}
	if len(pairs) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "harvest pairs", errors.New("document yielded no question/answer pairs"))
	}

	report, err := uc.ingestor.IngestTraining(ctx, pairs)
	if err != nil {
		return 0, fmt.Errorf("ingest harvested pairs: %w", err)
	}
	return report.Accepted, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) harvest(ctx context.Context, doc *domain.Document) ([]domain.QAPair, error) {
	if uc.pairs != nil {
		pairs, structured, err := uc.pairs.ExtractPairs(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("extract pairs: %w", err)
		}
		if structured {
			return uc.fillCategories(pairs), nil
		}
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return HarvestPairs(text, uc.categorize), nil
}

func (uc *ProcessDocumentUseCase) fillCategories(pairs []domain.QAPair) []domain.QAPair {
	for i := range pairs {
		if pairs[i].Source == "" {
			pairs[i].Source = string(domain.SourceDocument)
		}
		if strings.TrimSpace(pairs[i].Category) == "" && uc.categorize != nil {
			pairs[i].Category = uc.categorize(pairs[i].Question + " " + pairs[i].Answer)
		}
	}
	return pairs
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
