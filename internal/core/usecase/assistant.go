package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/faq-assistant/internal/catalog"
	"github.com/kirillkom/faq-assistant/internal/core/dialogue"
	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/knowledge"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

type AssistantOptions struct {
	MatchThreshold float64
	Weights        knowledge.Weights
	DedupThreshold float64
	HistoryLimit   int
	Simplify       bool
	// MinConfidence prunes non-builtin entries below it during optimize.
	// Zero disables pruning.
	MinConfidence float64

	Fallback ports.FallbackSelector
	Notifier ports.ChangeNotifier
	Metrics  ports.AssistantMetrics
	Now      func() time.Time
}

// AssistantUseCase owns the single conversation and the live knowledge base.
// Every operation runs under one mutex and rebuilds the index before
// releasing it, so an answer never sees a stale index.
type AssistantUseCase struct {
	catalog *catalog.Catalog
	store   ports.TrainingStore
	opts    AssistantOptions

	mu         sync.Mutex
	knowledge  *knowledge.Store
	index      *knowledge.Index
	matcher    *knowledge.Matcher
	dedup      *knowledge.Deduplicator
	tracker    *dialogue.Tracker
	simplifier *simplifier
	fallback   fallbackPolicy
	sessionID  string
}

func NewAssistantUseCase(cat *catalog.Catalog, store ports.TrainingStore, opts AssistantOptions) *AssistantUseCase {
	if opts.Fallback == nil {
		opts.Fallback = RandomFallback{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	uc := &AssistantUseCase{
		catalog: cat,
		store:   store,
		opts:    opts,

		knowledge: knowledge.NewStore(),
		matcher:   knowledge.NewMatcher(opts.MatchThreshold, opts.Weights),
		dedup:     knowledge.NewDeduplicator(opts.DedupThreshold),
		tracker: dialogue.NewTracker(dialogue.Options{
			FollowUpPhrases: cat.FollowUpPhrases,
			Continuations:   cat.Continuations,
			HistoryLimit:    opts.HistoryLimit,
			Now:             opts.Now,
		}),
		simplifier: newSimplifier(cat.Glossary, cat.Suggestions),
		fallback:   newFallbackPolicy(cat),
		sessionID:  uuid.NewString(),
	}
	uc.knowledge.Merge(cat.Builtins())
	uc.rebuild()
	return uc
}

// Answer resolves one user turn: a follow-up on the current topic first,
// then an exact or fuzzy match, then a fallback. A fallback leaves the
// conversation state untouched.
func (uc *AssistantUseCase) Answer(ctx context.Context, query string) (*domain.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	normalized := domain.NormalizeKey(query)

	if topic, ok := uc.tracker.CurrentTopic(); ok && uc.tracker.IsFollowUp(normalized) {
		if entry, ok := uc.tracker.Resolve(normalized, topic); ok {
			uc.tracker.Update(topic, normalized, entry.Answer)
			reply := &domain.Reply{
				Text:       entry.Answer,
				Category:   topic,
				MatchedVia: domain.MatchedContextual,
				Score:      1.0,
			}
			uc.observe(reply)
			slog.Info("contextual_match", "session_id", uc.sessionID, "category", topic)
			return reply, nil
		}
	}

	if match, ok := uc.matcher.Match(normalized, uc.index); ok {
		text := match.Entry.Answer
		if uc.opts.Simplify {
			text = uc.simplifier.Apply(text, match.Entry.Category)
		}
		uc.tracker.Update(match.Entry.Category, normalized, text)

		via := domain.MatchedFuzzy
		event := "fuzzy_match"
		if match.Exact {
			via = domain.MatchedExact
			event = "direct_match"
		}
		reply := &domain.Reply{
			Text:       text,
			Category:   match.Entry.Category,
			MatchedVia: via,
			Score:      match.Score,
			MatchedKey: match.Entry.Key,
		}
		uc.observe(reply)
		slog.Info(event,
			"session_id", uc.sessionID,
			"matched_question", match.Phrasing,
			"score", match.Score,
			"category", match.Entry.Category,
		)
		return reply, nil
	}

	text, emergency := uc.fallback.text(normalized, uc.opts.Fallback.Pick)
	reply := &domain.Reply{Text: text, MatchedVia: domain.MatchedFallback}
	uc.observe(reply)
	slog.Info("no_match", "session_id", uc.sessionID, "query", normalized, "emergency", emergency)
	return reply, nil
}

func (uc *AssistantUseCase) Context(ctx context.Context) (domain.ContextSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContextSnapshot{}, err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snapshot := uc.tracker.Snapshot()
	snapshot.SessionID = uc.sessionID
	return snapshot, nil
}

// ResetContext clears the conversation and starts a new session id.
func (uc *AssistantUseCase) ResetContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.tracker.Reset()
	uc.sessionID = uuid.NewString()
	return nil
}

// IngestTraining merges pairs into the persisted payload and the live
// store. Pairs missing a question or answer are skipped and counted.
func (uc *AssistantUseCase) IngestTraining(ctx context.Context, pairs []domain.QAPair) (domain.IngestReport, error) {
	report := domain.IngestReport{Total: len(pairs)}

	accepted := make([]domain.QAPair, 0, len(pairs))
	entries := make([]domain.AnswerEntry, 0, len(pairs))
	for _, pair := range pairs {
		entry, ok := pair.Entry()
		if !ok {
			report.Skipped++
			continue
		}
		accepted = append(accepted, pair)
		entries = append(entries, entry)
	}
	report.Accepted = len(entries)
	if len(entries) == 0 {
		uc.observeIngest(report)
		return report, nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.appendPersisted(ctx, accepted); err != nil {
		return report, err
	}

	uc.knowledge.Merge(entries)
	uc.rebuild()
	uc.observeIngest(report)
	uc.notify(ctx)

	slog.Info("training_ingested", "accepted", report.Accepted, "skipped", report.Skipped, "entries", uc.knowledge.Len())
	return report, nil
}

// OptimizeKnowledgeBase removes near-duplicate keys and, when configured,
// low-confidence entries. It returns how many entries were removed.
func (uc *AssistantUseCase) OptimizeKnowledgeBase(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	retained, duplicates := uc.dedup.Optimize(uc.knowledge.All())
	retained, pruned := pruneLowConfidence(retained, uc.opts.MinConfidence)
	removed := duplicates + pruned
	if removed == 0 {
		uc.observeOptimize(0)
		return 0, nil
	}

	if uc.store != nil {
		pairs := make([]domain.QAPair, 0, len(retained))
		for _, entry := range retained {
			if entry.Source == domain.SourceBuiltin {
				continue
			}
			pairs = append(pairs, domain.PairFromEntry(entry))
		}
		if err := uc.savePayload(ctx, pairs); err != nil {
			return 0, err
		}
	}

	uc.knowledge.Replace(retained)
	uc.rebuild()
	uc.observeOptimize(removed)
	uc.notify(ctx)

	slog.Info("knowledge_optimized", "duplicates", duplicates, "pruned", pruned, "entries", uc.knowledge.Len())
	return removed, nil
}

// Reload rebuilds the knowledge base from the catalog builtins and the
// persisted training payload. A missing payload leaves builtins only; a
// malformed one is logged and ignored. The payload is read under the same
// lock as ingest and optimize, so a reload never installs a stale snapshot.
func (uc *AssistantUseCase) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	payload, err := uc.loadPayload(ctx)
	if err != nil && !domain.IsKind(err, domain.ErrInvalidInput) {
		return err
	}
	if err != nil {
		slog.Warn("training_payload_malformed", "error", err.Error())
		payload = domain.TrainingPayload{}
	}

	entries := uc.catalog.Builtins()
	for _, pair := range payload.QAPairs {
		if entry, ok := pair.Entry(); ok {
			entries = append(entries, entry)
		}
	}

	uc.knowledge.Replace(entries)
	uc.rebuild()

	slog.Info("training_reloaded", "pairs", len(payload.QAPairs), "entries", uc.knowledge.Len(), "index_entries", uc.index.Len())
	return nil
}

// Knowledge returns the live entries in insertion order with summary counts.
func (uc *AssistantUseCase) Knowledge(ctx context.Context) (domain.KnowledgeStats, []domain.AnswerEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.KnowledgeStats{}, nil, err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entries := uc.knowledge.All()
	stats := domain.KnowledgeStats{
		Entries:      len(entries),
		IndexEntries: uc.index.Len(),
		BySource:     make(map[string]int),
		ByCategory:   make(map[string]int),
	}
	for _, entry := range entries {
		stats.BySource[string(entry.Source)]++
		stats.ByCategory[entry.Category]++
	}
	return stats, entries, nil
}

func (uc *AssistantUseCase) rebuild() {
	uc.index = knowledge.BuildIndex(uc.knowledge)
	if uc.opts.Metrics != nil {
		uc.opts.Metrics.ObserveKnowledge(uc.knowledge.Len(), uc.index.Len())
	}
}

func (uc *AssistantUseCase) loadPayload(ctx context.Context) (domain.TrainingPayload, error) {
	if uc.store == nil {
		return domain.TrainingPayload{}, nil
	}
	raw, err := uc.store.Load(ctx)
	if errors.Is(err, domain.ErrTrainingPayloadMissing) {
		return domain.TrainingPayload{}, nil
	}
	if err != nil {
		return domain.TrainingPayload{}, fmt.Errorf("load training payload: %w", err)
	}

	payload, skipped, err := domain.DecodeTrainingPayload(raw)
	if err != nil {
		return domain.TrainingPayload{}, err
	}
	if skipped > 0 {
		slog.Warn("training_records_skipped", "skipped", skipped)
	}
	return payload, nil
}

// appendPersisted merges pairs into the stored payload by normalized
// question, replacing earlier records in place.
func (uc *AssistantUseCase) appendPersisted(ctx context.Context, pairs []domain.QAPair) error {
	if uc.store == nil {
		return nil
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	payload, err := uc.loadPayload(ctx)
	if err != nil && !domain.IsKind(err, domain.ErrInvalidInput) {
		return err
	}
	if err != nil {
		slog.Warn("training_payload_malformed", "error", err.Error())
		payload = domain.TrainingPayload{}
	}

	merged := payload.QAPairs
	position := make(map[string]int, len(merged))
	for i, pair := range merged {
		position[domain.NormalizeKey(pair.Question)] = i
	}
	for _, pair := range pairs {
		key := domain.NormalizeKey(pair.Question)
		if i, ok := position[key]; ok {
			merged[i] = pair
			continue
		}
		position[key] = len(merged)
		merged = append(merged, pair)
	}
	return uc.savePayload(ctx, merged)
}

func (uc *AssistantUseCase) savePayload(ctx context.Context, pairs []domain.QAPair) error {
	raw, err := domain.EncodeTrainingPayload(domain.TrainingPayload{
		QAPairs:     pairs,
		LastUpdated: uc.opts.Now().UTC(),
		Version:     domain.TrainingPayloadVersion,
	})
	if err != nil {
		return err
	}
	if err := uc.store.Save(ctx, raw); err != nil {
		return fmt.Errorf("save training payload: %w", err)
	}
	return nil
}

func (uc *AssistantUseCase) notify(ctx context.Context) {
	if uc.opts.Notifier == nil {
		return
	}
	if err := uc.opts.Notifier.PublishTrainingUpdated(ctx); err != nil {
		slog.Warn("training_notify_failed", "error", err.Error())
	}
}

func (uc *AssistantUseCase) observe(reply *domain.Reply) {
	if uc.opts.Metrics != nil {
		uc.opts.Metrics.ObserveAnswer(reply.MatchedVia, reply.Score)
	}
}

func (uc *AssistantUseCase) observeIngest(report domain.IngestReport) {
	if uc.opts.Metrics != nil {
		uc.opts.Metrics.ObserveIngest(report.Accepted, report.Skipped)
	}
}

func (uc *AssistantUseCase) observeOptimize(removed int) {
	if uc.opts.Metrics != nil {
		uc.opts.Metrics.ObserveOptimize(removed)
	}
}

func pruneLowConfidence(entries []domain.AnswerEntry, minConfidence float64) ([]domain.AnswerEntry, int) {
	if minConfidence <= 0 {
		return entries, 0
	}
	kept := entries[:0:0]
	for _, entry := range entries {
		if entry.Source != domain.SourceBuiltin && entry.Confidence < minConfidence {
			continue
		}
		kept = append(kept, entry)
	}
	return kept, len(entries) - len(kept)
}
