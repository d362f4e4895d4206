package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/faq-assistant/internal/catalog"
	"github.com/kirillkom/faq-assistant/internal/config"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
	"github.com/kirillkom/faq-assistant/internal/core/usecase"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/kv/filestore"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/kv/redisstore"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/queue/inproc"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/faq-assistant/internal/observability/metrics"
)

// Options carries per-process wiring. Registerer may be nil to run
// without assistant metrics.
type Options struct {
	Service    string
	Registerer prometheus.Registerer
}

type App struct {
	Config config.Config

	Assistant *usecase.AssistantUseCase
	Formats   *extractor.Router

	// Document pipeline; nil when POSTGRES_DSN is empty.
	Queue     ports.MessageQueue
	Documents ports.DocumentReader
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	// LocalJobs is true when document jobs must be consumed in-process.
	LocalJobs bool

	// Changes delivers training change announcements; nil when nothing
	// can observe writes from other processes.
	Changes ports.ChangeSubscriber

	service  string
	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg, service: opts.Service}
	if err := app.wire(ctx, opts); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context, opts Options) error {
	cfg := a.Config

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var assistantMetrics *metrics.AssistantMetrics
	var executorOpts []resilience.Option
	if opts.Registerer != nil {
		assistantMetrics = metrics.NewAssistantMetrics(opts.Registerer, opts.Service)
		executorOpts = append(executorOpts, resilience.WithObserver(assistantMetrics))
	}
	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = cfg.ResilienceRetryAttempts
	resilienceCfg.BreakerEnabled = cfg.ResilienceBreakerEnabled
	executor := resilience.NewExecutor(resilienceCfg, executorOpts...)

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.onClose(func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	var queue *nats.Queue
	if cfg.NATSURL != "" {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSDocumentSubject, nats.Options{
			TrainingSubject:    cfg.NATSTrainingSubject,
			ResilienceExecutor: executor,
		})
		if err != nil {
			return fmt.Errorf("init message queue: %w", err)
		}
		a.onClose(queue.Close)
	}

	store, notifier, changes, err := a.trainingStore(ctx, cfg, db, executor)
	if err != nil {
		return err
	}
	if queue != nil {
		notifier, changes = queue, queue
	}
	a.Changes = changes

	var fallback ports.FallbackSelector = usecase.RandomFallback{}
	if cfg.FallbackMode == config.FallbackFirst {
		fallback = usecase.FirstFallback{}
	}
	assistantOpts := usecase.AssistantOptions{
		MatchThreshold: cfg.MatchThreshold,
		DedupThreshold: cfg.DedupThreshold,
		HistoryLimit:   cfg.HistoryLimit,
		Simplify:       cfg.SimplifyAnswers,
		MinConfidence:  cfg.OptimizeMinConfidence,
		Fallback:       fallback,
		Notifier:       notifier,
	}
	if assistantMetrics != nil {
		assistantOpts.Metrics = assistantMetrics
	}
	a.Assistant = usecase.NewAssistantUseCase(cat, store, assistantOpts)
	if err := a.Assistant.Reload(ctx); err != nil {
		return fmt.Errorf("load training payload: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	a.Formats = extractor.NewRouter(storage)

	if db == nil {
		slog.Info("document_pipeline_disabled", "reason", "POSTGRES_DSN is empty")
		return nil
	}

	repo := postgres.NewDocumentRepository(db)
	var jobs ports.MessageQueue
	if queue != nil {
		jobs = queue
	} else {
		jobs = inproc.New()
		a.LocalJobs = true
	}
	a.Queue = jobs
	a.Documents = repo
	a.IngestUC = usecase.NewIngestDocumentUseCase(repo, storage, jobs, a.Formats)
	a.ProcessUC = usecase.NewProcessDocumentUseCase(repo, a.Formats, a.Formats, a.Assistant, cat.Categorize)
	return nil
}

// trainingStore picks the payload backend. The returned notifier and
// subscriber are the backend's own change channel, if it has one.
func (a *App) trainingStore(
	ctx context.Context,
	cfg config.Config,
	db *sql.DB,
	executor *resilience.Executor,
) (ports.TrainingStore, ports.ChangeNotifier, ports.ChangeSubscriber, error) {
	switch cfg.TrainingStore {
	case config.TrainingStoreFile:
		store, err := filestore.New(cfg.TrainingFilePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init training file: %w", err)
		}
		return store, nil, store, nil

	case config.TrainingStoreRedis:
		if cfg.RedisAddr == "" {
			return nil, nil, nil, errors.New("TRAINING_STORE=redis requires REDIS_ADDR")
		}
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init redis: %w", err)
		}
		a.onClose(func() { _ = client.Close() })
		store := redisstore.New(client, redisstore.Options{
			Key:                cfg.TrainingKey,
			ResilienceExecutor: executor,
		})
		return store, store, store, nil

	case config.TrainingStorePostgres:
		if db == nil {
			return nil, nil, nil, errors.New("TRAINING_STORE=postgres requires POSTGRES_DSN")
		}
		return postgres.NewTrainingRepository(db, cfg.TrainingKey), nil, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown TRAINING_STORE %q", cfg.TrainingStore)
	}
}

// WatchTraining reloads the knowledge base on every change announcement
// until ctx ends. It returns immediately when no change channel exists.
func (a *App) WatchTraining(ctx context.Context) error {
	if a.Changes == nil {
		slog.Info("training_watch_disabled")
		return nil
	}
	return a.Changes.SubscribeTrainingUpdated(ctx, a.Assistant.Reload)
}

// JobObserver receives document job timings.
type JobObserver interface {
	StartDocument()
	FinishDocument(service string, duration time.Duration, pairs int, err error)
	ObserveQueueLag(service string, lag time.Duration)
}

// ServeDocumentJobs consumes document jobs until ctx ends. Job failures
// are recorded on the document and logged, never returned to the queue.
func (a *App) ServeDocumentJobs(ctx context.Context, observer JobObserver) error {
	if a.Queue == nil {
		return errors.New("document pipeline is not configured")
	}
	return a.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if observer != nil {
			if doc, err := a.Documents.GetByID(processCtx, documentID); err == nil {
				observer.ObserveQueueLag(a.service, time.Since(doc.CreatedAt))
			}
			observer.StartDocument()
		}

		start := time.Now()
		err := a.ProcessUC.ProcessByID(processCtx, documentID)

		if observer != nil {
			pairs := 0
			if doc, getErr := a.Documents.GetByID(processCtx, documentID); getErr == nil {
				pairs = doc.PairsExtracted
			}
			observer.FinishDocument(a.service, time.Since(start), pairs, err)
		}
		if err != nil {
			slog.Error("document_processing_failed", "document_id", documentID, "error", err)
		}
		return nil
	})
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
