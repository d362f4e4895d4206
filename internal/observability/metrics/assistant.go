package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

// AssistantMetrics observes answer resolution, knowledge base size and
// the resilience executor guarding the training store and broker.
type AssistantMetrics struct {
	answersTotal   *prometheus.CounterVec
	matchScore     *prometheus.HistogramVec
	entries        prometheus.Gauge
	indexEntries   prometheus.Gauge
	ingestedTotal  *prometheus.CounterVec
	removedTotal   prometheus.Counter
	retriesTotal   *prometheus.CounterVec
	breakerChanges *prometheus.CounterVec
}

func NewAssistantMetrics(registerer prometheus.Registerer, service string) *AssistantMetrics {
	labels := prometheus.Labels{"service": service}
	m := &AssistantMetrics{
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "assistant",
			Name:        "answers_total",
			Help:        "Answered questions by resolution path.",
			ConstLabels: labels,
		}, []string{"matched_via"}),
		matchScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "assistant",
			Name:        "match_score",
			Help:        "Score of the winning match per resolution path.",
			Buckets:     []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			ConstLabels: labels,
		}, []string{"matched_via"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "knowledge",
			Name:        "entries",
			Help:        "Answer entries in the knowledge store.",
			ConstLabels: labels,
		}),
		indexEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "knowledge",
			Name:        "index_entries",
			Help:        "Phrasings in the search index.",
			ConstLabels: labels,
		}),
		ingestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "training",
			Name:        "records_total",
			Help:        "Ingested training records by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		removedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "knowledge",
			Name:        "optimize_removed_total",
			Help:        "Entries removed by knowledge base optimization.",
			ConstLabels: labels,
		}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "retries_total",
			Help:        "Retried calls by operation.",
			ConstLabels: labels,
		}, []string{"operation"}),
		breakerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_transitions_total",
			Help:        "Circuit breaker transitions by operation and new state.",
			ConstLabels: labels,
		}, []string{"operation", "state"}),
	}
	registerer.MustRegister(
		m.answersTotal,
		m.matchScore,
		m.entries,
		m.indexEntries,
		m.ingestedTotal,
		m.removedTotal,
		m.retriesTotal,
		m.breakerChanges,
	)
	return m
}

func (m *AssistantMetrics) ObserveAnswer(via domain.MatchedVia, score float64) {
	m.answersTotal.WithLabelValues(string(via)).Inc()
	if via != domain.MatchedFallback {
		m.matchScore.WithLabelValues(string(via)).Observe(score)
	}
}

func (m *AssistantMetrics) ObserveKnowledge(entries, indexEntries int) {
	m.entries.Set(float64(entries))
	m.indexEntries.Set(float64(indexEntries))
}

func (m *AssistantMetrics) ObserveIngest(accepted, skipped int) {
	m.ingestedTotal.WithLabelValues("accepted").Add(float64(accepted))
	m.ingestedTotal.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *AssistantMetrics) ObserveOptimize(removed int) {
	m.removedTotal.Add(float64(removed))
}

func (m *AssistantMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(operation).Inc()
}

func (m *AssistantMetrics) ObserveBreakerState(operation, state string) {
	m.breakerChanges.WithLabelValues(operation, state).Inc()
}
