package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func TestHTTPMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPServerMetrics("faq-api")
	handler := m.Middleware("faq-api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/documents/abc", nil))

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("faq-api", http.MethodGet, "/v1/documents/{document_id}", "202"))
	if got != 1 {
		t.Fatalf("expected 1 request recorded, got %v", got)
	}
}

func TestAssistantMetricsShareRegistry(t *testing.T) {
	httpMetrics := NewHTTPServerMetrics("faq-api")
	m := NewAssistantMetrics(httpMetrics.Registerer(), "faq-api")

	m.ObserveAnswer(domain.MatchedExact, 1)
	m.ObserveAnswer(domain.MatchedFallback, 0)
	m.ObserveKnowledge(44, 500)
	m.ObserveIngest(3, 1)
	m.ObserveRetry("redis.set")

	if got := testutil.ToFloat64(m.answersTotal.WithLabelValues("fallback")); got != 1 {
		t.Fatalf("expected 1 fallback answer, got %v", got)
	}
	if got := testutil.ToFloat64(m.indexEntries); got != 500 {
		t.Fatalf("expected index gauge 500, got %v", got)
	}

	rec := httptest.NewRecorder()
	httpMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "faq_training_records_total") {
		t.Fatalf("expected assistant metrics on the shared handler")
	}
}

func TestWorkerMetricsFinishDocument(t *testing.T) {
	m := NewWorkerMetrics("faq-worker")

	m.StartDocument()
	m.FinishDocument("faq-worker", time.Second, 4, nil)
	m.StartDocument()
	m.FinishDocument("faq-worker", time.Second, 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("faq-worker", "error")); got != 1 {
		t.Fatalf("expected 1 failed document, got %v", got)
	}
	if got := testutil.ToFloat64(m.processInFlight); got != 0 {
		t.Fatalf("expected no in-flight documents, got %v", got)
	}
}
