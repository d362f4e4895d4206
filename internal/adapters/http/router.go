package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/faq-assistant/internal/config"
	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

const serviceName = "faq-api"

// MetricsMiddleware instruments handlers and exposes the scrape endpoint.
type MetricsMiddleware interface {
	Middleware(service string, next http.Handler) http.Handler
	Handler() http.Handler
	RecordRejected(service, reason string)
}

// Dependencies groups the inbound ports served over HTTP. Ingest and
// Documents may be nil when no document repository is configured.
type Dependencies struct {
	Conversation ports.Conversation
	Knowledge    ports.KnowledgeBase
	Ingest       ports.DocumentIngestor
	Documents    ports.DocumentReader
	Metrics      MetricsMiddleware
}

type Router struct {
	cfg  config.Config
	deps Dependencies
}

func NewRouter(cfg config.Config, deps Dependencies) *Router {
	return &Router{cfg: cfg, deps: deps}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveOpenAPI)
	if rt.deps.Metrics != nil {
		mux.Handle("GET /metrics", rt.deps.Metrics.Handler())
	}

	mux.HandleFunc("POST /v1/chat/answer", rt.answer)
	mux.HandleFunc("GET /v1/chat/context", rt.getContext)
	mux.HandleFunc("DELETE /v1/chat/context", rt.resetContext)

	mux.Handle("POST /v1/training/pairs", rt.requireAPIKey(rt.ingestTraining))
	mux.HandleFunc("GET /v1/knowledge", rt.listKnowledge)
	mux.Handle("POST /v1/knowledge/optimize", rt.requireAPIKey(rt.optimizeKnowledge))
	mux.Handle("POST /v1/knowledge/reload", rt.requireAPIKey(rt.reloadKnowledge))

	mux.Handle("POST /v1/documents", rt.requireAPIKey(rt.uploadDocument))
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)

	var handler http.Handler = mux
	if validator, err := newRequestValidator(); err != nil {
		slog.Error("openapi_validator_disabled", "error", err)
	} else {
		handler = validator.middleware(handler)
	}

	rejected := func(reason string) {
		if rt.deps.Metrics != nil {
			rt.deps.Metrics.RecordRejected(serviceName, reason)
		}
	}
	wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
	handler = backpressureWithHook(handler, rt.cfg.APIMaxInFlight, wait, rejected)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rejected)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	reply, err := rt.deps.Conversation.Answer(r.Context(), req.Query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) getContext(w http.ResponseWriter, r *http.Request) {
	snapshot, err := rt.deps.Conversation.Context(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (rt *Router) resetContext(w http.ResponseWriter, r *http.Request) {
	if err := rt.deps.Conversation.ResetContext(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) ingestTraining(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QAPairs []json.RawMessage `json:"qaPairs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Records are decoded one by one so a single bad record is skipped
	// rather than failing the batch.
	report, err := rt.deps.Knowledge.IngestTraining(r.Context(), domain.DecodeQAPairs(req.QAPairs))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) listKnowledge(w http.ResponseWriter, r *http.Request) {
	stats, entries, err := rt.deps.Knowledge.Knowledge(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if category != "" || source != "" {
		filtered := make([]domain.AnswerEntry, 0, len(entries))
		for _, entry := range entries {
			if category != "" && entry.Category != category {
				continue
			}
			if source != "" && string(entry.Source) != source {
				continue
			}
			filtered = append(filtered, entry)
		}
		entries = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   stats,
		"entries": entries,
	})
}

func (rt *Router) optimizeKnowledge(w http.ResponseWriter, r *http.Request) {
	removed, err := rt.deps.Knowledge.OptimizeKnowledgeBase(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (rt *Router) reloadKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := rt.deps.Knowledge.Reload(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	stats, _, err := rt.deps.Knowledge.Knowledge(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Ingest == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "document ingestion is not configured"})
		return
	}
	if rt.cfg.APIMaxUploadMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(rt.cfg.APIMaxUploadMB)<<20)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "document is too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.deps.Ingest.Upload(r.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Documents == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "document ingestion is not configured"})
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.deps.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) requireAPIKey(next http.HandlerFunc) http.Handler {
	if rt.cfg.APIKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.cfg.APIKey) {
			writeError(w, r, domain.WrapError(domain.ErrUnauthorized, "authorize", errors.New("missing or invalid bearer token")))
			return
		}
		next(w, r)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
