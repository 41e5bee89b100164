// Package handler exposes the store's query operations over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/recorddex/recorddex/internal/analytics"
	"github.com/recorddex/recorddex/internal/model"
	"github.com/recorddex/recorddex/internal/searcher"
	"github.com/recorddex/recorddex/internal/searcher/cache"
	"github.com/recorddex/recorddex/internal/store"
	"github.com/recorddex/recorddex/pkg/logger"
	"github.com/recorddex/recorddex/pkg/metrics"
	"github.com/recorddex/recorddex/pkg/tracing"
)

// Queries slower than this get their span tree logged.
const slowQueryThreshold = 250 * time.Millisecond

// RecordStore is the slice of the store the handler needs.
type RecordStore interface {
	SearchByID(key string) (*model.Record, bool)
	SearchByName(prefix string) []*model.Record
	SearchByExactName(name string) []*model.Record
	AllRecords() []*model.Record
	Size() int
	Snapshot() store.Stats
}

// Handler serves the record query API.
type Handler struct {
	store        RecordStore
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil, which disables
// caching, analytics, and metric recording respectively.
func New(st RecordStore, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		store:        st,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// SearchByID serves GET /api/v1/records/{key}.
func (h *Handler) SearchByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	key := r.PathValue("key")
	rec, ok := h.store.SearchByID(key)

	latency := time.Since(start)
	result := "hit"
	if !ok {
		result = "miss"
	}
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues("id", result).Inc()
	}
	if h.collector != nil {
		hits := 0
		if ok {
			hits = 1
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Kind:      "id",
			Query:     key,
			TotalHits: hits,
			Returned:  hits,
			LatencyMs: latency.Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}

	if !ok {
		log.Info("record not found", "key", key)
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no record with key %q", key))
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Search serves GET /api/v1/search?prefix=P[&exact=true][&limit=N].
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'prefix' is required")
		return
	}

	kind := searcher.KindPrefix
	if r.URL.Query().Get("exact") == "true" {
		kind = searcher.KindExact
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	ctx, span := tracing.StartSpan(ctx, "search", logger.RequestID(ctx))
	span.SetAttr("kind", kind)
	span.SetAttr("prefix", prefix)

	var result *searcher.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, kind, prefix, limit, func() (*searcher.Result, error) {
			return h.execute(ctx, kind, prefix, limit), nil
		})
	} else {
		result = h.execute(ctx, kind, prefix, limit)
	}
	span.End()

	if err != nil {
		log.Error("search failed", "prefix", prefix, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	latency := time.Since(start)
	if latency > slowQueryThreshold {
		span.Log()
	}
	h.observeSearch(kind, result, cacheHit, latency)

	log.Info("search completed",
		"kind", kind,
		"prefix", prefix,
		"total_hits", result.TotalHits,
		"returned", len(result.Records),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Kind:      kind,
			Query:     prefix,
			TotalHits: result.TotalHits,
			Returned:  len(result.Records),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// execute runs the query against the store and truncates to limit.
func (h *Handler) execute(ctx context.Context, kind, prefix string, limit int) *searcher.Result {
	_, span := tracing.StartChildSpan(ctx, "store-search")
	defer span.End()

	var recs []*model.Record
	if kind == searcher.KindExact {
		recs = h.store.SearchByExactName(prefix)
	} else {
		recs = h.store.SearchByName(prefix)
	}
	span.SetAttr("hits", len(recs))

	total := len(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	if recs == nil {
		recs = []*model.Record{}
	}
	return &searcher.Result{
		Query:     prefix,
		Kind:      kind,
		TotalHits: total,
		Records:   recs,
	}
}

func (h *Handler) observeSearch(kind string, result *searcher.Result, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	if result.TotalHits == 0 {
		outcome = "miss"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(kind, outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(result.Records)))
}

// AllRecords serves GET /api/v1/records.
func (h *Handler) AllRecords(w http.ResponseWriter, r *http.Request) {
	recs := h.store.AllRecords()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(recs),
		"records": recs,
	})
}

// Stats serves GET /api/v1/stats: store internals plus cache counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"store": h.store.Snapshot(),
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		total := hits + misses
		var hitRate float64
		if total > 0 {
			hitRate = float64(hits) / float64(total) * 100
		}
		payload["cache"] = map[string]any{
			"hits":     hits,
			"misses":   misses,
			"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		}
	} else {
		payload["cache"] = map[string]string{"status": "disabled"}
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// CacheInvalidate serves POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
