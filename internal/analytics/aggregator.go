package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/recorddex/recorddex/pkg/kafka"
)

// AggregatedStats is the rolled-up view served by the analytics endpoint and
// persisted by the snapshot store.
type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	TotalRecordsAdded int64        `json:"total_records_added"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

// QueryCount pairs a query string with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes analytics events from Kafka and maintains running
// statistics.
type Aggregator struct {
	totalSearches atomic.Int64
	totalRecords  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	zeroResults   atomic.Int64

	mu                sync.RWMutex
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time

	logger *slog.Logger
}

// NewAggregator creates an empty Aggregator. Feed it by constructing a
// consumer with HandleEvent(agg) as its handler.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a kafka.MessageHandler that routes decoded events to
// the aggregator. Undecodable events are logged and dropped, never retried.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err == nil && event.Kind != "" {
			agg.recordSearchEvent(event)
			return nil
		}
		recEvent, recErr := kafka.DecodeJSON[RecordEvent](value)
		if recErr != nil || recEvent.Key == "" {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		agg.recordRecordEvent(recEvent)
		return nil
	}
}

func (a *Aggregator) recordSearchEvent(event SearchEvent) {
	a.totalSearches.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.TotalHits == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.TotalHits == 0 {
		a.zeroResultQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordRecordEvent(event RecordEvent) {
	a.totalRecords.Add(1)
}

// Stats returns a snapshot of the aggregate statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:     a.totalSearches.Load(),
		TotalRecordsAdded: a.totalRecords.Load(),
		CacheHits:         a.cacheHits.Load(),
		CacheMisses:       a.cacheMisses.Load(),
		ZeroResultCount:   a.zeroResults.Load(),
	}

	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)

	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
