package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func feed(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshalling event: %v", err)
	}
	if err := HandleEvent(agg)(context.Background(), nil, value); err != nil {
		t.Fatalf("handling event: %v", err)
	}
}

func TestHandleEventRoutesSearchAndRecordEvents(t *testing.T) {
	agg := NewAggregator()

	feed(t, agg, SearchEvent{
		Type:      EventSearch,
		Kind:      "prefix",
		Query:     "Ali",
		TotalHits: 3,
		Returned:  3,
		LatencyMs: 4,
		Timestamp: time.Now().UTC(),
	})
	feed(t, agg, RecordEvent{
		Type:      EventRecordAdd,
		Key:       "S001",
		LabelLen:  13,
		Timestamp: time.Now().UTC(),
	})

	stats := agg.Stats()
	if stats.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", stats.TotalSearches)
	}
	if stats.TotalRecordsAdded != 1 {
		t.Errorf("TotalRecordsAdded = %d, want 1", stats.TotalRecordsAdded)
	}
}

func TestHandleEventDropsUndecodable(t *testing.T) {
	agg := NewAggregator()
	if err := HandleEvent(agg)(context.Background(), nil, []byte("{broken")); err != nil {
		t.Fatalf("undecodable event should be dropped, got %v", err)
	}
	if got := agg.Stats().TotalSearches; got != 0 {
		t.Errorf("TotalSearches = %d, want 0", got)
	}
}

func TestStatsLatencyPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := int64(1); i <= 100; i++ {
		feed(t, agg, SearchEvent{Kind: "prefix", Query: "q", TotalHits: 1, LatencyMs: i})
	}

	stats := agg.Stats()
	if stats.P50LatencyMs < 50 || stats.P50LatencyMs > 52 {
		t.Errorf("P50LatencyMs = %d, want around 51", stats.P50LatencyMs)
	}
	if stats.P99LatencyMs < 99 {
		t.Errorf("P99LatencyMs = %d, want at least 99", stats.P99LatencyMs)
	}
	if stats.AvgLatencyMs != 50.5 {
		t.Errorf("AvgLatencyMs = %v, want 50.5", stats.AvgLatencyMs)
	}
}

func TestStatsZeroResultTracking(t *testing.T) {
	agg := NewAggregator()
	feed(t, agg, SearchEvent{Kind: "prefix", Query: "Zzz", TotalHits: 0})
	feed(t, agg, SearchEvent{Kind: "prefix", Query: "Zzz", TotalHits: 0})
	feed(t, agg, SearchEvent{Kind: "prefix", Query: "Ali", TotalHits: 3})

	stats := agg.Stats()
	if stats.ZeroResultCount != 2 {
		t.Errorf("ZeroResultCount = %d, want 2", stats.ZeroResultCount)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "Zzz" {
		t.Errorf("ZeroResultQueries = %v, want [Zzz]", stats.ZeroResultQueries)
	}
	if stats.TopQueries[0].Query != "Zzz" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %v, want Zzz first with count 2", stats.TopQueries)
	}
}

func TestStatsCacheCounters(t *testing.T) {
	agg := NewAggregator()
	feed(t, agg, SearchEvent{Type: EventCacheHit, Kind: "prefix", Query: "Ali", TotalHits: 3, CacheHit: true})
	feed(t, agg, SearchEvent{Type: EventCacheMiss, Kind: "prefix", Query: "Ali", TotalHits: 3})

	stats := agg.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", stats.CacheHits, stats.CacheMisses)
	}
}
