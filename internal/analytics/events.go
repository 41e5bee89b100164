package analytics

import "time"

// EventType labels an analytics event.
type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventRecordAdd  EventType = "record_add"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent captures one query against the store.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Kind      string    `json:"kind"` // id, prefix, exact
	Query     string    `json:"query"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// RecordEvent captures one record applied to the store.
type RecordEvent struct {
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
	LabelLen  int       `json:"label_len"`
	Overwrite bool      `json:"overwrite"`
	Timestamp time.Time `json:"timestamp"`
}
