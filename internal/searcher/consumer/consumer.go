// Package consumer applies ingested record events to the in-memory store.
package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/recorddex/recorddex/internal/analytics"
	"github.com/recorddex/recorddex/internal/ingestion"
	"github.com/recorddex/recorddex/internal/model"
	"github.com/recorddex/recorddex/internal/searcher/cache"
	"github.com/recorddex/recorddex/internal/store"
	"github.com/recorddex/recorddex/pkg/kafka"
	"github.com/recorddex/recorddex/pkg/metrics"
)

// RecordApplier applies records to the store's dual indexes. It handles
// messages from the record-ingest topic, invalidates the query cache, and
// keeps the store gauges current. cache, collector, and metrics may be nil.
type RecordApplier struct {
	store     *store.Store
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewRecordApplier(st *store.Store, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics) *RecordApplier {
	return &RecordApplier{
		store:     st,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "record-applier"),
	}
}

// Handle is the kafka.MessageHandler for the record-ingest topic.
func (a *RecordApplier) Handle(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[ingestion.RecordEvent](value)
	if err != nil {
		// Malformed messages are logged and committed so they are not
		// redelivered forever.
		a.logger.Error("dropping undecodable record event", "key", string(key), "error", err)
		return nil
	}
	a.Apply(ctx, event)
	return nil
}

// Apply inserts the record into the store and refreshes derived state.
func (a *RecordApplier) Apply(ctx context.Context, event ingestion.RecordEvent) {
	_, overwrite := a.store.SearchByID(event.Key)
	a.store.AddRecord(model.NewRecord(event.Key, event.Label, event.Score))

	a.logger.Info("record applied",
		"key", event.Key,
		"label", event.Label,
		"overwrite", overwrite,
	)

	if a.metrics != nil {
		a.metrics.RecordsIndexedTotal.Inc()
		snap := a.store.Snapshot()
		a.metrics.StoreRecords.Set(float64(snap.Records))
		a.metrics.KeyIndexCapacity.Set(float64(snap.IndexCapacity))
		a.metrics.KeyIndexResizesTotal.Set(float64(snap.IndexResizes))
		a.metrics.TrieNodes.Set(float64(snap.TrieNodes))
	}
	if a.cache != nil {
		if err := a.cache.Invalidate(ctx); err != nil {
			a.logger.Warn("cache invalidation after ingest failed", "error", err)
		}
	}
	if a.collector != nil {
		a.collector.Track(analytics.RecordEvent{
			Type:      analytics.EventRecordAdd,
			Key:       event.Key,
			LabelLen:  len(event.Label),
			Overwrite: overwrite,
			Timestamp: time.Now().UTC(),
		})
	}
}
