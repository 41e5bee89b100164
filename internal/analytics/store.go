package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/recorddex/recorddex/pkg/postgres"
	"github.com/recorddex/recorddex/pkg/resilience"
)

// SnapshotStore persists aggregated analytics snapshots in PostgreSQL.
//
// It requires an `analytics_snapshots` table:
//
//	CREATE TABLE analytics_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type SnapshotStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewSnapshotStore creates a snapshot store over the given client.
func NewSnapshotStore(db *postgres.Client) *SnapshotStore {
	return &SnapshotStore{
		db:     db,
		logger: slog.Default().With("component", "analytics-store"),
	}
}

// SaveSnapshot persists one stats snapshot, retrying transient failures.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, stats AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}

	err = resilience.Retry(ctx, "analytics-snapshot-insert", resilience.RetryConfig{}, func() error {
		_, execErr := s.db.DB.ExecContext(ctx,
			`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
			data, time.Now().UTC(),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}

	s.logger.Info("analytics snapshot saved",
		"total_searches", stats.TotalSearches,
		"total_records_added", stats.TotalRecordsAdded,
	)
	return nil
}

// LatestSnapshot loads the most recent snapshot, or nil if none exist.
func (s *SnapshotStore) LatestSnapshot(ctx context.Context) (*AggregatedStats, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}

	var stats AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// ListSnapshots returns the last N snapshots, newest first. Corrupt rows are
// skipped.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, limit int) ([]AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []AggregatedStats
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}
	return snapshots, rows.Err()
}

// StartPeriodicSave snapshots the aggregator's stats on an interval until
// ctx is cancelled, writing one final snapshot on shutdown.
func (s *SnapshotStore) StartPeriodicSave(ctx context.Context, agg *Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.SaveSnapshot(shutdownCtx, agg.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
