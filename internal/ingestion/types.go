// Package ingestion accepts records over HTTP, validates them, and publishes
// them to Kafka for the searcher to index.
package ingestion

import "time"

// IngestRequest is the body of POST /api/v1/records.
type IngestRequest struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IngestResponse acknowledges an accepted record.
type IngestResponse struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// RecordEvent is the message published to the record-ingest topic.
type RecordEvent struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
	IngestedAt time.Time `json:"ingested_at"`
}
