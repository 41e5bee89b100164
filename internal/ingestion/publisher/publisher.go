// Package publisher records accepted ingests in the audit log and publishes
// them to the record-ingest topic.
package publisher

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/recorddex/recorddex/internal/ingestion"
	apperrors "github.com/recorddex/recorddex/pkg/errors"
	"github.com/recorddex/recorddex/pkg/kafka"
	"github.com/recorddex/recorddex/pkg/postgres"
	"github.com/recorddex/recorddex/pkg/resilience"
)

const publishTimeout = 5 * time.Second

// Publisher pushes validated records into the pipeline. The audit log is
// optional; when db is nil only the Kafka publish happens.
//
// Audit schema:
//
//	CREATE TABLE ingest_log (
//	    id              BIGSERIAL PRIMARY KEY,
//	    idempotency_key TEXT UNIQUE,
//	    record_key      TEXT NOT NULL,
//	    payload_hash    TEXT NOT NULL,
//	    ingested_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Publisher struct {
	producer *kafka.Producer
	db       *postgres.Client
	logger   *slog.Logger
}

func New(producer *kafka.Producer, db *postgres.Client) *Publisher {
	return &Publisher{
		producer: producer,
		db:       db,
		logger:   slog.Default().With("component", "ingest-publisher"),
	}
}

// Publish audits the request and emits a RecordEvent keyed by the record key,
// so records with the same key land on the same partition in order.
//
// idempotencyKey may be empty. When set and seen before with the same
// payload, the request is acknowledged without republishing. A reused key
// with a different payload returns ErrIdempotencyConflict.
func (p *Publisher) Publish(ctx context.Context, req ingestion.IngestRequest, idempotencyKey string) error {
	payloadHash := hashRequest(req)

	if p.db != nil && idempotencyKey != "" {
		duplicate, err := p.audit(ctx, idempotencyKey, req.Key, payloadHash)
		if err != nil {
			return err
		}
		if duplicate {
			p.logger.Info("duplicate ingest acknowledged",
				"key", req.Key,
				"idempotency_key", idempotencyKey,
			)
			return nil
		}
	} else if p.db != nil {
		if err := p.insertAudit(ctx, sql.NullString{}, req.Key, payloadHash); err != nil {
			// Audit failures do not block ingest.
			p.logger.Warn("audit insert failed", "key", req.Key, "error", err)
		}
	}

	event := ingestion.RecordEvent{
		Key:        req.Key,
		Label:      req.Label,
		Score:      req.Score,
		IngestedAt: time.Now().UTC(),
	}
	err := resilience.WithTimeout(ctx, publishTimeout, "record-publish", func(ctx context.Context) error {
		return p.producer.Publish(ctx, kafka.Event{Key: req.Key, Value: event})
	})
	if err != nil {
		return fmt.Errorf("publishing record %q: %w", req.Key, err)
	}
	p.logger.Info("record published", "key", req.Key, "label", req.Label)
	return nil
}

// audit inserts the idempotency row, reporting whether an identical publish
// was already recorded.
func (p *Publisher) audit(ctx context.Context, idempotencyKey, recordKey, payloadHash string) (duplicate bool, err error) {
	key := sql.NullString{String: idempotencyKey, Valid: true}
	insertErr := p.insertAudit(ctx, key, recordKey, payloadHash)
	if insertErr == nil {
		return false, nil
	}

	// Unique violation means the key was used before. Compare payloads to
	// tell a retry from a conflict.
	var existingHash string
	row := p.db.DB.QueryRowContext(ctx,
		`SELECT payload_hash FROM ingest_log WHERE idempotency_key = $1`, idempotencyKey)
	if scanErr := row.Scan(&existingHash); scanErr != nil {
		return false, fmt.Errorf("auditing ingest for %q: %w", recordKey, insertErr)
	}
	if existingHash != payloadHash {
		return false, apperrors.Newf(apperrors.ErrIdempotencyConflict, 409,
			"idempotency key %q was already used with a different payload", idempotencyKey)
	}
	return true, nil
}

func (p *Publisher) insertAudit(ctx context.Context, idempotencyKey sql.NullString, recordKey, payloadHash string) error {
	_, err := p.db.DB.ExecContext(ctx,
		`INSERT INTO ingest_log (idempotency_key, record_key, payload_hash) VALUES ($1, $2, $3)`,
		idempotencyKey, recordKey, payloadHash)
	return err
}

func hashRequest(req ingestion.IngestRequest) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%g", req.Key, req.Label, req.Score))
	return hex.EncodeToString(sum[:])
}
