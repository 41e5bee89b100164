// Package handler exposes the ingest API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recorddex/recorddex/internal/ingestion"
	"github.com/recorddex/recorddex/internal/ingestion/validator"
	apperrors "github.com/recorddex/recorddex/pkg/errors"
	"github.com/recorddex/recorddex/pkg/logger"
)

const maxBodyBytes = 1 << 20

// RecordPublisher pushes an accepted record into the pipeline.
type RecordPublisher interface {
	Publish(ctx context.Context, req ingestion.IngestRequest, idempotencyKey string) error
}

// Handler accepts records over HTTP and hands them to the publisher.
type Handler struct {
	validator *validator.Validator
	publisher RecordPublisher
	logger    *slog.Logger
}

func New(v *validator.Validator, p RecordPublisher) *Handler {
	return &Handler{
		validator: v,
		publisher: p,
		logger:    slog.Default().With("component", "ingest-handler"),
	}
}

// Ingest serves POST /api/v1/records. Accepted records return 202; the
// searcher applies them asynchronously.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.IngestRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	if err := h.validator.Validate(req); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			log.Info("ingest rejected", "key", req.Key, "fields", verr.Fields)
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if err := h.publisher.Publish(ctx, req, idempotencyKey); err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status == http.StatusConflict {
			log.Warn("idempotency conflict", "key", req.Key, "idempotency_key", idempotencyKey)
			h.writeError(w, status, err.Error())
			return
		}
		log.Error("publish failed", "key", req.Key, "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "record could not be accepted, retry later")
		return
	}

	h.writeJSON(w, http.StatusAccepted, ingestion.IngestResponse{
		Key:    req.Key,
		Status: "accepted",
	})
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
