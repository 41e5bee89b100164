package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/recorddex/recorddex/internal/ingestion"
	"github.com/recorddex/recorddex/internal/ingestion/validator"
	"github.com/recorddex/recorddex/pkg/config"
	apperrors "github.com/recorddex/recorddex/pkg/errors"
)

type fakePublisher struct {
	published []ingestion.IngestRequest
	keys      []string
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, req ingestion.IngestRequest, idempotencyKey string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	f.keys = append(f.keys, idempotencyKey)
	return nil
}

func newHandler(pub *fakePublisher) *Handler {
	v := validator.New(config.IngestionConfig{
		MaxKeyLength:   64,
		MaxLabelLength: 1024,
		MaxScore:       1000,
	})
	return New(v, pub)
}

func post(h *Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)
	return rec
}

func TestIngestAccepted(t *testing.T) {
	pub := &fakePublisher{}
	rec := post(newHandler(pub), `{"key":"S001","label":"Alice Johnson","score":3.85}`, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	var resp ingestion.IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Key != "S001" || resp.Status != "accepted" {
		t.Errorf("got %+v, want S001/accepted", resp)
	}
	if len(pub.published) != 1 || pub.published[0].Label != "Alice Johnson" {
		t.Errorf("published = %+v, want one Alice Johnson", pub.published)
	}
}

func TestIngestForwardsIdempotencyKey(t *testing.T) {
	pub := &fakePublisher{}
	post(newHandler(pub), `{"key":"S001","label":"Alice","score":1}`,
		map[string]string{"Idempotency-Key": "req-42"})

	if len(pub.keys) != 1 || pub.keys[0] != "req-42" {
		t.Errorf("idempotency keys = %v, want [req-42]", pub.keys)
	}
}

func TestIngestMalformedJSON(t *testing.T) {
	pub := &fakePublisher{}
	rec := post(newHandler(pub), `{not json`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(pub.published) != 0 {
		t.Error("malformed request must not be published")
	}
}

func TestIngestValidationFailure(t *testing.T) {
	pub := &fakePublisher{}
	rec := post(newHandler(pub), `{"key":"S001","score":-1}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if _, ok := resp.Fields["score"]; !ok {
		t.Errorf("fields = %v, want score entry", resp.Fields)
	}
	if len(pub.published) != 0 {
		t.Error("invalid request must not be published")
	}
}

func TestIngestIdempotencyConflict(t *testing.T) {
	pub := &fakePublisher{err: apperrors.New(apperrors.ErrIdempotencyConflict, http.StatusConflict, "key reused")}
	rec := post(newHandler(pub), `{"key":"S001","label":"Alice","score":1}`, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestIngestPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: apperrors.ErrUnavailable}
	rec := post(newHandler(pub), `{"key":"S001","label":"Alice","score":1}`, nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
