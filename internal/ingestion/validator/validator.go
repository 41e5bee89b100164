// Package validator checks ingest requests against configured bounds before
// they reach the publish path.
package validator

import (
	"fmt"
	"strings"

	"github.com/recorddex/recorddex/internal/ingestion"
	"github.com/recorddex/recorddex/pkg/config"
)

// ValidationError carries one message per failing field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator applies the configured ingestion bounds.
type Validator struct {
	cfg config.IngestionConfig
}

func New(cfg config.IngestionConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate returns a *ValidationError listing every violated bound, or nil.
// The key is required at this boundary; an empty label is allowed, such a
// record is reachable by key only.
func (v *Validator) Validate(req ingestion.IngestRequest) error {
	fields := make(map[string]string)

	if req.Key == "" {
		fields["key"] = "is required"
	} else if len(req.Key) > v.cfg.MaxKeyLength {
		fields["key"] = fmt.Sprintf("must be at most %d characters", v.cfg.MaxKeyLength)
	} else if strings.TrimSpace(req.Key) != req.Key {
		fields["key"] = "must not have leading or trailing whitespace"
	}
	if len(req.Label) > v.cfg.MaxLabelLength {
		fields["label"] = fmt.Sprintf("must be at most %d characters", v.cfg.MaxLabelLength)
	}
	if req.Score < 0 {
		fields["score"] = "must not be negative"
	} else if req.Score > v.cfg.MaxScore {
		fields["score"] = fmt.Sprintf("must be at most %g", v.cfg.MaxScore)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
