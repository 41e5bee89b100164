// Package middleware provides reusable HTTP middleware: request IDs,
// Prometheus instrumentation, request timeouts, and per-client rate
// limiting.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/recorddex/recorddex/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID (honouring an incoming X-Request-ID
// header), stores it in the context, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
