// Package searcher defines the query-side result types shared by the HTTP
// handler and the query cache.
package searcher

import "github.com/recorddex/recorddex/internal/model"

// Query kinds, used for cache keys and analytics.
const (
	KindPrefix = "prefix"
	KindExact  = "exact"
)

// Result is the payload returned by a name search and stored in the query
// cache.
type Result struct {
	Query     string          `json:"query"`
	Kind      string          `json:"kind"`
	TotalHits int             `json:"total_hits"`
	Records   []*model.Record `json:"records"`
}
