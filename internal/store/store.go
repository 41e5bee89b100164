// Package store composes the key index and the text trie behind a single
// facade. Inserts fan out to both indexes; queries are routed to the index
// built for them. The indexes themselves are single-threaded, so the facade
// carries the one lock that makes the pair safe for the concurrent HTTP and
// Kafka callers above it.
package store

import (
	"sync"

	"github.com/recorddex/recorddex/internal/model"
	"github.com/recorddex/recorddex/internal/store/keyindex"
	"github.com/recorddex/recorddex/internal/store/texttrie"
)

// Store is the dual-index record store.
//
// The trie side is append-only: overwriting a key replaces the record in the
// key index, but every label ever inserted stays reachable by prefix search.
// The trie is a label-path to record history multi-map, not a consistent
// secondary index, and callers should treat it as such.
type Store struct {
	mu   sync.RWMutex
	keys *keyindex.Index
	trie *texttrie.Trie
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		keys: keyindex.New(),
		trie: texttrie.New(),
	}
}

// AddRecord inserts the record into both indexes. It always succeeds: by the
// time it returns, the record is visible to key lookups and prefix searches
// alike.
func (s *Store) AddRecord(record *model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.Insert(record)
	s.trie.Insert(record)
}

// SearchByID returns the record stored under key, if any.
func (s *Store) SearchByID(key string) (*model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys.Search(key)
}

// SearchByName returns the records whose labels start with prefix, in
// insertion order. Blank prefixes yield an empty result.
func (s *Store) SearchByName(prefix string) []*model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.SearchByPrefix(prefix)
}

// SearchByExactName returns the records whose normalized labels equal the
// normalized name exactly.
func (s *Store) SearchByExactName(name string) []*model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.SearchByExactName(name)
}

// AllRecords returns every stored record in unspecified order.
func (s *Store) AllRecords() []*model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys.All()
}

// Size returns the number of distinct keys in the store.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys.Size()
}

// Stats is a point-in-time snapshot of store internals, used by the stats
// endpoint and Prometheus gauges.
type Stats struct {
	Records       int  `json:"records"`
	IndexCapacity int  `json:"index_capacity"`
	IndexResizes  int  `json:"index_resizes"`
	TrieNodes     int  `json:"trie_nodes"`
	TrieEmpty     bool `json:"trie_empty"`
}

// Snapshot returns current store statistics.
func (s *Store) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Records:       s.keys.Size(),
		IndexCapacity: s.keys.Capacity(),
		IndexResizes:  s.keys.Resizes(),
		TrieNodes:     s.trie.NodeCount(),
		TrieEmpty:     s.trie.IsEmpty(),
	}
}
