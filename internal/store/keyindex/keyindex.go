// Package keyindex implements a resizable hash table mapping record keys to
// records. Collisions are resolved by separate chaining; the table doubles
// its capacity and rehashes every entry once the occupancy ratio exceeds the
// load factor threshold.
//
// The index is not safe for concurrent use; callers serialize access
// externally (the store facade holds the lock).
package keyindex

import "github.com/recorddex/recorddex/internal/model"

const (
	defaultCapacity     = 100
	loadFactorThreshold = 0.75
)

// entry is a single chain link holding one key/record pair.
type entry struct {
	key    string
	record *model.Record
	next   *entry
}

// Index is a separate-chaining hash table keyed by Record.Key.
type Index struct {
	buckets  []*entry
	size     int
	capacity int
	resizes  int
}

// New creates an empty Index with the default initial capacity.
func New() *Index {
	return NewWithCapacity(defaultCapacity)
}

// NewWithCapacity creates an empty Index with the given initial capacity.
// Capacities below 1 fall back to the default.
func NewWithCapacity(capacity int) *Index {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &Index{
		buckets:  make([]*entry, capacity),
		capacity: capacity,
	}
}

// hash computes a polynomial rolling hash of the key, folded into a
// non-negative bucket index for the given capacity.
func hash(key string, capacity int) int {
	const prime = 31
	h := 0
	for i := 0; i < len(key); i++ {
		h = (h*prime + int(key[i])) % capacity
	}
	if h < 0 {
		h = -h
	}
	return h
}

// Insert adds a record keyed by record.Key. Inserting an existing key
// replaces that key's record in place without growing the chain. The table
// resizes before the insert if the occupancy ratio exceeds the load factor
// threshold.
func (ix *Index) Insert(record *model.Record) {
	if float64(ix.size)/float64(ix.capacity) > loadFactorThreshold {
		ix.resize()
	}

	idx := hash(record.Key, ix.capacity)
	for e := ix.buckets[idx]; e != nil; e = e.next {
		if e.key == record.Key {
			e.record = record
			return
		}
	}

	ix.buckets[idx] = &entry{key: record.Key, record: record, next: ix.buckets[idx]}
	ix.size++
}

// Search returns the record stored under key. Absence is a normal outcome
// reported by the boolean, never an error.
func (ix *Index) Search(key string) (*model.Record, bool) {
	for e := ix.buckets[hash(key, ix.capacity)]; e != nil; e = e.next {
		if e.key == key {
			return e.record, true
		}
	}
	return nil, false
}

// resize doubles the capacity and rehashes every existing entry against the
// new bucket array. Runs in O(size).
func (ix *Index) resize() {
	oldBuckets := ix.buckets

	ix.capacity *= 2
	ix.buckets = make([]*entry, ix.capacity)
	ix.size = 0
	ix.resizes++

	for _, head := range oldBuckets {
		for e := head; e != nil; e = e.next {
			ix.Insert(e.record)
		}
	}
}

// All returns every stored record in bucket order then chain order. The
// order carries no guarantee.
func (ix *Index) All() []*model.Record {
	records := make([]*model.Record, 0, ix.size)
	for _, head := range ix.buckets {
		for e := head; e != nil; e = e.next {
			records = append(records, e.record)
		}
	}
	return records
}

// Size returns the number of distinct keys currently stored.
func (ix *Index) Size() int {
	return ix.size
}

// Capacity returns the current bucket array length.
func (ix *Index) Capacity() int {
	return ix.capacity
}

// Resizes returns how many times the table has grown, for metrics.
func (ix *Index) Resizes() int {
	return ix.resizes
}
