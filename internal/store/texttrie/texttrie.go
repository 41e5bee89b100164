// Package texttrie implements a 26-way prefix tree over normalized record
// labels. Each node pre-aggregates every record whose normalized label passes
// through it, so a prefix query costs O(prefix length) with no subtree
// traversal afterwards.
//
// Nodes live in a flat growable arena and reference their children by index,
// which keeps the strictly tree-shaped structure free of per-node pointer
// allocation. Nodes are created lazily and never removed.
//
// The trie is not safe for concurrent use; callers serialize access
// externally (the store facade holds the lock).
package texttrie

import (
	"strings"

	"github.com/recorddex/recorddex/internal/model"
)

const alphabetSize = 26

// node is one trie node. children holds arena indices, zero meaning absent;
// index zero is the root and is never anyone's child.
type node struct {
	children [alphabetSize]int32
	records  []*model.Record
	terminal bool
}

// Trie indexes records by the letters-only lowercase form of their labels.
type Trie struct {
	nodes []node
	total int
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{nodes: make([]node, 1)}
}

// Normalize lowercases s and strips every character outside [a-z]. Spaces,
// digits, punctuation, and non-ASCII runes all vanish; this is the exact
// form stored along trie paths and compared by exact-name search.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Insert walks the normalized label from the root, creating missing nodes,
// and appends record to the list of every node along the path. The final
// node is marked terminal. A label that normalizes to the empty string
// inserts nothing and marks nothing.
func (t *Trie) Insert(record *model.Record) {
	name := Normalize(record.Label)
	if name == "" {
		return
	}

	cur := int32(0)
	for i := 0; i < len(name); i++ {
		ci := name[i] - 'a'
		child := t.nodes[cur].children[ci]
		if child == 0 {
			t.nodes = append(t.nodes, node{})
			child = int32(len(t.nodes) - 1)
			t.nodes[cur].children[ci] = child
		}
		t.nodes[child].records = append(t.nodes[child].records, record)
		cur = child
	}
	t.nodes[cur].terminal = true
	t.total++
}

// SearchByPrefix returns every record whose normalized label starts with the
// normalized prefix, in insertion order. A raw prefix that is empty or all
// whitespace short-circuits to an empty result before normalization; a
// prefix whose normalized form walks off the tree also yields an empty
// result. Matching is case-insensitive by construction.
func (t *Trie) SearchByPrefix(prefix string) []*model.Record {
	if strings.TrimSpace(prefix) == "" {
		return nil
	}

	name := Normalize(prefix)
	cur := int32(0)
	for i := 0; i < len(name); i++ {
		cur = t.nodes[cur].children[name[i]-'a']
		if cur == 0 {
			return nil
		}
	}

	recs := t.nodes[cur].records
	if len(recs) == 0 {
		return nil
	}
	out := make([]*model.Record, len(recs))
	copy(out, recs)
	return out
}

// SearchByExactName returns the records whose normalized label equals the
// normalized name exactly: a linear filter over the prefix result set.
func (t *Trie) SearchByExactName(name string) []*model.Record {
	matches := t.SearchByPrefix(name)
	if len(matches) == 0 {
		return nil
	}

	want := Normalize(name)
	out := make([]*model.Record, 0, len(matches))
	for _, rec := range matches {
		if Normalize(rec.Label) == want {
			out = append(out, rec)
		}
	}
	return out
}

// IsEmpty reports whether no record has been inserted under a non-empty
// normalized label.
func (t *Trie) IsEmpty() bool {
	return t.total == 0
}

// NodeCount returns the number of nodes created so far, root excluded.
func (t *Trie) NodeCount() int {
	return len(t.nodes) - 1
}
