package texttrie

import (
	"testing"

	"github.com/recorddex/recorddex/internal/model"
)

func sampleRoster() []*model.Record {
	return []*model.Record{
		model.NewRecord("S001", "Alice Johnson", 3.85),
		model.NewRecord("S002", "Bob Smith", 3.92),
		model.NewRecord("S003", "Alice Williams", 3.67),
		model.NewRecord("S006", "Alice Davis", 3.91),
	}
}

func keys(recs []*model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice Johnson", "alicejohnson"},
		{"ALICE", "alice"},
		{"  Bob  Smith  ", "bobsmith"},
		{"Alice 2. O'Brien!", "aliceobrien"},
		{"12345", ""},
		{"", ""},
		{"a-b_c d3e", "abcde"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchByPrefixInsertionOrder(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}

	for _, prefix := range []string{"Alice", "Ali", "alice", "ALICE"} {
		got := keys(tr.SearchByPrefix(prefix))
		want := []string{"S001", "S003", "S006"}
		if len(got) != len(want) {
			t.Fatalf("prefix %q: expected %d results, got %v", prefix, len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("prefix %q: result %d = %s, want %s", prefix, i, got[i], want[i])
			}
		}
	}
}

func TestSearchByPrefixSingleLetter(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}

	got := keys(tr.SearchByPrefix("A"))
	want := []string{"S001", "S003", "S006"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := tr.SearchByPrefix("B"); len(got) != 1 || got[0].Key != "S002" {
		t.Errorf("prefix B: expected [S002], got %v", keys(got))
	}
}

func TestSearchByPrefixNoMatch(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}

	before := tr.NodeCount()
	if got := tr.SearchByPrefix("Zelda"); len(got) != 0 {
		t.Errorf("expected no results, got %v", keys(got))
	}
	if tr.NodeCount() != before {
		t.Errorf("search created trie nodes: %d -> %d", before, tr.NodeCount())
	}
}

func TestBlankPrefixShortCircuits(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}

	for _, prefix := range []string{"", "   ", "\t\n"} {
		if got := tr.SearchByPrefix(prefix); len(got) != 0 {
			t.Errorf("blank prefix %q: expected empty result, got %v", prefix, keys(got))
		}
	}
}

func TestNonBlankPrefixNormalizingToEmpty(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}

	// All-digit input is not blank, so it takes the walk path: zero edges
	// consumed, root reached, root holds no records.
	before := tr.NodeCount()
	if got := tr.SearchByPrefix("12345"); len(got) != 0 {
		t.Errorf("expected empty result for all-digit prefix, got %v", keys(got))
	}
	if tr.NodeCount() != before {
		t.Errorf("search created trie nodes: %d -> %d", before, tr.NodeCount())
	}
}

func TestNormalizedCollisionsShareAPath(t *testing.T) {
	tr := New()
	a := model.NewRecord("K1", "Mary-Ann", 1.0)
	b := model.NewRecord("K2", "maryann", 2.0)
	tr.Insert(a)
	tr.Insert(b)

	got := keys(tr.SearchByPrefix("MaryAnn"))
	if len(got) != 2 || got[0] != "K1" || got[1] != "K2" {
		t.Errorf("expected [K1 K2], got %v", got)
	}
	if got := keys(tr.SearchByPrefix("o'brien")); len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestSearchByExactName(t *testing.T) {
	tr := New()
	for _, rec := range sampleRoster() {
		tr.Insert(rec)
	}
	tr.Insert(model.NewRecord("S010", "Alice", 3.10))

	got := keys(tr.SearchByExactName("alice"))
	if len(got) != 1 || got[0] != "S010" {
		t.Fatalf("expected [S010], got %v", got)
	}

	got = keys(tr.SearchByExactName("Alice Johnson"))
	if len(got) != 1 || got[0] != "S001" {
		t.Errorf("expected [S001], got %v", got)
	}

	if got := tr.SearchByExactName(""); len(got) != 0 {
		t.Errorf("expected empty result for blank name, got %v", keys(got))
	}
}

func TestEmptyLabelInsertsNothing(t *testing.T) {
	tr := New()
	tr.Insert(model.NewRecord("K1", "123 !!", 0))
	tr.Insert(model.NewRecord("K2", "", 0))

	if !tr.IsEmpty() {
		t.Error("expected trie to be empty after label-less inserts")
	}
	if tr.NodeCount() != 0 {
		t.Errorf("expected no nodes, got %d", tr.NodeCount())
	}
}

func TestIsEmpty(t *testing.T) {
	tr := New()
	if !tr.IsEmpty() {
		t.Error("new trie should be empty")
	}
	tr.Insert(model.NewRecord("K1", "Ada", 0))
	if tr.IsEmpty() {
		t.Error("trie with one record should not be empty")
	}
}

func TestAppendOnlyHistoryOnDuplicateKey(t *testing.T) {
	// The trie keeps records under every label ever inserted, even when the
	// key index has since overwritten the key. Both labels stay searchable.
	tr := New()
	tr.Insert(model.NewRecord("S001", "Alice Johnson", 3.85))
	tr.Insert(model.NewRecord("S001", "Alicia Johnson", 3.90))

	if got := keys(tr.SearchByPrefix("Alice")); len(got) != 1 || got[0] != "S001" {
		t.Errorf("old label path lost: %v", got)
	}
	if got := keys(tr.SearchByPrefix("Alicia")); len(got) != 1 || got[0] != "S001" {
		t.Errorf("new label path missing: %v", got)
	}
}

func TestResultSliceIsACopy(t *testing.T) {
	tr := New()
	tr.Insert(model.NewRecord("S001", "Ada", 0))

	got := tr.SearchByPrefix("ad")
	got[0] = nil

	again := tr.SearchByPrefix("ad")
	if len(again) != 1 || again[0] == nil {
		t.Error("mutating a result slice must not affect the trie")
	}
}
