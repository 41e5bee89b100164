package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/recorddex/recorddex/internal/model"
)

func seeded() *Store {
	s := New()
	s.AddRecord(model.NewRecord("S001", "Alice Johnson", 3.85))
	s.AddRecord(model.NewRecord("S003", "Alice Williams", 3.67))
	s.AddRecord(model.NewRecord("S006", "Alice Davis", 3.91))
	s.AddRecord(model.NewRecord("S002", "Bob Smith", 3.92))
	return s
}

func TestAddRecordVisibleInBothIndexes(t *testing.T) {
	s := seeded()

	rec, ok := s.SearchByID("S002")
	if !ok || rec.Label != "Bob Smith" {
		t.Fatalf("expected Bob Smith for S002, got %v ok=%v", rec, ok)
	}

	got := s.SearchByName("Alice")
	want := []string{"S001", "S003", "S006"}
	if len(got) != len(want) {
		t.Fatalf("expected %d Alice records, got %d", len(want), len(got))
	}
	for i, k := range want {
		if got[i].Key != k {
			t.Errorf("result %d: got %s, want %s", i, got[i].Key, k)
		}
	}

	if got := s.SearchByName("Ali"); len(got) != 3 {
		t.Errorf("prefix Ali: expected 3 records, got %d", len(got))
	}
	if got := s.SearchByName("A"); len(got) != 3 {
		t.Errorf("prefix A: expected 3 records, got %d", len(got))
	}

	if _, ok := s.SearchByID("S999"); ok {
		t.Error("expected S999 to be absent")
	}
}

func TestDuplicateKeyOverwritesIDOnly(t *testing.T) {
	s := seeded()
	s.AddRecord(model.NewRecord("S002", "Robert Smith", 3.95))

	if s.Size() != 4 {
		t.Fatalf("expected size 4 after overwrite, got %d", s.Size())
	}
	rec, _ := s.SearchByID("S002")
	if rec.Label != "Robert Smith" {
		t.Errorf("expected latest record by ID, got %q", rec.Label)
	}

	// Append-only trie: the superseded label stays searchable.
	if got := s.SearchByName("Bob"); len(got) != 1 || got[0].Key != "S002" {
		t.Errorf("old label path lost: %v", got)
	}
	if got := s.SearchByName("Robert"); len(got) != 1 {
		t.Errorf("new label path missing: %v", got)
	}
}

func TestBlankPrefixSearch(t *testing.T) {
	s := seeded()
	if got := s.SearchByName(""); len(got) != 0 {
		t.Errorf("empty prefix: expected no results, got %d", len(got))
	}
	if got := s.SearchByName("   "); len(got) != 0 {
		t.Errorf("blank prefix: expected no results, got %d", len(got))
	}
}

func TestSearchByExactName(t *testing.T) {
	s := seeded()
	got := s.SearchByExactName("alicejohnson")
	if len(got) != 1 || got[0].Key != "S001" {
		t.Errorf("expected [S001], got %v", got)
	}
}

func TestAllRecordsAndSize(t *testing.T) {
	s := seeded()
	all := s.AllRecords()
	if len(all) != 4 || s.Size() != 4 {
		t.Fatalf("expected 4 records, got len=%d size=%d", len(all), s.Size())
	}
	seen := map[string]bool{}
	for _, rec := range all {
		seen[rec.Key] = true
	}
	for _, k := range []string{"S001", "S002", "S003", "S006"} {
		if !seen[k] {
			t.Errorf("missing key %s", k)
		}
	}
}

func TestSnapshot(t *testing.T) {
	s := seeded()
	st := s.Snapshot()
	if st.Records != 4 {
		t.Errorf("expected 4 records, got %d", st.Records)
	}
	if st.TrieEmpty {
		t.Error("trie should not be empty")
	}
	if st.TrieNodes == 0 {
		t.Error("expected trie nodes to have been created")
	}
	if st.IndexCapacity != 100 {
		t.Errorf("expected initial capacity 100, got %d", st.IndexCapacity)
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.AddRecord(model.NewRecord(fmt.Sprintf("K%04d", i), fmt.Sprintf("Label %d", i), float64(i)))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.SearchByName("label")
				s.SearchByID("K0001")
				s.Size()
			}
		}()
	}

	wg.Wait()
	if s.Size() != 1000 {
		t.Errorf("expected 1000 records, got %d", s.Size())
	}
}
