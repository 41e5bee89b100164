package keyindex

import (
	"fmt"
	"testing"

	"github.com/recorddex/recorddex/internal/model"
)

func TestInsertAndSearch(t *testing.T) {
	ix := New()
	ix.Insert(model.NewRecord("S001", "Alice Johnson", 3.85))
	ix.Insert(model.NewRecord("S002", "Bob Smith", 3.92))

	rec, ok := ix.Search("S001")
	if !ok {
		t.Fatal("expected S001 to be found")
	}
	if rec.Label != "Alice Johnson" || rec.Score != 3.85 {
		t.Errorf("unexpected record: %+v", rec)
	}

	if _, ok := ix.Search("S999"); ok {
		t.Error("expected S999 to be absent")
	}
}

func TestInsertOverwritesExistingKey(t *testing.T) {
	ix := New()
	ix.Insert(model.NewRecord("S001", "Alice Johnson", 3.85))
	ix.Insert(model.NewRecord("S001", "Alice Johnson-Reed", 3.90))

	if ix.Size() != 1 {
		t.Fatalf("expected size 1 after overwrite, got %d", ix.Size())
	}
	rec, ok := ix.Search("S001")
	if !ok {
		t.Fatal("expected S001 to be found")
	}
	if rec.Label != "Alice Johnson-Reed" {
		t.Errorf("expected most recent record, got label %q", rec.Label)
	}
}

func TestEmptyStringKeyIsValid(t *testing.T) {
	ix := New()
	ix.Insert(model.NewRecord("", "No Key", 1.0))

	rec, ok := ix.Search("")
	if !ok {
		t.Fatal("expected empty key to be found")
	}
	if rec.Label != "No Key" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if ix.Size() != 1 {
		t.Errorf("expected size 1, got %d", ix.Size())
	}
}

func TestResizePreservesAllEntries(t *testing.T) {
	ix := New()
	const n = 500 // forces multiple doublings past the 0.75 threshold

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("K%04d", i)
		ix.Insert(model.NewRecord(key, fmt.Sprintf("Label %d", i), float64(i)))
	}

	if ix.Size() != n {
		t.Fatalf("expected size %d, got %d", n, ix.Size())
	}
	if ix.Capacity() <= 100 {
		t.Errorf("expected capacity to have grown beyond 100, got %d", ix.Capacity())
	}
	if ix.Resizes() == 0 {
		t.Error("expected at least one resize")
	}

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("K%04d", i)
		rec, ok := ix.Search(key)
		if !ok {
			t.Fatalf("key %s lost across resize", key)
		}
		if rec.Score != float64(i) {
			t.Errorf("key %s: expected score %d, got %f", key, i, rec.Score)
		}
	}
}

func TestLoadFactorMaintained(t *testing.T) {
	ix := New()
	for i := 0; i < 200; i++ {
		ix.Insert(model.NewRecord(fmt.Sprintf("K%03d", i), "x", 0))
		ratio := float64(ix.Size()) / float64(ix.Capacity())
		// The resize check runs before each insert, so occupancy can exceed
		// the threshold by at most one insert's worth.
		if ratio > loadFactorThreshold+1.0/float64(ix.Capacity()) {
			t.Fatalf("occupancy %f exceeds threshold after %d inserts (capacity %d)",
				ratio, i+1, ix.Capacity())
		}
	}
}

func TestAllReturnsEveryRecord(t *testing.T) {
	ix := New()
	want := map[string]bool{}
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("K%02d", i)
		want[key] = false
		ix.Insert(model.NewRecord(key, "x", 0))
	}

	all := ix.All()
	if len(all) != 50 {
		t.Fatalf("expected 50 records, got %d", len(all))
	}
	for _, rec := range all {
		seen, known := want[rec.Key]
		if !known {
			t.Errorf("unexpected key %q", rec.Key)
		}
		if seen {
			t.Errorf("duplicate key %q", rec.Key)
		}
		want[rec.Key] = true
	}
}

func TestCollidingKeysChainCorrectly(t *testing.T) {
	// With a tiny capacity every key lands in a handful of buckets, so the
	// chains are exercised hard.
	ix := NewWithCapacity(2)
	keys := []string{"a", "b", "c", "d", "e", "f"}
	for i, k := range keys {
		ix.Insert(model.NewRecord(k, k, float64(i)))
	}
	for _, k := range keys {
		rec, ok := ix.Search(k)
		if !ok {
			t.Fatalf("key %q not found", k)
		}
		if rec.Label != k {
			t.Errorf("key %q: got label %q", k, rec.Label)
		}
	}
}
