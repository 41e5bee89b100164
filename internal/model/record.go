// Package model defines the value types shared by the store's indexes and
// the services built on top of them.
package model

import "fmt"

// Record is the unit of data held by the store. A Record is immutable once
// constructed; "updating" a key means inserting a new Record with the same
// Key, never mutating an existing one.
type Record struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewRecord constructs a Record.
func NewRecord(key, label string, score float64) *Record {
	return &Record{Key: key, Label: label, Score: score}
}

// String formats the record in fixed-width columns for console output.
func (r *Record) String() string {
	return fmt.Sprintf("Key: %-10s | Label: %-30s | Score: %.2f", r.Key, r.Label, r.Score)
}
