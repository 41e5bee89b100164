// Command seed loads a demo roster through the ingestion API and then runs a
// scripted set of key and prefix queries against the search API, printing
// each result with its observed latency.
//
// Usage:
//
//	go run ./cmd/seed [-ingest http://localhost:8081] [-search http://localhost:8080]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

type record struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type searchResult struct {
	Query     string   `json:"query"`
	Kind      string   `json:"kind"`
	TotalHits int      `json:"total_hits"`
	Records   []record `json:"records"`
}

var roster = []record{
	{"S001", "Alice Johnson", 3.85},
	{"S002", "Bob Smith", 3.92},
	{"S003", "Alice Williams", 3.67},
	{"S004", "Charlie Brown", 3.45},
	{"S005", "David Miller", 3.78},
	{"S006", "Alice Davis", 3.91},
	{"S007", "Eve Wilson", 3.88},
	{"S008", "Frank Thomas", 3.52},
}

func main() {
	ingestURL := flag.String("ingest", "http://localhost:8081", "base URL of the ingestion service")
	searchURL := flag.String("search", "http://localhost:8080", "base URL of the search service")
	settle := flag.Duration("settle", 2*time.Second, "wait between seeding and querying")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	ctx := context.Background()

	fmt.Println("=== Seeding roster ===")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, rec := range roster {
		g.Go(func() error {
			return ingest(gctx, client, *ingestURL, rec)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("accepted %d records\n", len(roster))

	// Records travel through Kafka before they are searchable.
	time.Sleep(*settle)

	fmt.Println("\n=== Key lookups ===")
	for _, key := range []string{"S001", "S004", "S999"} {
		lookupByKey(ctx, client, *searchURL, key)
	}

	fmt.Println("\n=== Prefix searches ===")
	for _, prefix := range []string{"Alice", "Ali", "A", "bob", "Z"} {
		search(ctx, client, *searchURL, prefix, false)
	}

	fmt.Println("\n=== Exact name search ===")
	search(ctx, client, *searchURL, "Alice Davis", true)
}

func ingest(ctx context.Context, client *http.Client, baseURL string, rec record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/records", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "seed-"+rec.Key)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", rec.Key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("posting %s: unexpected status %d", rec.Key, resp.StatusCode)
	}
	return nil
}

func lookupByKey(ctx context.Context, client *http.Client, baseURL, key string) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/records/"+url.PathEscape(key), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup %s: %v\n", key, err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup %s: %v\n", key, err)
		return
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		fmt.Printf("%-6s -> not found (%v)\n", key, latency)
		return
	}
	var rec record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		fmt.Fprintf(os.Stderr, "lookup %s: decoding response: %v\n", key, err)
		return
	}
	fmt.Printf("%-6s -> Key: %-10s | Label: %-30s | Score: %.2f (%v)\n",
		key, rec.Key, rec.Label, rec.Score, latency)
}

func search(ctx context.Context, client *http.Client, baseURL, prefix string, exact bool) {
	params := url.Values{"prefix": {prefix}}
	if exact {
		params.Set("exact", "true")
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/search?"+params.Encode(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search %q: %v\n", prefix, err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search %q: %v\n", prefix, err)
		return
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "search %q: decoding response: %v\n", prefix, err)
		return
	}
	fmt.Printf("%-14q %d hit(s) in %v\n", prefix, result.TotalHits, latency)
	for _, rec := range result.Records {
		fmt.Printf("    Key: %-10s | Label: %-30s | Score: %.2f\n", rec.Key, rec.Label, rec.Score)
	}
}
