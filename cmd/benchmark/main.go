package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/leopoldodonnell/edgar-mcp/internal/edgar"
	"golang.org/x/sync/errgroup"
)

func newClient() *edgar.Client {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return edgar.NewClient(edgar.LoadConfig(), edgar.WithLogger(logger))
}

// measureIndexCachePerformance shows the effect of the ticker index cache
func measureIndexCachePerformance() {
	client := newClient()
	defer client.Close()
	ctx := context.Background()

	fmt.Println("=== Ticker Index Cache Test ===")
	fmt.Println()

	fmt.Println("1. SearchCompanies Cache Test:")

	start := time.Now()
	matches, err := client.SearchCompanies(ctx, "apple")
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	firstCall := time.Since(start)
	fmt.Printf("   First call (fetches index):   %v (%d matches)\n", firstCall, len(matches))

	start = time.Now()
	_, _ = client.SearchCompanies(ctx, "microsoft")
	secondCall := time.Since(start)
	fmt.Printf("   Second call (cached index):   %v\n", secondCall)
	fmt.Printf("   Speedup: %.0fx faster\n", float64(firstCall)/float64(secondCall))
	fmt.Println()
}

// measureRequestPacing shows the single-flight limiter spacing sequential calls
func measureRequestPacing() {
	client := newClient()
	defer client.Close()
	ctx := context.Background()

	fmt.Println("=== Request Pacing Test ===")
	fmt.Println()

	fmt.Println("2. Sequential submissions lookups (one request in flight, 100ms cool-down):")

	ciks := []string{"320193", "789019", "1045810"}
	start := time.Now()
	for _, cik := range ciks {
		if _, err := client.GetCompanyInfo(ctx, cik); err != nil {
			fmt.Printf("   Error for CIK %s: %v\n", cik, err)
			return
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("   %d lookups took %v (avg %v per call)\n", len(ciks), elapsed, elapsed/time.Duration(len(ciks)))
	fmt.Println()
}

// measureConcurrentSharing shows concurrent searches collapsing into one
// upstream index fetch
func measureConcurrentSharing() {
	client := newClient()
	defer client.Close()

	fmt.Println("=== Concurrent Search Test ===")
	fmt.Println()

	fmt.Println("3. Four concurrent searches on a cold index (deduplicated to one fetch):")

	queries := []string{"apple", "micro", "nvidia", "tesla"}
	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	for _, q := range queries {
		g.Go(func() error {
			_, err := client.SearchCompanies(ctx, q)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	elapsed := time.Since(start)
	fmt.Printf("   %d concurrent searches took %v total\n", len(queries), elapsed)
	fmt.Printf("   Circuit breaker state: %s\n", client.CircuitBreakerStats().State)
	fmt.Println()
}

// measureStatementLatency times one end-to-end financial statement lookup
func measureStatementLatency() {
	client := newClient()
	defer client.Close()
	ctx := context.Background()

	fmt.Println("=== Financial Statement Test ===")
	fmt.Println()

	fmt.Println("4. GetFinancialStatement (name lookup + concept stream):")

	start := time.Now()
	res := client.GetFinancialStatement(ctx, "320193", "NetIncomeLoss", "FY", 2023)
	elapsed := time.Since(start)
	fmt.Printf("   Lookup took %v\n", elapsed)
	fmt.Printf("   Company: %s\n", res.Name)
	if res.ConceptFound() {
		fmt.Printf("   NetIncomeLoss FY2023: %v %v\n", res.Data["NetIncomeLoss"], res.Data["unit"])
	} else {
		fmt.Printf("   Concept not found: %v\n", res.Data["error"])
	}
	fmt.Println()
}

func main() {
	fmt.Println("EDGAR MCP Server - Performance Measurements")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Note: this hits live SEC endpoints; set EDGAR_API_USER_AGENT first.")
	fmt.Println()

	measureIndexCachePerformance()
	measureRequestPacing()
	measureConcurrentSharing()
	measureStatementLatency()

	fmt.Println("=== Summary ===")
	fmt.Println()
	fmt.Println("Key behaviors:")
	fmt.Println("• Index cache: ticker searches after the first are served from memory")
	fmt.Println("• Pacing: one request in flight with a 100ms cool-down keeps SEC fair-access limits")
	fmt.Println("• Deduplication: concurrent cold searches share a single index fetch")
	fmt.Println("• Streaming: concept payloads are read in chunks under a fixed time budget")
}
