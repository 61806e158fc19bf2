// Package main provides a performance benchmarking tool for the flow aggregation core.
// It replays synthetic status change event sets of increasing size through the
// aggregation logic at every granularity, running each case multiple times,
// treating the first run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Usage: go run benchmark/main.go
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/taigaflow/taigaflow/core/cfd"
	"github.com/taigaflow/taigaflow/schema"
)

// BenchmarkResult holds the result of a benchmark case (cold run and average of warm runs).
type BenchmarkResult struct {
	Items       int
	Events      int
	Granularity string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ItemCounts    []int
	Granularities []schema.Granularity
	WindowDays    int
	Seed          int64
	Runs          int
}

// workflow is the synthetic board the benchmark replays items through.
var workflow = []string{"New", "Ready", "In progress", "Testing", "Done"}

func main() {
	config := BenchmarkConfig{
		ItemCounts:    []int{1000, 10000, 100000},
		Granularities: []schema.Granularity{schema.DayGranularity, schema.WeekGranularity, schema.MonthGranularity},
		WindowDays:    365,
		Seed:          42,
		Runs:          5,
	}

	fmt.Printf("Starting benchmark: %v items, %d day window, %d runs per case\n",
		config.ItemCounts, config.WindowDays, config.Runs)

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark cases across configured sizes and granularities
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -config.WindowDays)
	end := time.Now().UTC().Truncate(24 * time.Hour)

	for _, items := range config.ItemCounts {
		events := syntheticEvents(items, start, end, config.Seed)
		fmt.Printf("Benchmarking %d items (%d events)\n", items, len(events))

		for _, granularity := range config.Granularities {
			result := runBenchmarkCase(config, events, items, start, end, granularity)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkCase times one event set at one granularity across all runs
func runBenchmarkCase(config BenchmarkConfig, events []schema.StatusChangeEvent, items int, start, end time.Time, granularity schema.Granularity) BenchmarkResult {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		caseStart := time.Now()
		if _, err := cfd.Compute(events, workflow, start, end, granularity); err != nil {
			fmt.Printf("Benchmark case failed: %v\n", err)
			os.Exit(1)
		}
		times = append(times, time.Since(caseStart).Seconds())
	}

	cold := times[0]
	var sum float64
	for _, t := range times[1:] {
		sum += t
	}
	warmAvg := sum / float64(len(times)-1)

	fmt.Printf("  %-5s granularity: Cold: %.3fs, Warm average: %.3fs\n", granularity, cold, warmAvg)

	return BenchmarkResult{
		Items:       items,
		Events:      len(events),
		Granularity: string(granularity),
		ColdTime:    fmt.Sprintf("%.3fs", cold),
		WarmTime:    fmt.Sprintf("%.3fs", warmAvg),
	}
}

// syntheticEvents builds a deterministic event set: every item is created at a
// random point in the window and then walks forward through the workflow,
// with a minority stalling before reaching the final state.
func syntheticEvents(items int, start, end time.Time, seed int64) []schema.StatusChangeEvent {
	rng := rand.New(rand.NewSource(seed))
	window := end.Sub(start)

	var events []schema.StatusChangeEvent
	for item := 1; item <= items; item++ {
		created := start.Add(time.Duration(rng.Int63n(int64(window))))
		steps := rng.Intn(len(workflow)) + 1

		ts := created
		for step := range steps {
			events = append(events, schema.StatusChangeEvent{
				ItemID:    item,
				Timestamp: ts,
				ToStatus:  workflow[step],
			})
			ts = ts.Add(time.Duration(rng.Int63n(int64(72 * time.Hour))))
		}
	}
	return events
}

func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/taigaflow_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"items", "events", "granularity", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{
			fmt.Sprintf("%d", result.Items),
			fmt.Sprintf("%d", result.Events),
			result.Granularity,
			result.ColdTime,
			result.WarmTime,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, granularity := range []string{"day", "week", "month"} {
		fmt.Printf("%s granularity:\n", granularity)
		for _, result := range results {
			if result.Granularity == granularity {
				fmt.Printf("  %-7d items: Cold: %s, Warm: %s\n", result.Items, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
