// Package seeder generates and submits a synthetic club season against a
// running standings service, then reads the standings back to confirm the
// pipeline processed everything.
package seeder

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/clubops/standings/pkg/logger"
)

// Timing constants.
const (
	processingDelay = 3 * time.Second
)

// Run executes the complete seeding pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting season seeder",
		logger.String("baseURL", config.BaseURL),
		logger.Int("members", config.NumMembers),
		logger.Int("contests", config.NumContests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
	)

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the season
	contests, results, err := generateResults(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("result generation failed: %w", err)
	}

	// Step 3: Install the contest set
	if err := setContests(ctx, client, config, contests); err != nil {
		return fmt.Errorf("contest setup failed: %w", err)
	}

	// Step 4: Submit results concurrently
	if err := submitResults(ctx, config, results, stats); err != nil {
		return fmt.Errorf("result submission failed: %w", err)
	}

	// Step 5: Wait for the worker pool to drain the queue
	logger.Get().Info(ctx, "waiting for results to be processed")
	time.Sleep(processingDelay)

	// Step 6: Read the standings back
	entries, err := fetchStandings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("standings retrieval failed: %w", err)
	}

	// Step 7: Verify ordering
	if err := verifyStandings(entries); err != nil {
		return fmt.Errorf("standings verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// verifyStandings checks the returned ordering is internally consistent:
// ranks are dense from 1 and adjusted scores never increase down the board.
func verifyStandings(entries []Entry) error {
	for i, entry := range entries {
		if entry.Rank != i+1 {
			return fmt.Errorf("rank gap at position %d: got rank %d", i, entry.Rank)
		}
	}
	sorted := sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].AdjustedScore > entries[j].AdjustedScore
	})
	// Equal adjusted scores fall through to penalty and further tiebreaks,
	// so only strict inversions are reported.
	if !sorted {
		for i := 1; i < len(entries); i++ {
			if entries[i].AdjustedScore > entries[i-1].AdjustedScore {
				return fmt.Errorf("adjusted score inversion between ranks %d and %d",
					entries[i-1].Rank, entries[i].Rank)
			}
		}
	}
	return nil
}

// displayFinalStats prints the final seeding statistics.
func displayFinalStats(stats *Stats) {
	var successRate, resultsPerSecond float64

	if stats.ResultsSubmitted > 0 {
		successRate = float64(stats.ResultsSuccessful) / float64(stats.ResultsSubmitted) * 100
	}
	if stats.Duration > 0 {
		resultsPerSecond = float64(stats.ResultsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("resultsGenerated", stats.ResultsGenerated),
		logger.Int("resultsSubmitted", stats.ResultsSubmitted),
		logger.Int("resultsSuccessful", stats.ResultsSuccessful),
		logger.Int("resultsDuplicate", stats.ResultsDuplicate),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("standingsEntries", stats.StandingsEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("resultsPerSecond", resultsPerSecond))
}
