package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clubops/standings/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Do performs a request with a JSON body.
func (c *HTTPClient) Do(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// setContests replaces the service's contest set.
func setContests(ctx context.Context, client *HTTPClient, config *Config, contests []Contest) error {
	url := config.BaseURL + "/contests"
	payload := map[string][]Contest{"contests": contests}
	resp, err := client.Do(ctx, http.MethodPut, url, payload)
	if err != nil {
		return fmt.Errorf("failed to set contests: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read contests response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("set contests failed with status %d: %s", resp.StatusCode, string(body))
	}
	logger.Get().Info(ctx, "contest set replaced", logger.Int("contests", len(contests)))
	return nil
}

// submitResults submits results concurrently using a worker pool.
func submitResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "submitting results",
		logger.Int("results", len(results)),
		logger.Int("workers", config.Workers),
	)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/results"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	resultChan := make(chan Result, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for result := range resultChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				outcome := submitSingleResult(ctx, client, url, result)

				atomic.AddInt64(&submitted, 1)
				switch outcome {
				case "success":
					atomic.AddInt64(&successful, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(resultChan)
		for _, result := range results {
			select {
			case <-ctx.Done():
				return
			case resultChan <- result:
			}
		}
	}()

	wg.Wait()

	stats.ResultsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ResultsSuccessful = int(atomic.LoadInt64(&successful))
	stats.ResultsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ResultsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "result submission completed",
		logger.Int("successful", stats.ResultsSuccessful),
		logger.Int("duplicate", stats.ResultsDuplicate),
		logger.Int("failed", stats.ResultsFailed),
	)
	return nil
}

// submitSingleResult submits a single result and classifies the outcome.
func submitSingleResult(ctx context.Context, client *HTTPClient, url string, result Result) string {
	resp, err := client.Do(ctx, http.MethodPost, url, result)
	if err != nil {
		return "failed"
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "success"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// fetchStandings retrieves the standings for verification.
func fetchStandings(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/standings?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read standings response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("standings fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse standings: %w", err)
	}

	stats.StandingsEntries = len(entries)
	return entries, nil
}
