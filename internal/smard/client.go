// Package smard talks to the SMARD chart_data API. Data is published as
// week-aligned blocks per metric and region: an index file lists the block
// timestamps currently available, and each block file carries the series for
// that span as [epoch_ms, value-or-null] pairs.
package smard

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"time"

	"energy_tracker/internal/config"
	"energy_tracker/internal/model"
)

// Point is one raw observation from a block file. Value is nil when the
// source has the slot but no published number yet.
type Point struct {
	TimestampMS int64
	Value       *float64
}

// Client fetches block indexes and block data. All failures degrade to empty
// results: a metric the API cannot serve this run simply contributes no data,
// it never aborts the pipeline.
type Client struct {
	baseURL    string
	region     string
	resolution string
	retries    int
	backoff    time.Duration

	// Separate clients so index lookups fail fast while block downloads
	// get a longer budget.
	indexClient *http.Client
	dataClient  *http.Client
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		region:      cfg.Region,
		resolution:  cfg.Resolution,
		retries:     cfg.Retries,
		backoff:     cfg.RetryBackoff,
		indexClient: &http.Client{Timeout: cfg.IndexTimeout},
		dataClient:  &http.Client{Timeout: cfg.DataTimeout},
	}
}

// ListBlocks returns the block timestamps currently published for a metric,
// most recent first. Any transport or decode failure yields an empty slice.
func (c *Client) ListBlocks(m model.Metric) []int64 {
	url := fmt.Sprintf("%s/%d/%s/index_%s.json", c.baseURL, m.Code, c.region, c.resolution)

	body, err := c.get(c.indexClient, url)
	if err != nil {
		log.Printf("  %s: listing blocks: %v", m.Name, err)
		return nil
	}

	var index struct {
		Timestamps []int64 `json:"timestamps"`
	}
	if err := json.Unmarshal(body, &index); err != nil {
		log.Printf("  %s: decoding block index: %v", m.Name, err)
		return nil
	}
	if len(index.Timestamps) == 0 {
		log.Printf("  %s: block index is empty", m.Name)
		return nil
	}

	blocks := make([]int64, len(index.Timestamps))
	copy(blocks, index.Timestamps)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] > blocks[j] })
	return blocks
}

// FetchBlock downloads one block's series for a metric. The block timestamp
// must come from a prior ListBlocks call for the same metric. Failures and
// responses without a series container yield an empty slice.
func (c *Client) FetchBlock(m model.Metric, block int64) []Point {
	url := fmt.Sprintf("%s/%d/%s/%d_%s_%s_%d.json",
		c.baseURL, m.Code, c.region, m.Code, c.region, c.resolution, block)

	body, err := c.get(c.dataClient, url)
	if err != nil {
		log.Printf("  %s: fetching block %d: %v", m.Name, block, err)
		return nil
	}

	var payload struct {
		Series [][]*float64 `json:"series"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("  %s: decoding block %d: %v", m.Name, block, err)
		return nil
	}
	if len(payload.Series) == 0 {
		log.Printf("  %s: block %d has no series data", m.Name, block)
		return nil
	}

	points := make([]Point, 0, len(payload.Series))
	for _, pair := range payload.Series {
		if len(pair) != 2 || pair[0] == nil {
			continue
		}
		points = append(points, Point{
			TimestampMS: int64(*pair[0]),
			Value:       pair[1],
		})
	}
	return points
}

type apiError struct {
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.message)
}

func isRetryable(err error) bool {
	ae, ok := err.(*apiError)
	if !ok {
		return true // network errors are retryable
	}
	return ae.statusCode == 429 || ae.statusCode >= 500
}

func (c *Client) get(client *http.Client, url string) ([]byte, error) {
	var body []byte
	var err error
	for attempt := 0; attempt < c.retries; attempt++ {
		body, err = doRequest(client, url)
		if err == nil {
			return body, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		if attempt < c.retries-1 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * c.backoff
			log.Printf("  retrying in %s: %v", wait, err)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.retries, err)
}

func doRequest(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != 200 {
		return nil, &apiError{statusCode: resp.StatusCode, message: http.StatusText(resp.StatusCode)}
	}
	return body, nil
}
