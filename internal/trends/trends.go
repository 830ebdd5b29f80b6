// Package trends wraps the external trend-data provider behind a
// rate-limited, fail-soft client. Enrichment is an optional enhancement of
// brief synthesis and product display, never a correctness requirement, so
// this client converts every provider failure into an empty result.
package trends

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MaxKeywords is the provider's per-request keyword ceiling.
const MaxKeywords = 5

const DefaultMinInterval = 5 * time.Second

// Interest summarizes trend data for one keyword.
type Interest struct {
	AverageScore   float64  `json:"average_score"`
	Direction      string   `json:"direction"` // "rising" or "declining"
	RelatedQueries []string `json:"related_queries"`
}

// Client serializes calls to the trend provider with a minimum inter-call
// interval. The lock and last-call timestamp are fields of the instance so
// tests can run isolated clients; in production one Client is shared by the
// pipeline and the read paths, because the provider's rate limit belongs to
// the one downstream account.
type Client struct {
	baseURL     string
	minInterval time.Duration
	client      *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// New creates a trend client against the given provider base URL.
func New(baseURL string, minInterval time.Duration) *Client {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		minInterval: minInterval,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// GetInterest fetches interest data for up to MaxKeywords keywords.
// The call may suspend the caller until the minimum interval since the
// previous call has elapsed, measured call start to call start. Any
// provider failure yields an empty map.
func (c *Client) GetInterest(keywords []string) map[string]Interest {
	if len(keywords) == 0 {
		return map[string]Interest{}
	}
	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()

	result, err := c.fetch(keywords)
	if err != nil {
		log.Printf("trend fetch failed: %v", err)
		return map[string]Interest{}
	}
	return result
}

func (c *Client) fetch(keywords []string) (map[string]Interest, error) {
	params := url.Values{"keywords": {strings.Join(keywords, ",")}}

	req, err := http.NewRequest("GET", c.baseURL+"/interest?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ideafork/1.0 (signal aggregator)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %d", resp.StatusCode)
	}

	var payload struct {
		Keywords []struct {
			Keyword        string    `json:"keyword"`
			Samples        []float64 `json:"samples"`
			RelatedQueries []string  `json:"related_queries"`
		} `json:"keywords"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	result := make(map[string]Interest, len(payload.Keywords))
	for _, k := range payload.Keywords {
		if k.Keyword == "" {
			continue
		}
		result[k.Keyword] = summarize(k.Samples, k.RelatedQueries)
	}
	return result, nil
}

// summarize reduces a lookback window of samples to an average score and a
// direction: rising iff the most recent sample exceeds the earliest one.
func summarize(samples []float64, related []string) Interest {
	interest := Interest{Direction: "declining"}

	if len(samples) > 0 {
		var sum float64
		for _, s := range samples {
			sum += s
		}
		interest.AverageScore = sum / float64(len(samples))
		if samples[len(samples)-1] > samples[0] {
			interest.Direction = "rising"
		}
	}

	if len(related) > MaxKeywords {
		related = related[:MaxKeywords]
	}
	interest.RelatedQueries = related
	return interest
}
