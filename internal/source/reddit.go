package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const redditBaseURL = "https://www.reddit.com"

// RedditAdapter fetches recent threads from one subreddit via the public
// JSON listing.
type RedditAdapter struct {
	Subreddit string
	Limit     int
	client    *http.Client
}

// NewRedditAdapter creates an adapter for one subreddit.
func NewRedditAdapter(subreddit string, limit int) *RedditAdapter {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return &RedditAdapter{
		Subreddit: subreddit,
		Limit:     limit,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *RedditAdapter) Name() string {
	return "reddit/r/" + a.Subreddit
}

// Fetch returns the newest threads in the subreddit.
func (a *RedditAdapter) Fetch(ctx context.Context) ([]RawPost, error) {
	listingURL := fmt.Sprintf("%s/r/%s/new.json?limit=%d", redditBaseURL, a.Subreddit, a.Limit)

	req, err := http.NewRequestWithContext(ctx, "GET", listingURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ideafork/1.0 (signal aggregator)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit fetch r/%s: %w", a.Subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit fetch r/%s: HTTP %d", a.Subreddit, resp.StatusCode)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					ID          string  `json:"id"`
					Subreddit   string  `json:"subreddit"`
					Title       string  `json:"title"`
					SelfText    string  `json:"selftext"`
					Permalink   string  `json:"permalink"`
					CreatedUTC  float64 `json:"created_utc"`
					Score       int     `json:"score"`
					NumComments int     `json:"num_comments"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("reddit decode r/%s: %w", a.Subreddit, err)
	}

	var posts []RawPost
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.ID == "" || d.Title == "" {
			continue
		}
		posts = append(posts, RawPost{
			ExternalID:        d.ID,
			Source:            "reddit",
			Subreddit:         d.Subreddit,
			Title:             d.Title,
			Body:              d.SelfText,
			ExternalURL:       redditBaseURL + d.Permalink,
			ExternalCreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
			Score:             d.Score,
			NumComments:       d.NumComments,
		})
	}
	return posts, nil
}
