package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// AppStoreAdapter fetches customer reviews for one iOS app from the
// public iTunes review feed.
type AppStoreAdapter struct {
	AppID   string
	AppName string
	Country string
	client  *http.Client
}

// NewAppStoreAdapter creates an adapter for one App Store app.
func NewAppStoreAdapter(appID, appName, country string) *AppStoreAdapter {
	if country == "" {
		country = "us"
	}
	return &AppStoreAdapter{
		AppID:   appID,
		AppName: appName,
		Country: country,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *AppStoreAdapter) Name() string {
	return "app_store/" + a.AppID
}

// Fetch returns the most recent reviews for the app.
func (a *AppStoreAdapter) Fetch(ctx context.Context) ([]RawPost, error) {
	feedURL := fmt.Sprintf(
		"https://itunes.apple.com/%s/rss/customerreviews/id=%s/sortBy=mostRecent/json",
		a.Country, a.AppID,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ideafork/1.0 (signal aggregator)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("app store fetch %s: %w", a.AppID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("app store fetch %s: HTTP %d", a.AppID, resp.StatusCode)
	}

	var payload struct {
		Feed struct {
			Entry []struct {
				ID struct {
					Label string `json:"label"`
				} `json:"id"`
				Title struct {
					Label string `json:"label"`
				} `json:"title"`
				Content struct {
					Label string `json:"label"`
				} `json:"content"`
				Rating struct {
					Label string `json:"label"`
				} `json:"im:rating"`
				Updated struct {
					Label string `json:"label"`
				} `json:"updated"`
			} `json:"entry"`
		} `json:"feed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("app store decode %s: %w", a.AppID, err)
	}

	var posts []RawPost
	for _, entry := range payload.Feed.Entry {
		if entry.ID.Label == "" || entry.Title.Label == "" {
			continue
		}

		rating, _ := strconv.Atoi(entry.Rating.Label)

		created := time.Now().UTC()
		if t, err := time.Parse(time.RFC3339, entry.Updated.Label); err == nil {
			created = t.UTC()
		}

		posts = append(posts, RawPost{
			ExternalID:        entry.ID.Label,
			Source:            "app_store",
			Title:             entry.Title.Label,
			Body:              entry.Content.Label,
			ExternalURL:       fmt.Sprintf("https://apps.apple.com/%s/app/id%s", a.Country, a.AppID),
			ExternalCreatedAt: created,
			Score:             rating,
			ProductExternalID: a.AppID,
			ProductName:       a.AppName,
			ProductCategory:   "app_store",
		})
	}
	return posts, nil
}
