package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PlayStoreAdapter scrapes the public details page for one Android app
// and extracts the embedded review blocks.
type PlayStoreAdapter struct {
	Package string
	AppName string
	client  *http.Client
}

// NewPlayStoreAdapter creates an adapter for one Play Store package.
func NewPlayStoreAdapter(pkg, appName string) *PlayStoreAdapter {
	return &PlayStoreAdapter{
		Package: pkg,
		AppName: appName,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *PlayStoreAdapter) Name() string {
	return "play_store/" + a.Package
}

// Fetch returns the reviews visible on the app's details page.
func (a *PlayStoreAdapter) Fetch(ctx context.Context) ([]RawPost, error) {
	pageURL := fmt.Sprintf("https://play.google.com/store/apps/details?id=%s&hl=en", a.Package)

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ideafork/1.0)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("play store fetch %s: %w", a.Package, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("play store fetch %s: HTTP %d", a.Package, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("play store parse %s: %w", a.Package, err)
	}
	return a.parseReviews(doc, pageURL), nil
}

func (a *PlayStoreAdapter) parseReviews(doc *goquery.Document, pageURL string) []RawPost {
	var posts []RawPost
	doc.Find("[data-review-id]").Each(func(_ int, sel *goquery.Selection) {
		reviewID, _ := sel.Attr("data-review-id")
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}

		title := text
		if len(title) > 80 {
			title = title[:80]
		}

		posts = append(posts, RawPost{
			ExternalID:        reviewID,
			Source:            "play_store",
			Title:             title,
			Body:              text,
			ExternalURL:       pageURL,
			ExternalCreatedAt: time.Now().UTC(),
			Score:             starRating(sel),
			ProductExternalID: a.Package,
			ProductName:       a.AppName,
			ProductCategory:   "play_store",
		})
	})

	// The page sometimes renders reviews with an empty ID attribute;
	// derive one from the content so re-ingestion stays idempotent.
	for i := range posts {
		if posts[i].ExternalID == "" {
			sum := sha1.Sum([]byte(posts[i].Body))
			posts[i].ExternalID = hex.EncodeToString(sum[:8])
		}
	}
	return posts
}

func starRating(sel *goquery.Selection) int {
	label, ok := sel.Find("[aria-label]").Attr("aria-label")
	if !ok {
		return 0
	}
	label = strings.ToLower(label)
	for stars := 5; stars >= 1; stars-- {
		if strings.Contains(label, fmt.Sprintf("%d star", stars)) {
			return stars
		}
	}
	return 0
}
