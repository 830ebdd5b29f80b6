package source

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxPerFeed = 25

// RSSAdapter fetches items from one RSS/Atom feed. Items that carry no
// body are optionally backfilled by fetching the linked page and running
// readability extraction over it.
type RSSAdapter struct {
	URL        string
	SourceName string
	FetchBody  bool
	client     *http.Client
}

// NewRSSAdapter creates an adapter for one feed URL.
func NewRSSAdapter(feedURL, name string, fetchBody bool) *RSSAdapter {
	if name == "" {
		name = extractSourceName(feedURL)
	}
	return &RSSAdapter{
		URL:        feedURL,
		SourceName: name,
		FetchBody:  fetchBody,
		client: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (a *RSSAdapter) Name() string {
	return "rss/" + a.SourceName
}

// Fetch parses the feed and normalizes its items.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]RawPost, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(a.URL, ctx)
	if err != nil {
		return nil, err
	}

	var posts []RawPost
	for _, item := range feed.Items {
		if len(posts) >= maxPerFeed {
			break
		}

		post := a.parseItem(item)
		if post == nil {
			continue
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (a *RSSAdapter) parseItem(item *gofeed.Item) *RawPost {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	externalID := item.GUID
	if externalID == "" {
		externalID = itemURL
	}

	published := time.Now().UTC()
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}

	var body string
	if item.Content != "" {
		body = stripHTML(item.Content)
	} else if item.Description != "" {
		body = stripHTML(item.Description)
	}
	if body == "" && a.FetchBody {
		body = a.fetchBody(itemURL)
	}

	return &RawPost{
		ExternalID:        externalID,
		Source:            "rss",
		Title:             title,
		Body:              body,
		ExternalURL:       itemURL,
		ExternalCreatedAt: published,
	}
}

// fetchBody pulls the linked page and extracts readable text. Failures
// just leave the body empty; a bodyless post is still a signal.
func (a *RSSAdapter) fetchBody(pageURL string) string {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "ideafork/1.0 (signal aggregator)")

	resp, err := a.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		log.Printf("no extractable content from %s", pageURL)
		return ""
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 4000 {
		text = text[:4000]
	}
	return text
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		host = parts[len(parts)-2]
	}
	if host == "" {
		return feedURL
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
