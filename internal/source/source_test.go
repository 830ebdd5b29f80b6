package source

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"a &amp; b &lt;tag&gt;", "a & b <tag>"},
		{"spaced&nbsp;out", "spaced out"},
		{"<div><span>nested</span>\n  content</div>", "nested content"},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractSourceName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://www.example.com/feed.xml", "Example"},
		{"https://blog.acme.io/rss", "Acme"},
		{"https://feeds.feedburner.com/site", "Feedburner"},
		{"https://news.ycombinator.com/rss", "Ycombinator"},
	}
	for _, tc := range cases {
		if got := extractSourceName(tc.in); got != tc.want {
			t.Errorf("extractSourceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAdapterNames(t *testing.T) {
	if got := NewRedditAdapter("SaaS", 50).Name(); got != "reddit/r/SaaS" {
		t.Errorf("reddit name = %q", got)
	}
	if got := NewRSSAdapter("https://www.example.com/rss", "", false).Name(); got != "rss/Example" {
		t.Errorf("rss name = %q", got)
	}
	if got := NewAppStoreAdapter("123", "App", "").Name(); got != "app_store/123" {
		t.Errorf("app store name = %q", got)
	}
	if got := NewPlayStoreAdapter("com.example", "App").Name(); got != "play_store/com.example" {
		t.Errorf("play store name = %q", got)
	}
}

func TestPlayStoreParseReviews(t *testing.T) {
	page := `<html><body>
		<div data-review-id="r1"><span aria-label="Rated 4 stars out of five">Great app, works offline</span></div>
		<div data-review-id="">Review rendered without a stable id</div>
		<div data-review-id="r3">   </div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := NewPlayStoreAdapter("com.example", "Example")
	posts := a.parseReviews(doc, "https://play.google.com/store/apps/details?id=com.example")

	if len(posts) != 2 {
		t.Fatalf("expected 2 reviews (empty text dropped), got %d", len(posts))
	}
	if posts[0].ExternalID != "r1" {
		t.Errorf("expected stable id kept, got %q", posts[0].ExternalID)
	}
	if posts[0].Score != 4 {
		t.Errorf("expected 4 stars, got %d", posts[0].Score)
	}

	// A review without a stable ID gets a content hash so re-ingestion
	// dedupes instead of duplicating.
	hashed := posts[1].ExternalID
	if len(hashed) != 16 {
		t.Fatalf("expected 16-char content hash, got %q", hashed)
	}
	again := a.parseReviews(mustDoc(t, page), "https://play.google.com/store/apps/details?id=com.example")
	if again[1].ExternalID != hashed {
		t.Errorf("expected deterministic hash id, got %q and %q", hashed, again[1].ExternalID)
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestRedditAdapterClampsLimit(t *testing.T) {
	if a := NewRedditAdapter("SaaS", 0); a.Limit != 50 {
		t.Errorf("expected default limit 50, got %d", a.Limit)
	}
	if a := NewRedditAdapter("SaaS", 500); a.Limit != 50 {
		t.Errorf("expected clamp to 50, got %d", a.Limit)
	}
	if a := NewRedditAdapter("SaaS", 25); a.Limit != 25 {
		t.Errorf("expected 25 kept, got %d", a.Limit)
	}
}
