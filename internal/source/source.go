// Package source fetches raw signal posts from external sources and
// normalizes them into one envelope for ingestion.
package source

import (
	"context"
	"strings"
	"time"
)

// RawPost is the normalized ingestion envelope. It has no identity until
// the upserter resolves it by (Source, ExternalID).
type RawPost struct {
	ExternalID        string
	Source            string
	Subreddit         string
	Title             string
	Body              string
	ExternalURL       string
	ExternalCreatedAt time.Time
	Score             int
	NumComments       int

	// Product context, set by product-bearing sources (store reviews).
	ProductExternalID string
	ProductName       string
	ProductCategory   string
}

// Adapter fetches raw posts from one external source.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]RawPost, error)
}

// stripHTML removes tags and decodes common entities from feed content.
func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
