// Package classify assigns post types, sentiment, and tags to ingested
// posts that lack them.
package classify

import (
	"fmt"
	"log"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

// Classification is the verdict for one post.
type Classification struct {
	PostType  string
	Sentiment string // "positive", "negative", or "neutral"
	Tags      []string
}

// Classifier produces a classification for one post. Implementations are
// pluggable; the pipeline only relies on this contract.
type Classifier interface {
	Classify(post database.Post) (Classification, error)
}

// Store is the storage surface the tagger needs.
type Store interface {
	GetUntaggedPosts(limit int) ([]database.Post, error)
	SetPostClassification(postID int64, postType, sentiment string) error
	AttachPostTags(postID int64, slugs []string) error
}

// Result holds the results of a tagging run.
type Result struct {
	Tagged int
	Errors []string
}

// Tagger classifies all untagged posts up to a batch ceiling.
type Tagger struct {
	store      Store
	classifier Classifier
	batchLimit int
}

// NewTagger creates a new tagger.
func NewTagger(store Store, classifier Classifier, batchLimit int) *Tagger {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &Tagger{store: store, classifier: classifier, batchLimit: batchLimit}
}

// TagPosts classifies every untagged post in the batch. A failure on one
// post is recorded and does not abort the rest: classification quality
// problems on a handful of posts must never block ingestion or clustering
// of the others.
func (t *Tagger) TagPosts() *Result {
	r := &Result{}

	posts, err := t.store.GetUntaggedPosts(t.batchLimit)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("loading untagged posts: %v", err))
		return r
	}

	if len(posts) == 0 {
		log.Println("no posts pending classification")
		return r
	}

	for _, post := range posts {
		verdict, err := t.classifier.Classify(post)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("classifying post %d: %v", post.ID, err))
			continue
		}

		if err := t.store.SetPostClassification(post.ID, verdict.PostType, verdict.Sentiment); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("storing classification for post %d: %v", post.ID, err))
			continue
		}
		if len(verdict.Tags) > 0 {
			if err := t.store.AttachPostTags(post.ID, verdict.Tags); err != nil {
				r.Errors = append(r.Errors, fmt.Sprintf("tagging post %d: %v", post.ID, err))
				continue
			}
		}
		r.Tagged++
	}

	log.Printf("classification complete: %d tagged, %d errors", r.Tagged, len(r.Errors))
	return r
}
