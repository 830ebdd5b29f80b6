// Package ingest writes normalized posts into storage, deduplicating by
// (source, external_id).
package ingest

import (
	"log"
	"time"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/source"
)

// Store is the storage surface the upserter needs.
type Store interface {
	GetPostBySourceExternalID(src, externalID string) (*database.Post, error)
	InsertPost(src, externalID string, subreddit *string, title string, body *string, externalURL, externalCreatedAt string, score, numComments int) (int64, error)
	UpdatePostSignals(postID int64, title string, body *string, score, numComments int) error
	UpsertProduct(src, externalID, slug, name string, description, category *string) (int64, error)
	BumpProductSignals(productID int64, postScore int) error
}

// Result holds the counts of one upsert batch.
type Result struct {
	Inserted int
	Updated  int
}

// Upserter deduplicates and persists raw posts.
type Upserter struct {
	store Store
}

// NewUpserter creates a new deduplicating upserter.
func NewUpserter(store Store) *Upserter {
	return &Upserter{store: store}
}

// UpsertBatch writes a batch of raw posts. New identities are inserted
// unclassified; known identities have their mutable fields refreshed
// without disturbing tags or classification.
func (u *Upserter) UpsertBatch(posts []source.RawPost) (*Result, error) {
	r := &Result{}
	for _, raw := range posts {
		inserted, err := u.upsertOne(raw)
		if err != nil {
			return r, err
		}
		if inserted {
			r.Inserted++
		} else {
			r.Updated++
		}
	}

	log.Printf("upsert complete: %d inserted, %d updated", r.Inserted, r.Updated)
	return r, nil
}

func (u *Upserter) upsertOne(raw source.RawPost) (inserted bool, err error) {
	existing, err := u.store.GetPostBySourceExternalID(raw.Source, raw.ExternalID)
	if err != nil {
		return false, err
	}

	var subreddit, body *string
	if raw.Subreddit != "" {
		subreddit = &raw.Subreddit
	}
	if raw.Body != "" {
		b := raw.Body
		body = &b
	}

	if existing != nil {
		return false, u.store.UpdatePostSignals(existing.ID, raw.Title, body, raw.Score, raw.NumComments)
	}

	createdAt := raw.ExternalCreatedAt.UTC().Format(time.RFC3339)
	id, err := u.store.InsertPost(raw.Source, raw.ExternalID, subreddit, raw.Title, body,
		raw.ExternalURL, createdAt, raw.Score, raw.NumComments)
	if err != nil {
		return false, err
	}
	if id == 0 {
		// Lost an insert race to a concurrent run; the row exists now,
		// so retry as an update rather than surfacing an error.
		existing, err := u.store.GetPostBySourceExternalID(raw.Source, raw.ExternalID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, nil
		}
		return false, u.store.UpdatePostSignals(existing.ID, raw.Title, body, raw.Score, raw.NumComments)
	}

	if raw.ProductExternalID != "" {
		if err := u.attachProduct(raw); err != nil {
			// Product bookkeeping must not fail the post write.
			log.Printf("product upsert for %s/%s: %v", raw.Source, raw.ProductExternalID, err)
		}
	}
	return true, nil
}

// attachProduct upserts the product a store review belongs to and folds
// the new signal into its counters.
func (u *Upserter) attachProduct(raw source.RawPost) error {
	name := raw.ProductName
	if name == "" {
		name = raw.ProductExternalID
	}

	var category *string
	if raw.ProductCategory != "" {
		c := raw.ProductCategory
		category = &c
	}

	productID, err := u.store.UpsertProduct(raw.Source, raw.ProductExternalID,
		database.Slugify(name), name, nil, category)
	if err != nil {
		return err
	}
	return u.store.BumpProductSignals(productID, raw.Score)
}
