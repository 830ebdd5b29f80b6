// Package cluster groups actionable posts that describe the same
// underlying need into persisted clusters.
package cluster

import (
	"fmt"
	"log"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

// DefaultMinClusterSize is the smallest group worth synthesizing into a
// brief. Smaller groups stay unclustered and get another chance when
// later runs bring in more posts.
const DefaultMinClusterSize = 3

// DefaultSimilarityThreshold is the minimum cosine similarity between a
// post and a cluster centroid for the post to join the cluster.
const DefaultSimilarityThreshold = 0.25

// Store is the storage surface the clusterer needs.
type Store interface {
	GetUnclusteredActionable() ([]database.Post, error)
	InsertCluster(label, summary string, trendKeywords []string, postIDs []int64) (int64, error)
}

// Result holds the results of a clustering run.
type Result struct {
	ClusterIDs     []int64
	PostsClustered int
	PostsDeferred  int
}

// ClustersCreated returns how many clusters the run persisted.
func (r *Result) ClustersCreated() int {
	return len(r.ClusterIDs)
}

// Clusterer groups unclustered actionable posts by text similarity.
type Clusterer struct {
	store     Store
	minSize   int
	threshold float64
}

// NewClusterer creates a new post clusterer.
func NewClusterer(store Store, minSize int) *Clusterer {
	if minSize <= 0 {
		minSize = DefaultMinClusterSize
	}
	return &Clusterer{
		store:     store,
		minSize:   minSize,
		threshold: DefaultSimilarityThreshold,
	}
}

// ClusterPosts groups the unclustered actionable posts and persists every
// group that meets the minimum size. Posts in undersized groups are left
// unclustered rather than reported as an error.
func (c *Clusterer) ClusterPosts() (*Result, error) {
	posts, err := c.store.GetUnclusteredActionable()
	if err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		log.Println("no unclustered actionable posts")
		return &Result{}, nil
	}

	groups := groupBySimilarity(posts, c.threshold)

	r := &Result{}
	for _, group := range groups {
		if len(group) < c.minSize {
			r.PostsDeferred += len(group)
			continue
		}

		label, keywords := describeGroup(group)
		ids := make([]int64, len(group))
		for i, p := range group {
			ids[i] = p.ID
		}

		summary := fmt.Sprintf("%d posts describing a shared theme around %s", len(group), label)
		clusterID, err := c.store.InsertCluster(label, summary, keywords, ids)
		if err != nil {
			return r, fmt.Errorf("storing cluster %q: %w", label, err)
		}
		r.ClusterIDs = append(r.ClusterIDs, clusterID)
		r.PostsClustered += len(group)
	}

	log.Printf("clustering complete: %d clusters, %d posts clustered, %d deferred",
		r.ClustersCreated(), r.PostsClustered, r.PostsDeferred)
	return r, nil
}
