package cluster

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertActionable(t *testing.T, db *database.DB, externalID, title string, tags []string) int64 {
	t.Helper()
	id, err := db.InsertPost(database.SourceReddit, externalID, nil, title, nil,
		"https://example.com", "2026-08-01T10:00:00Z", 10, 2)
	if err != nil || id == 0 {
		t.Fatalf("inserting post %s: id=%d err=%v", externalID, id, err)
	}
	if err := db.SetPostClassification(id, database.TypeNeed, "neutral"); err != nil {
		t.Fatalf("classifying post: %v", err)
	}
	if len(tags) > 0 {
		if err := db.AttachPostTags(id, tags); err != nil {
			t.Fatalf("tagging post: %v", err)
		}
	}
	return id
}

func TestClusterNoPosts(t *testing.T) {
	db := openTestDB(t)
	result, err := NewClusterer(db, 3).ClusterPosts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClustersCreated() != 0 || result.PostsClustered != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestClusterGroupsSimilarPosts(t *testing.T) {
	db := openTestDB(t)

	// Two themes, three posts each, with strongly overlapping vocabulary
	// inside a theme and none across themes.
	syncTitles := []string{
		"Offline sync keeps failing on mobile",
		"Need reliable offline sync between devices",
		"Offline sync conflicts destroy my notes",
	}
	invoiceTitles := []string{
		"Invoice generator for freelance contracts",
		"Need simple invoice tracking for freelance work",
		"Freelance invoice reminders would save me hours",
	}
	for i, title := range syncTitles {
		insertActionable(t, db, fmt.Sprintf("s%d", i), title, []string{"sync"})
	}
	for i, title := range invoiceTitles {
		insertActionable(t, db, fmt.Sprintf("i%d", i), title, []string{"invoicing"})
	}

	result, err := NewClusterer(db, 3).ClusterPosts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClustersCreated() != 2 {
		t.Fatalf("expected 2 clusters, got %d", result.ClustersCreated())
	}
	if result.PostsClustered != 6 {
		t.Errorf("expected 6 posts clustered, got %d", result.PostsClustered)
	}

	for _, clusterID := range result.ClusterIDs {
		cluster, err := db.GetCluster(clusterID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cluster.Label == "" {
			t.Error("expected non-empty cluster label")
		}
		if len(cluster.TrendKeywords) == 0 {
			t.Error("expected trend keywords")
		}
		posts, _ := db.GetClusterPosts(clusterID)
		if len(posts) != 3 {
			t.Errorf("expected 3 posts in cluster %d, got %d", clusterID, len(posts))
		}
	}
}

func TestClusterGroupsByTagsAlone(t *testing.T) {
	db := openTestDB(t)

	// Titles share no vocabulary; only the common tag relates the posts.
	titles := []string{
		"Invoices vanish after desktop restart",
		"Calendar widget ignores timezone offsets",
		"Export button produces corrupted archives",
	}
	for i, title := range titles {
		insertActionable(t, db, fmt.Sprintf("t%d", i), title, []string{"sync"})
	}

	result, err := NewClusterer(db, 3).ClusterPosts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClustersCreated() != 1 {
		t.Fatalf("expected tag weighting to group the posts, got %d clusters", result.ClustersCreated())
	}
	if result.PostsClustered != 3 {
		t.Errorf("expected 3 posts clustered, got %d", result.PostsClustered)
	}
}

func TestClusterDiscardsUndersizedGroups(t *testing.T) {
	db := openTestDB(t)

	insertActionable(t, db, "x1", "Offline sync keeps failing on mobile", []string{"sync"})
	insertActionable(t, db, "x2", "Need reliable offline sync between devices", []string{"sync"})
	insertActionable(t, db, "y1", "Completely unrelated quantum beekeeping topic", nil)

	result, err := NewClusterer(db, 3).ClusterPosts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ClustersCreated() != 0 {
		t.Fatalf("expected no clusters below the size threshold, got %d", result.ClustersCreated())
	}
	if result.PostsDeferred != 3 {
		t.Errorf("expected 3 deferred posts, got %d", result.PostsDeferred)
	}

	// Deferred posts stay eligible for the next run.
	remaining, _ := db.GetUnclusteredActionable()
	if len(remaining) != 3 {
		t.Errorf("expected all posts still unclustered, got %d", len(remaining))
	}
}

func TestClusterMinSizeDefault(t *testing.T) {
	c := NewClusterer(nil, 0)
	if c.minSize != DefaultMinClusterSize {
		t.Errorf("expected default min size %d, got %d", DefaultMinClusterSize, c.minSize)
	}
}

func TestGroupBySimilarity(t *testing.T) {
	posts := []database.Post{
		{ID: 1, Title: "Offline sync keeps failing on mobile"},
		{ID: 2, Title: "Offline sync between devices is unreliable"},
		{ID: 3, Title: "Invoice templates for freelance designers"},
	}
	groups := groupBySimilarity(posts, DefaultSimilarityThreshold)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0].ID != 1 {
		t.Errorf("expected posts 1 and 2 grouped, got %+v", groups[0])
	}
}

func TestDescribeGroup(t *testing.T) {
	posts := []database.Post{
		{Title: "Offline sync keeps failing"},
		{Title: "Offline sync conflicts"},
		{Title: "Offline sync between devices"},
	}
	label, keywords := describeGroup(posts)
	if label == "" {
		t.Fatal("expected non-empty label")
	}
	if len(keywords) == 0 {
		t.Fatal("expected keywords")
	}
	// The dominant tokens must surface first.
	if keywords[0] != "offline" && keywords[0] != "sync" {
		t.Errorf("expected a dominant token first, got %q", keywords[0])
	}
}
