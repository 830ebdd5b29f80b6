package brief

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/trends"
)

// stubTrends returns canned interest data and records the keywords asked
// for.
type stubTrends struct {
	interest map[string]trends.Interest
	asked    [][]string
}

func (s *stubTrends) GetInterest(keywords []string) map[string]trends.Interest {
	s.asked = append(s.asked, keywords)
	if s.interest == nil {
		return map[string]trends.Interest{}
	}
	return s.interest
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func makeCluster(t *testing.T, db *database.DB, label string, postType string, n int) int64 {
	t.Helper()
	var ids []int64
	for i := 0; i < n; i++ {
		externalID := fmt.Sprintf("%s-%d", label, i)
		id, err := db.InsertPost(database.SourceReddit, externalID, nil,
			fmt.Sprintf("%s post %d", label, i), nil, "https://example.com/"+externalID,
			"2026-08-01T10:00:00Z", (i+1)*10, i)
		if err != nil || id == 0 {
			t.Fatalf("inserting post: id=%d err=%v", id, err)
		}
		if err := db.SetPostClassification(id, postType, "neutral"); err != nil {
			t.Fatalf("classifying post: %v", err)
		}
		ids = append(ids, id)
	}

	clusterID, err := db.InsertCluster(label, "Summary of "+label, []string{"sync", "offline"}, ids)
	if err != nil {
		t.Fatalf("inserting cluster: %v", err)
	}
	return clusterID
}

func TestSynthesizeCreatesBrief(t *testing.T) {
	db := openTestDB(t)
	clusterID := makeCluster(t, db, "Offline Sync", database.TypeFeatureRequest, 4)

	stub := &stubTrends{interest: map[string]trends.Interest{
		"sync": {AverageScore: 55, Direction: "rising"},
	}}

	result := NewSynthesizer(db, stub).SynthesizeClusters([]int64{clusterID})
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Generated != 1 || result.Skipped != 0 {
		t.Fatalf("expected 1 generated, got %+v", result)
	}
	if len(stub.asked) != 1 {
		t.Errorf("expected one trend lookup, got %d", len(stub.asked))
	}

	brief, err := db.GetBriefBySlug("offline-sync")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if brief == nil {
		t.Fatal("expected brief to be created")
	}
	if brief.Status != database.BriefPublished {
		t.Errorf("expected published brief, got %q", brief.Status)
	}
	if brief.SourceCount != 4 {
		t.Errorf("expected source_count 4, got %d", brief.SourceCount)
	}
	if len(brief.SourcePostIDs) != 4 {
		t.Errorf("expected 4 source post ids, got %d", len(brief.SourcePostIDs))
	}
	if len(brief.SolutionDirections) == 0 {
		t.Error("expected solution directions from feature requests")
	}
	if brief.DemandSignals["post_count"] != float64(4) {
		t.Errorf("expected post_count 4, got %v", brief.DemandSignals["post_count"])
	}
	if _, ok := brief.DemandSignals["trends"]; !ok {
		t.Error("expected trend enrichment in demand signals")
	}

	// Snapshots are the top-scored posts.
	if len(brief.SourceSnapshots) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(brief.SourceSnapshots))
	}
	if brief.SourceSnapshots[0].Score < brief.SourceSnapshots[1].Score {
		t.Error("snapshots must be ordered by score descending")
	}
}

func TestSynthesizeIsIdempotentPerPostSet(t *testing.T) {
	db := openTestDB(t)
	clusterID := makeCluster(t, db, "Offline Sync", database.TypeNeed, 3)
	synth := NewSynthesizer(db, nil)

	result := synth.SynthesizeClusters([]int64{clusterID})
	if result.Generated != 1 {
		t.Fatalf("expected 1 generated, got %d", result.Generated)
	}

	// The same cluster resynthesized is a skip, not a duplicate.
	result = synth.SynthesizeClusters([]int64{clusterID})
	if result.Generated != 0 || result.Skipped != 1 {
		t.Errorf("expected skip on identical post set, got %+v", result)
	}
}

func TestSynthesizeDisambiguatesSlugs(t *testing.T) {
	db := openTestDB(t)
	first := makeCluster(t, db, "Offline Sync", database.TypeNeed, 3)
	second := makeCluster(t, db, "Offline Sync!", database.TypeNeed, 3)

	synth := NewSynthesizer(db, nil)
	result := synth.SynthesizeClusters([]int64{first, second})
	if result.Generated != 2 {
		t.Fatalf("expected 2 briefs, got %d", result.Generated)
	}

	if b, _ := db.GetBriefBySlug("offline-sync"); b == nil {
		t.Error("expected brief at offline-sync")
	}
	if b, _ := db.GetBriefBySlug("offline-sync-2"); b == nil {
		t.Error("expected suffixed slug for the colliding label")
	}
}

func TestSynthesizeWithoutTrendProvider(t *testing.T) {
	db := openTestDB(t)
	clusterID := makeCluster(t, db, "No Trends", database.TypeComplaint, 3)

	result := NewSynthesizer(db, nil).SynthesizeClusters([]int64{clusterID})
	if result.Generated != 1 {
		t.Fatalf("expected 1 generated, got %d", result.Generated)
	}

	brief, _ := db.GetBriefBySlug("no-trends")
	if _, ok := brief.DemandSignals["trends"]; ok {
		t.Error("expected no trend enrichment without a provider")
	}
}

func TestSynthesizeUnknownCluster(t *testing.T) {
	db := openTestDB(t)
	result := NewSynthesizer(db, nil).SynthesizeClusters([]int64{999})
	if len(result.Errors) != 1 {
		t.Errorf("expected recorded error for missing cluster, got %v", result.Errors)
	}
	if result.Generated != 0 {
		t.Errorf("expected nothing generated, got %d", result.Generated)
	}
}

// flakyStore fails cluster lookups for one ID and delegates the rest.
type flakyStore struct {
	*database.DB
	failID int64
}

func (s *flakyStore) GetCluster(clusterID int64) (*database.Cluster, error) {
	if clusterID == s.failID {
		return nil, errors.New("storage offline")
	}
	return s.DB.GetCluster(clusterID)
}

func TestSynthesizeIsolatesClusterFailures(t *testing.T) {
	db := openTestDB(t)
	broken := makeCluster(t, db, "Broken Lookup", database.TypeNeed, 3)
	healthy := makeCluster(t, db, "Healthy Cluster", database.TypeNeed, 3)

	store := &flakyStore{DB: db, failID: broken}
	result := NewSynthesizer(store, nil).SynthesizeClusters([]int64{broken, healthy})

	// The failing cluster is recorded; the sibling still gets its brief.
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if result.Generated != 1 {
		t.Fatalf("expected the healthy cluster synthesized, got %d", result.Generated)
	}
	if b, _ := db.GetBriefBySlug("healthy-cluster"); b == nil {
		t.Error("expected brief for the healthy cluster")
	}
}

func TestPostsKeyIsOrderIndependent(t *testing.T) {
	a := postsKey([]int64{3, 1, 2})
	b := postsKey([]int64{2, 3, 1})
	if a != b {
		t.Errorf("expected identical keys, got %q and %q", a, b)
	}
	if a != "1,2,3" {
		t.Errorf("expected sorted key, got %q", a)
	}
}
