package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/zzoohub/idea-fork-sub001/internal/config"
	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/source"
)

// fakeAdapter serves a fixed batch, optionally failing or blocking until
// released.
type fakeAdapter struct {
	name    string
	posts   []source.RawPost
	err     error
	release chan struct{}
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Fetch(ctx context.Context) ([]source.RawPost, error) {
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.posts, nil
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

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.Pipeline{TagBatchLimit: 500, MinClusterSize: 3},
	}
}

func needPost(subreddit, externalID, title string, n int) source.RawPost {
	return source.RawPost{
		Source:            database.SourceReddit,
		ExternalID:        externalID,
		Subreddit:         subreddit,
		Title:             title,
		ExternalURL:       "https://reddit.com/r/" + subreddit + "/" + externalID,
		ExternalCreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Score:             n * 5,
		NumComments:       n,
	}
}

func TestRunEndToEnd(t *testing.T) {
	db := openTestDB(t)

	// Two themes with enough posts each to clear the cluster threshold.
	var saas, micro []source.RawPost
	for i := 1; i <= 4; i++ {
		saas = append(saas, needPost("SaaS", fmt.Sprintf("s%d", i),
			fmt.Sprintf("I need a tool for invoice reconciliation %d", i), i))
		micro = append(micro, needPost("microsaas", fmt.Sprintf("m%d", i),
			fmt.Sprintf("Looking for a screenshot annotation helper %d", i), i))
	}

	adapters := []source.Adapter{
		&fakeAdapter{name: "reddit/SaaS", posts: saas},
		&fakeAdapter{name: "reddit/microsaas", posts: micro},
	}

	orch := NewWithAdapters(testConfig(), db, adapters, nil)
	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.HasErrors() {
		t.Fatalf("unexpected stage errors: %v", result.Errors)
	}
	if result.PostsFetched != 8 || result.PostsUpserted != 8 {
		t.Errorf("expected 8 fetched and upserted, got %d/%d", result.PostsFetched, result.PostsUpserted)
	}
	if result.PostsTagged != 8 {
		t.Errorf("expected 8 tagged, got %d", result.PostsTagged)
	}
	if result.ClustersCreated != 2 {
		t.Errorf("expected 2 clusters, got %d", result.ClustersCreated)
	}
	if result.BriefsGenerated != 2 {
		t.Errorf("expected 2 briefs, got %d", result.BriefsGenerated)
	}

	stats, _ := db.GetStats()
	if stats.PublishedBriefs != 2 {
		t.Errorf("expected 2 published briefs, got %d", stats.PublishedBriefs)
	}

	// Re-running on unchanged sources must not duplicate anything.
	result, err = orch.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BriefsGenerated != 0 || result.ClustersCreated != 0 {
		t.Errorf("expected idempotent rerun, got %d clusters %d briefs",
			result.ClustersCreated, result.BriefsGenerated)
	}
}

func TestRunCollectsAdapterFailures(t *testing.T) {
	db := openTestDB(t)

	var posts []source.RawPost
	for i := 1; i <= 3; i++ {
		posts = append(posts, needPost("SaaS", fmt.Sprintf("p%d", i),
			fmt.Sprintf("I need a tool for invoice reconciliation %d", i), i))
	}

	adapters := []source.Adapter{
		&fakeAdapter{name: "reddit/SaaS", posts: posts},
		&fakeAdapter{name: "rss/broken", err: errors.New("connection refused")},
	}

	orch := NewWithAdapters(testConfig(), db, adapters, nil)
	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The failing adapter is reported; the healthy one still lands.
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if result.PostsFetched != 3 || result.PostsTagged != 3 {
		t.Errorf("expected healthy adapter to proceed, got fetched=%d tagged=%d",
			result.PostsFetched, result.PostsTagged)
	}
	if !result.HasErrors() {
		t.Error("expected HasErrors to report the partial failure")
	}
}

func TestRunExclusivity(t *testing.T) {
	db := openTestDB(t)

	release := make(chan struct{})
	blocking := &fakeAdapter{name: "reddit/slow", release: release}

	orch := NewWithAdapters(testConfig(), db, []source.Adapter{blocking}, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background())
		firstDone <- err
	}()

	// Wait until the first run holds the slot.
	deadline := time.After(2 * time.Second)
	for !orch.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := orch.Run(context.Background()); err != ErrAlreadyRunning {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if orch.IsRunning() {
		t.Error("slot must be released after the run")
	}
	if orch.LastResult() == nil {
		t.Error("expected last result to be recorded")
	}

	// The slot is free again.
	if _, err := orch.Run(context.Background()); err != nil {
		t.Errorf("expected a fresh run to start, got %v", err)
	}
}

func TestBuildAdaptersFromConfig(t *testing.T) {
	cfg := &config.Config{
		Sources: config.Sources{
			Subreddits: []config.Subreddit{{Name: "SaaS", Limit: 50}},
			Feeds:      []config.Feed{{URL: "https://example.com/rss", Name: "Example"}},
			AppStore:   []config.StoreApp{{ID: "123", Name: "App", Country: "us"}},
			PlayStore:  []config.StoreApp{{ID: "com.example", Name: "App"}},
		},
	}
	adapters := buildAdapters(cfg)
	if len(adapters) != 4 {
		t.Fatalf("expected 4 adapters, got %d", len(adapters))
	}

	names := map[string]bool{}
	for _, a := range adapters {
		names[a.Name()] = true
	}
	for _, want := range []string{"reddit/r/SaaS", "app_store/123", "play_store/com.example"} {
		if !names[want] {
			t.Errorf("missing adapter %s in %v", want, names)
		}
	}
}
