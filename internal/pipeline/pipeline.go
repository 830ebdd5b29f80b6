// Package pipeline orchestrates the five-stage run that turns raw source
// posts into published briefs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zzoohub/idea-fork-sub001/internal/brief"
	"github.com/zzoohub/idea-fork-sub001/internal/classify"
	"github.com/zzoohub/idea-fork-sub001/internal/cluster"
	"github.com/zzoohub/idea-fork-sub001/internal/config"
	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/ingest"
	"github.com/zzoohub/idea-fork-sub001/internal/source"
	"github.com/zzoohub/idea-fork-sub001/internal/trends"
)

// ErrAlreadyRunning is returned when a run is requested while another run
// is still in progress. At most one run may execute at a time.
var ErrAlreadyRunning = errors.New("a pipeline run is already in progress")

// Result holds the stage counts and any stage errors of one run.
type Result struct {
	PostsFetched    int
	PostsUpserted   int
	PostsTagged     int
	ClustersCreated int
	BriefsGenerated int
	Errors          []string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// HasErrors reports whether any stage recorded a failure.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Orchestrator runs the fetch, upsert, tag, cluster, and synthesize
// stages in order.
type Orchestrator struct {
	cfg      *config.Config
	db       *database.DB
	adapters []source.Adapter
	trends   brief.TrendProvider

	mu      sync.Mutex
	running bool
	lastRun *Result
}

// New creates an orchestrator with adapters derived from the config.
func New(cfg *config.Config, db *database.DB) *Orchestrator {
	var provider brief.TrendProvider
	if cfg.Trends.Enabled && cfg.Trends.BaseURL != "" {
		provider = trends.New(cfg.Trends.BaseURL, time.Duration(cfg.Trends.MinIntervalSeconds)*time.Second)
	}
	return &Orchestrator{
		cfg:      cfg,
		db:       db,
		adapters: buildAdapters(cfg),
		trends:   provider,
	}
}

// NewWithAdapters creates an orchestrator with explicit adapters and
// trend provider, bypassing config-driven construction.
func NewWithAdapters(cfg *config.Config, db *database.DB, adapters []source.Adapter, provider brief.TrendProvider) *Orchestrator {
	return &Orchestrator{cfg: cfg, db: db, adapters: adapters, trends: provider}
}

func buildAdapters(cfg *config.Config) []source.Adapter {
	var adapters []source.Adapter
	for _, sub := range cfg.Sources.Subreddits {
		adapters = append(adapters, source.NewRedditAdapter(sub.Name, sub.Limit))
	}
	for _, feed := range cfg.Sources.Feeds {
		adapters = append(adapters, source.NewRSSAdapter(feed.URL, feed.Name, true))
	}
	for _, app := range cfg.Sources.AppStore {
		adapters = append(adapters, source.NewAppStoreAdapter(app.ID, app.Name, app.Country))
	}
	for _, app := range cfg.Sources.PlayStore {
		adapters = append(adapters, source.NewPlayStoreAdapter(app.ID, app.Name))
	}
	return adapters
}

// Trends returns the trend provider the orchestrator was built with, so
// the API server can share the provider's rate limit. Nil when trends
// are disabled.
func (o *Orchestrator) Trends() brief.TrendProvider {
	return o.trends
}

// IsRunning reports whether a run is in progress.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// LastResult returns the result of the most recently finished run, or nil
// if none has completed yet.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRun
}

// Run executes the full pipeline. It returns ErrAlreadyRunning without
// side effects when another run holds the slot. Stage failures do not
// abort the run; they are collected in the result so a partial run still
// lands whatever data it could.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	r := &Result{StartedAt: time.Now().UTC()}
	defer func() {
		r.FinishedAt = time.Now().UTC()
		o.mu.Lock()
		o.running = false
		o.lastRun = r
		o.mu.Unlock()
	}()

	log.Println("stage 1/5: fetching sources")
	raw := o.runFetch(ctx, r)

	log.Println("stage 2/5: upserting posts")
	o.runUpsert(raw, r)

	log.Println("stage 3/5: classifying posts")
	o.runTag(r)

	log.Println("stage 4/5: clustering posts")
	clusterIDs := o.runCluster(r)

	log.Println("stage 5/5: synthesizing briefs")
	o.runSynthesize(clusterIDs, r)

	log.Printf("pipeline finished: fetched=%d upserted=%d tagged=%d clusters=%d briefs=%d errors=%d",
		r.PostsFetched, r.PostsUpserted, r.PostsTagged, r.ClustersCreated, r.BriefsGenerated, len(r.Errors))
	return r, nil
}

// runFetch polls every adapter. One adapter failing must not cost the
// batch from the others.
func (o *Orchestrator) runFetch(ctx context.Context, r *Result) []source.RawPost {
	var all []source.RawPost
	for _, adapter := range o.adapters {
		posts, err := adapter.Fetch(ctx)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("fetch %s: %v", adapter.Name(), err))
			continue
		}
		all = append(all, posts...)
	}
	r.PostsFetched = len(all)
	return all
}

func (o *Orchestrator) runUpsert(raw []source.RawPost, r *Result) {
	result, err := ingest.NewUpserter(o.db).UpsertBatch(raw)
	if result != nil {
		r.PostsUpserted = result.Inserted + result.Updated
	}
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("upsert: %v", err))
	}
}

func (o *Orchestrator) runTag(r *Result) {
	tagger := classify.NewTagger(o.db, classify.NewRuleClassifier(), o.cfg.Pipeline.TagBatchLimit)
	result := tagger.TagPosts()
	r.PostsTagged = result.Tagged
	r.Errors = append(r.Errors, result.Errors...)
}

func (o *Orchestrator) runCluster(r *Result) []int64 {
	clusterer := cluster.NewClusterer(o.db, o.cfg.Pipeline.MinClusterSize)
	result, err := clusterer.ClusterPosts()
	if result != nil {
		r.ClustersCreated = result.ClustersCreated()
	}
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("cluster: %v", err))
		return nil
	}
	return result.ClusterIDs
}

func (o *Orchestrator) runSynthesize(clusterIDs []int64, r *Result) {
	if len(clusterIDs) == 0 {
		return
	}
	synth := brief.NewSynthesizer(o.db, o.trends)
	result := synth.SynthesizeClusters(clusterIDs)
	r.BriefsGenerated = result.Generated
	r.Errors = append(r.Errors, result.Errors...)
}
