// Package brief synthesizes market-opportunity briefs from clusters of
// related posts.
package brief

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/trends"
)

// MaxSnapshots is how many representative posts a brief captures.
const MaxSnapshots = 5

// Store is the storage surface the synthesizer needs.
type Store interface {
	GetCluster(clusterID int64) (*database.Cluster, error)
	GetClusterPosts(clusterID int64) ([]database.Post, error)
	BriefExistsForPosts(postsKey string) (bool, error)
	BriefSlugExists(slug string) (bool, error)
	InsertBrief(p database.BriefParams) (int64, error)
}

// TrendProvider enriches a brief with external interest data. A nil or
// empty result simply leaves the enrichment out.
type TrendProvider interface {
	GetInterest(keywords []string) map[string]trends.Interest
}

// Result holds the results of a synthesis run.
type Result struct {
	Generated int
	Skipped   int
	Errors    []string
}

// Synthesizer turns clusters into briefs.
type Synthesizer struct {
	store  Store
	trends TrendProvider
}

// NewSynthesizer creates a new brief synthesizer. trendProvider may be
// nil when enrichment is disabled.
func NewSynthesizer(store Store, trendProvider TrendProvider) *Synthesizer {
	return &Synthesizer{store: store, trends: trendProvider}
}

// SynthesizeClusters generates a brief for each cluster ID. A cluster
// whose exact post set already produced a brief is skipped, which makes
// re-running the stage idempotent. A failure on one cluster is recorded
// and does not abort the siblings.
func (s *Synthesizer) SynthesizeClusters(clusterIDs []int64) *Result {
	r := &Result{}
	for _, clusterID := range clusterIDs {
		generated, err := s.synthesizeOne(clusterID)
		if err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("synthesizing cluster %d: %v", clusterID, err))
			continue
		}
		if generated {
			r.Generated++
		} else {
			r.Skipped++
		}
	}

	log.Printf("synthesis complete: %d briefs generated, %d skipped, %d failed",
		r.Generated, r.Skipped, len(r.Errors))
	return r
}

func (s *Synthesizer) synthesizeOne(clusterID int64) (bool, error) {
	cluster, err := s.store.GetCluster(clusterID)
	if err != nil {
		return false, err
	}
	if cluster == nil {
		return false, fmt.Errorf("cluster %d not found", clusterID)
	}

	posts, err := s.store.GetClusterPosts(clusterID)
	if err != nil {
		return false, err
	}
	if len(posts) == 0 {
		return false, nil
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	exists, err := s.store.BriefExistsForPosts(postsKey(postIDs))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	slug, err := s.uniqueSlug(cluster.Label)
	if err != nil {
		return false, err
	}

	params := database.BriefParams{
		ClusterID:          clusterID,
		Slug:               slug,
		PostsKey:           postsKey(postIDs),
		Title:              cluster.Label,
		Summary:            cluster.Summary,
		ProblemStatement:   problemStatement(cluster, posts),
		Opportunity:        opportunity(cluster, posts),
		SolutionDirections: solutionDirections(posts),
		DemandSignals:      demandSignals(posts, s.fetchTrends(cluster)),
		SourceSnapshots:    snapshots(posts),
		SourcePostIDs:      postIDs,
		Status:             database.BriefPublished,
	}

	if _, err := s.store.InsertBrief(params); err != nil {
		return false, err
	}
	return true, nil
}

// uniqueSlug slugifies the label and appends a numeric suffix on
// collision. Collisions are expected: different post sets can share a
// label across runs.
func (s *Synthesizer) uniqueSlug(label string) (string, error) {
	base := database.Slugify(label)
	slug := base
	for n := 2; ; n++ {
		taken, err := s.store.BriefSlugExists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

func (s *Synthesizer) fetchTrends(cluster *database.Cluster) map[string]trends.Interest {
	if s.trends == nil || len(cluster.TrendKeywords) == 0 {
		return nil
	}
	return s.trends.GetInterest(cluster.TrendKeywords)
}

// postsKey is the canonical identity of a post set: sorted IDs joined
// with commas.
func postsKey(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func problemStatement(cluster *database.Cluster, posts []database.Post) string {
	counts := typeCounts(posts)
	dominant := dominantType(counts)

	var stmt string
	switch dominant {
	case database.TypeComplaint, database.TypeReview:
		stmt = fmt.Sprintf("Users are repeatedly reporting problems around %s.", strings.ToLower(cluster.Label))
	case database.TypeFeatureRequest:
		stmt = fmt.Sprintf("Users are asking for capabilities around %s that existing tools do not offer.", strings.ToLower(cluster.Label))
	case database.TypeAlternativeSeeking:
		stmt = fmt.Sprintf("Users are actively looking to replace their current solution for %s.", strings.ToLower(cluster.Label))
	default:
		stmt = fmt.Sprintf("Users show sustained unmet demand around %s.", strings.ToLower(cluster.Label))
	}
	return fmt.Sprintf("%s %d posts across sources raise the same theme.", stmt, len(posts))
}

func opportunity(cluster *database.Cluster, posts []database.Post) string {
	totalScore := 0
	for _, p := range posts {
		totalScore += p.Score
	}
	return fmt.Sprintf(
		"A focused product addressing %s could capture this demand: %d independent signals with a combined engagement score of %d.",
		strings.ToLower(cluster.Label), len(posts), totalScore,
	)
}

// solutionDirections extracts concrete directions from the cluster's
// feature requests and needs, falling back to a generic direction when
// the cluster has none.
func solutionDirections(posts []database.Post) []string {
	var directions []string
	for _, p := range posts {
		if p.PostType == nil {
			continue
		}
		switch *p.PostType {
		case database.TypeFeatureRequest, database.TypeNeed:
			title := strings.TrimSpace(p.Title)
			if title == "" {
				continue
			}
			directions = append(directions, "Address: "+title)
		}
		if len(directions) == MaxSnapshots {
			break
		}
	}
	if len(directions) == 0 {
		directions = append(directions, "Build a focused alternative that resolves the recurring complaints in this cluster")
	}
	return directions
}

func demandSignals(posts []database.Post, interest map[string]trends.Interest) map[string]any {
	totalScore, totalComments := 0, 0
	sources := map[string]int{}
	for _, p := range posts {
		totalScore += p.Score
		totalComments += p.NumComments
		sources[p.Source]++
	}

	signals := map[string]any{
		"post_count":     len(posts),
		"total_score":    totalScore,
		"total_comments": totalComments,
		"sources":        sources,
	}

	if len(interest) > 0 {
		trendData := make(map[string]any, len(interest))
		for keyword, ti := range interest {
			trendData[keyword] = map[string]any{
				"average_score":   ti.AverageScore,
				"direction":       ti.Direction,
				"related_queries": ti.RelatedQueries,
			}
		}
		signals["trends"] = trendData
	}
	return signals
}

// snapshots captures the highest-scored posts; GetClusterPosts already
// orders by score descending.
func snapshots(posts []database.Post) []database.SourceSnapshot {
	n := len(posts)
	if n > MaxSnapshots {
		n = MaxSnapshots
	}
	snaps := make([]database.SourceSnapshot, n)
	for i := 0; i < n; i++ {
		snaps[i] = database.SourceSnapshot{
			Title: posts[i].Title,
			URL:   posts[i].ExternalURL,
			Score: posts[i].Score,
		}
	}
	return snaps
}

func typeCounts(posts []database.Post) map[string]int {
	counts := map[string]int{}
	for _, p := range posts {
		if p.PostType != nil {
			counts[*p.PostType]++
		}
	}
	return counts
}

func dominantType(counts map[string]int) string {
	best, bestCount := "", 0
	for t, c := range counts {
		if c > bestCount || (c == bestCount && t < best) {
			best, bestCount = t, c
		}
	}
	return best
}
