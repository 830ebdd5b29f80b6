package api

import "github.com/zzoohub/idea-fork-sub001/internal/database"

// Response views decouple the wire shape from the storage structs so
// schema changes do not silently leak into the API.

type tagView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type postView struct {
	ID                int64     `json:"id"`
	Source            string    `json:"source"`
	Subreddit         *string   `json:"subreddit,omitempty"`
	Title             string    `json:"title"`
	Body              *string   `json:"body,omitempty"`
	ExternalURL       string    `json:"external_url"`
	ExternalCreatedAt string    `json:"external_created_at"`
	Score             int       `json:"score"`
	NumComments       int       `json:"num_comments"`
	Sentiment         *string   `json:"sentiment"`
	PostType          *string   `json:"post_type"`
	ClusterID         *int64    `json:"cluster_id"`
	Tags              []tagView `json:"tags"`
}

type productView struct {
	ID            int64      `json:"id"`
	Source        string     `json:"source"`
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	SignalCount   int        `json:"signal_count"`
	TrendingScore float64    `json:"trending_score"`
	Trend         *trendView `json:"trend,omitempty"`
	Tags          []tagView  `json:"tags"`
}

type trendView struct {
	AverageScore float64 `json:"average_score"`
	Direction    string  `json:"direction"`
}

type briefView struct {
	ID                 int64                     `json:"id"`
	Slug               string                    `json:"slug"`
	Title              string                    `json:"title"`
	Summary            string                    `json:"summary"`
	ProblemStatement   string                    `json:"problem_statement"`
	Opportunity        string                    `json:"opportunity"`
	SolutionDirections []string                  `json:"solution_directions"`
	DemandSignals      map[string]any            `json:"demand_signals"`
	SourceSnapshots    []database.SourceSnapshot `json:"source_snapshots"`
	Status             string                    `json:"status"`
	SourceCount        int                       `json:"source_count"`
	UpvoteCount        int                       `json:"upvote_count"`
	DownvoteCount      int                       `json:"downvote_count"`
	PublishedAt        *string                   `json:"published_at"`
	CreatedAt          *string                   `json:"created_at"`
}

func toTagViews(tags []database.Tag) []tagView {
	views := make([]tagView, len(tags))
	for i, t := range tags {
		views[i] = tagView{Slug: t.Slug, Name: t.Name}
	}
	return views
}

func toPostView(p database.Post) postView {
	return postView{
		ID:                p.ID,
		Source:            p.Source,
		Subreddit:         p.Subreddit,
		Title:             p.Title,
		Body:              p.Body,
		ExternalURL:       p.ExternalURL,
		ExternalCreatedAt: p.ExternalCreatedAt,
		Score:             p.Score,
		NumComments:       p.NumComments,
		Sentiment:         p.Sentiment,
		PostType:          p.PostType,
		ClusterID:         p.ClusterID,
		Tags:              toTagViews(p.Tags),
	}
}

func toProductView(p database.Product) productView {
	return productView{
		ID:            p.ID,
		Source:        p.Source,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		SignalCount:   p.SignalCount,
		TrendingScore: p.TrendingScore,
		Tags:          toTagViews(p.Tags),
	}
}

func toBriefView(b database.Brief) briefView {
	return briefView{
		ID:                 b.ID,
		Slug:               b.Slug,
		Title:              b.Title,
		Summary:            b.Summary,
		ProblemStatement:   b.ProblemStatement,
		Opportunity:        b.Opportunity,
		SolutionDirections: b.SolutionDirections,
		DemandSignals:      b.DemandSignals,
		SourceSnapshots:    b.SourceSnapshots,
		Status:             b.Status,
		SourceCount:        b.SourceCount,
		UpvoteCount:        b.UpvoteCount,
		DownvoteCount:      b.DownvoteCount,
		PublishedAt:        b.PublishedAt,
		CreatedAt:          b.CreatedAt,
	}
}
