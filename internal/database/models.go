package database

// Post source values accepted by ingestion.
const (
	SourceReddit    = "reddit"
	SourceRSS       = "rss"
	SourceAppStore  = "app_store"
	SourcePlayStore = "play_store"
)

// Post type classification values.
const (
	TypeNeed               = "need"
	TypeComplaint          = "complaint"
	TypeFeatureRequest     = "feature_request"
	TypeAlternativeSeeking = "alternative_seeking"
	TypeComparison         = "comparison"
	TypeQuestion           = "question"
	TypeReview             = "review"
	TypeShowcase           = "showcase"
	TypeDiscussion         = "discussion"
	TypeOther              = "other"
)

// Brief status values.
const (
	BriefDraft     = "draft"
	BriefPublished = "published"
)

// ActionableTypes are the classifications eligible for clustering.
var ActionableTypes = []string{
	TypeNeed,
	TypeComplaint,
	TypeFeatureRequest,
	TypeAlternativeSeeking,
	TypeComparison,
	TypeQuestion,
	TypeReview,
}

// Post is a persisted signal post.
type Post struct {
	ID                int64
	Source            string
	ExternalID        string
	Subreddit         *string
	Title             string
	Body              *string
	ExternalURL       string
	ExternalCreatedAt string // RFC 3339
	Score             int
	NumComments       int
	Sentiment         *string
	PostType          *string
	ClusterID         *int64
	CreatedAt         *string
	UpdatedAt         *string
	Tags              []Tag
}

// Tag is attached to posts and products many-to-many.
type Tag struct {
	ID   int64
	Slug string
	Name string
}

// Product is an application or service that signals attach to.
type Product struct {
	ID            int64
	Source        string
	ExternalID    string
	Slug          string
	Name          string
	Description   *string
	Category      *string
	SignalCount   int
	TrendingScore float64
	CreatedAt     *string
	UpdatedAt     *string
	Tags          []Tag
}

// Cluster is a persisted group of related tagged posts.
type Cluster struct {
	ID            int64
	Label         string
	Summary       string
	Status        string
	TrendKeywords []string
	CreatedAt     *string
}

// SourceSnapshot is a representative post captured into a brief.
type SourceSnapshot struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

// Brief is a synthesized opportunity summary derived from one cluster.
type Brief struct {
	ID                 int64
	ClusterID          int64
	Slug               string
	Title              string
	Summary            string
	ProblemStatement   string
	Opportunity        string
	SolutionDirections []string
	DemandSignals      map[string]any
	SourceSnapshots    []SourceSnapshot
	SourcePostIDs      []int64
	Status             string
	SourceCount        int
	UpvoteCount        int
	DownvoteCount      int
	PublishedAt        *string
	CreatedAt          *string
}

// Rating is one session's up/down vote on a brief.
type Rating struct {
	BriefID    int64
	SessionID  string
	IsPositive bool
	Feedback   *string
	CreatedAt  *string
	UpdatedAt  *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalPosts      int
	TaggedPosts     int
	ClusteredPosts  int
	Clusters        int
	Briefs          int
	PublishedBriefs int
	Products        int
	Tags            int
}
