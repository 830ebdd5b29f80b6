package classify

import (
	"errors"
	"sort"
	"strings"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

// RuleClassifier is a deterministic keyword classifier. It trades recall
// for predictability: the pipeline never depends on an external model, so
// a run produces the same verdicts every time.
type RuleClassifier struct{}

// NewRuleClassifier creates the default classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var negativeWords = []string{
	"annoying", "awful", "bad", "broken", "bug", "buggy", "crash", "crashes",
	"disappointed", "doesn't work", "fail", "frustrated", "frustrating",
	"hate", "horrible", "refund", "slow", "stopped working", "terrible",
	"unusable", "useless", "waste", "worst",
}

var positiveWords = []string{
	"amazing", "awesome", "best", "excellent", "fantastic", "great",
	"helpful", "love", "perfect", "recommend", "smooth", "solid", "works well",
}

// tagKeywords maps a tag slug to the phrases that imply it.
var tagKeywords = map[string][]string{
	"ai":            {" ai ", "chatgpt", "gpt", "llm", "machine learning"},
	"analytics":     {"analytics", "dashboard", "metrics", "report"},
	"automation":    {"automate", "automation", "workflow"},
	"collaboration": {"collaborate", "collaboration", "team", "workspace"},
	"integrations":  {"api", "integrate", "integration", "webhook", "zapier"},
	"mobile":        {"android", "ios", "iphone", "mobile app"},
	"notes":         {"note-taking", "notes app", "notetaking"},
	"performance":   {"laggy", "latency", "performance", "slow"},
	"pricing":       {"expensive", "free tier", "price", "pricing", "subscription"},
	"privacy":       {"gdpr", "privacy", "tracking"},
	"search":        {"full-text", "search"},
	"sync":          {"offline", "sync", "syncing"},
	"ui":            {"dark mode", "design", "interface", "ui", "ux"},
}

// Classify derives the post type, sentiment, and tags from the title and
// body text alone.
func (c *RuleClassifier) Classify(post database.Post) (Classification, error) {
	if strings.TrimSpace(post.Title) == "" {
		return Classification{}, errors.New("post has no title")
	}

	text := strings.ToLower(post.Title)
	if post.Body != nil {
		text += " " + strings.ToLower(*post.Body)
	}

	sentiment := scoreSentiment(text, post)
	return Classification{
		PostType:  detectType(post, strings.ToLower(post.Title), text, sentiment),
		Sentiment: sentiment,
		Tags:      detectTags(text),
	}, nil
}

// detectType applies the rules in priority order; the first match wins.
func detectType(post database.Post, title, text, sentiment string) string {
	if post.Source == database.SourceAppStore || post.Source == database.SourcePlayStore {
		return database.TypeReview
	}

	switch {
	case containsAny(text, "alternative to", "alternatives to", "replacement for", "switch away from", "instead of"):
		return database.TypeAlternativeSeeking
	case containsAny(title, " vs ", " vs. ", " versus ") || containsAny(text, "compared to", "which is better"):
		return database.TypeComparison
	case containsAny(text, "feature request", "please add", "i wish", "wish it had", "would be great if", "would love to see"):
		return database.TypeFeatureRequest
	case containsAny(text, "i need", "looking for a", "looking for an", "is there a tool", "is there an app", "any recommendations", "recommend a"):
		return database.TypeNeed
	case sentiment == "negative" && containsAny(text, negativeWords...):
		return database.TypeComplaint
	case containsAny(text, "i built", "i made", "i created", "just launched", "show hn", "side project"):
		return database.TypeShowcase
	case strings.HasSuffix(strings.TrimSpace(title), "?") || startsWithAny(title, "how ", "what ", "why ", "when ", "which ", "who ", "can ", "does ", "is there"):
		return database.TypeQuestion
	case len(strings.Fields(title)) < 3:
		return database.TypeOther
	default:
		return database.TypeDiscussion
	}
}

func scoreSentiment(text string, post database.Post) string {
	// Store reviews carry an explicit star rating; trust it over the
	// lexicon when it is decisive.
	if post.Source == database.SourceAppStore || post.Source == database.SourcePlayStore {
		switch {
		case post.Score >= 4:
			return "positive"
		case post.Score > 0 && post.Score <= 2:
			return "negative"
		}
	}

	neg := countMatches(text, negativeWords)
	pos := countMatches(text, positiveWords)
	switch {
	case neg > pos:
		return "negative"
	case pos > neg:
		return "positive"
	default:
		return "neutral"
	}
}

func detectTags(text string) []string {
	var tags []string
	for slug, phrases := range tagKeywords {
		if containsAny(text, phrases...) {
			tags = append(tags, slug)
		}
	}
	sort.Strings(tags)
	return tags
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func startsWithAny(text string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
