package cluster

import (
	"math"
	"sort"
	"strings"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "can": true, "to": true,
	"of": true, "in": true, "for": true, "on": true, "with": true, "at": true,
	"by": true, "from": true, "as": true, "into": true, "and": true,
	"but": true, "or": true, "not": true, "so": true, "all": true,
	"any": true, "some": true, "such": true, "no": true, "than": true,
	"too": true, "very": true, "just": true, "how": true, "what": true,
	"which": true, "who": true, "this": true, "that": true, "these": true,
	"those": true, "it": true, "its": true, "there": true, "about": true,
	"out": true, "one": true, "also": true, "like": true, "get": true,
	"use": true, "you": true, "your": true, "i": true, "my": true,
	"me": true, "we": true, "im": true, "ive": true, "dont": true,
	"app": true, "apps": true, "tool": true, "anyone": true,
}

// vector is a sparse term-frequency vector over normalized tokens.
type vector map[string]float64

// postVector builds the similarity vector for one post. Tags are weighted
// above title tokens since they are already curated topic markers.
func postVector(p database.Post) vector {
	v := vector{}
	for _, tok := range tokenize(p.Title) {
		v[tok]++
	}
	if p.Body != nil {
		body := *p.Body
		if len(body) > 500 {
			body = body[:500]
		}
		for _, tok := range tokenize(body) {
			v[tok] += 0.5
		}
	}
	for _, tag := range p.Tags {
		v[tag.Slug] += 3
	}
	return v
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()-[]/")
		if len(word) > 2 && !stopWords[word] {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func cosine(a, b vector) float64 {
	var dot float64
	for tok, w := range a {
		if bw, ok := b[tok]; ok {
			dot += w * bw
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (norm(a) * norm(b))
}

func norm(v vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// groupBySimilarity assigns each post to the most similar existing group,
// or seeds a new group when nothing clears the threshold. Greedy single
// pass over centroid vectors; order-dependent but stable because posts
// arrive in a fixed database order.
func groupBySimilarity(posts []database.Post, threshold float64) [][]database.Post {
	var groups [][]database.Post
	var centroids []vector

	for _, post := range posts {
		v := postVector(post)

		best := -1
		bestSim := threshold
		for i, centroid := range centroids {
			if sim := cosine(v, centroid); sim >= bestSim {
				best, bestSim = i, sim
			}
		}

		if best == -1 {
			groups = append(groups, []database.Post{post})
			centroids = append(centroids, cloneVector(v))
			continue
		}
		groups[best] = append(groups[best], post)
		mergeInto(centroids[best], v)
	}
	return groups
}

func cloneVector(v vector) vector {
	out := make(vector, len(v))
	for tok, w := range v {
		out[tok] = w
	}
	return out
}

func mergeInto(dst, src vector) {
	for tok, w := range src {
		dst[tok] += w
	}
}

// describeGroup derives a human-readable label and the trend keywords for
// a group from its most frequent tokens.
func describeGroup(posts []database.Post) (label string, keywords []string) {
	counts := map[string]int{}
	for _, p := range posts {
		for _, tok := range tokenize(p.Title) {
			counts[tok]++
		}
		for _, tag := range p.Tags {
			counts[tag.Slug] += 2
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wordCount{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	var top []string
	for _, wc := range ranked {
		top = append(top, wc.word)
		if len(top) == 5 {
			break
		}
	}

	if len(top) == 0 {
		title := posts[0].Title
		if len(title) > 50 {
			title = title[:50]
		}
		return title, nil
	}

	labelWords := top
	if len(labelWords) > 3 {
		labelWords = labelWords[:3]
	}
	titled := make([]string, len(labelWords))
	for i, w := range labelWords {
		titled[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(titled, " "), top
}
