package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/cursor"
	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Sort parameter names map to whitelisted columns; anything else falls
// back to the first entry. Column names never come from the request.
var (
	postSorts = map[string]string{
		"recent":   "external_created_at",
		"score":    "score",
		"comments": "num_comments",
	}
	productSorts = map[string]string{
		"trending": "trending_score",
		"signals":  "signal_count",
		"recent":   "created_at",
	}
	briefSorts = map[string]string{
		"recent":  "created_at",
		"upvotes": "upvote_count",
	}
)

func sortColumn(c *gin.Context, sorts map[string]string, fallback string) string {
	if col, ok := sorts[c.Query("sort")]; ok {
		return col
	}
	return fallback
}

// limitParam clamps the page size into [1, maxLimit]. Unparseable values
// take the default rather than erroring, in line with the tolerant cursor
// handling.
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		return defaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func cursorParam(c *gin.Context) map[string]any {
	return cursor.Decode(c.Query("cursor"))
}

func listMeta(page database.Page) gin.H {
	// next_cursor is always present, null on the last page, so clients
	// can rely on the envelope shape.
	var next any
	if page.HasNext {
		next = page.NextCursor
	}
	return gin.H{"has_next": page.HasNext, "next_cursor": next}
}

func cacheFor(c *gin.Context, seconds int) {
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(seconds))
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "private, no-store")
}
