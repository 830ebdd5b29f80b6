package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

func (s *Server) listBriefs(c *gin.Context) {
	opts := database.BriefListOptions{
		SortColumn: sortColumn(c, briefSorts, "created_at"),
		Limit:      limitParam(c),
		Cursor:     cursorParam(c),
		Status:     c.DefaultQuery("status", database.BriefPublished),
		TagSlug:    c.Query("tag"),
	}

	briefs, page, err := s.db.ListBriefs(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing briefs failed"})
		return
	}

	views := make([]briefView, len(briefs))
	for i, b := range briefs {
		views[i] = toBriefView(b)
	}

	cacheFor(c, 60)
	c.JSON(http.StatusOK, gin.H{"data": views, "meta": listMeta(page)})
}

func (s *Server) getBrief(c *gin.Context) {
	brief, err := s.db.GetBriefBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading brief failed"})
		return
	}
	if brief == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
		return
	}

	cacheFor(c, 300)
	c.JSON(http.StatusOK, gin.H{"data": toBriefView(*brief)})
}

type ratingRequest struct {
	IsPositive *bool   `json:"is_positive" binding:"required"`
	Feedback   *string `json:"feedback"`
}

// rateBrief records one session's vote. Resubmitting from the same
// session replaces the earlier vote instead of stacking a new one.
func (s *Server) rateBrief(c *gin.Context) {
	briefID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brief id"})
		return
	}

	sessionID := s.sessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session identifier"})
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_positive is required"})
		return
	}

	brief, err := s.db.GetBriefByID(briefID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading brief failed"})
		return
	}
	if brief == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
		return
	}

	if err := s.db.UpsertRating(briefID, sessionID, *req.IsPositive, req.Feedback); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storing rating failed"})
		return
	}

	updated, err := s.db.GetBriefByID(briefID)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading brief failed"})
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"brief_id":       briefID,
			"is_positive":    *req.IsPositive,
			"upvote_count":   updated.UpvoteCount,
			"downvote_count": updated.DownvoteCount,
		},
	})
}

// sessionID resolves the rating identity from the session cookie, falling
// back to the X-Session-ID header for cookieless API clients.
func (s *Server) sessionID(c *gin.Context) string {
	id, err := c.Cookie(s.cfg.Server.SessionCookie)
	if err != nil || id == "" {
		id = c.GetHeader("X-Session-ID")
	}
	id = strings.TrimSpace(id)
	if len(id) > 255 {
		return ""
	}
	return id
}
