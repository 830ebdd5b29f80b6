package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

func (s *Server) listPosts(c *gin.Context) {
	opts := database.PostListOptions{
		SortColumn: sortColumn(c, postSorts, "external_created_at"),
		Limit:      limitParam(c),
		Cursor:     cursorParam(c),
		Source:     c.Query("source"),
		Subreddit:  c.Query("subreddit"),
		Sentiment:  c.Query("sentiment"),
		PostType:   c.Query("post_type"),
		TagSlug:    c.Query("tag"),
		Search:     c.Query("q"),
	}

	posts, page, err := s.db.ListPosts(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing posts failed"})
		return
	}

	views := make([]postView, len(posts))
	for i, p := range posts {
		views[i] = toPostView(p)
	}

	cacheFor(c, 60)
	c.JSON(http.StatusOK, gin.H{"data": views, "meta": listMeta(page)})
}

func (s *Server) getPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := s.db.GetPostByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading post failed"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	cacheFor(c, 300)
	c.JSON(http.StatusOK, gin.H{"data": toPostView(*post)})
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.db.GetAllTags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing tags failed"})
		return
	}

	cacheFor(c, 3600)
	c.JSON(http.StatusOK, gin.H{"data": toTagViews(tags)})
}
