package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/pipeline"
)

// triggerRun starts a pipeline run synchronously. The caller must present
// the shared secret; an unset secret disables the endpoint entirely.
func (s *Server) triggerRun(c *gin.Context) {
	noStore(c)

	secret := s.cfg.RunSecret()
	provided := c.GetHeader("X-Run-Secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	result, err := s.runner.Run(c.Request.Context())
	if err == pipeline.ErrAlreadyRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline run failed"})
		return
	}

	// Partial failures still return the counts; 207 signals that some
	// stage errors were recorded.
	status := http.StatusOK
	if result.HasErrors() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"data": runView(result)})
}

func (s *Server) status(c *gin.Context) {
	noStore(c)

	stats, err := s.db.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading stats failed"})
		return
	}

	body := gin.H{
		"is_running": s.runner.IsRunning(),
		"stats": gin.H{
			"total_posts":      stats.TotalPosts,
			"tagged_posts":     stats.TaggedPosts,
			"clustered_posts":  stats.ClusteredPosts,
			"clusters":         stats.Clusters,
			"briefs":           stats.Briefs,
			"published_briefs": stats.PublishedBriefs,
			"products":         stats.Products,
			"tags":             stats.Tags,
		},
	}
	if last := s.runner.LastResult(); last != nil {
		body["last_run"] = runView(last)
	}
	c.JSON(http.StatusOK, body)
}

func runView(r *pipeline.Result) gin.H {
	errors := r.Errors
	if errors == nil {
		errors = []string{}
	}
	return gin.H{
		"posts_fetched":    r.PostsFetched,
		"posts_upserted":   r.PostsUpserted,
		"posts_tagged":     r.PostsTagged,
		"clusters_created": r.ClustersCreated,
		"briefs_generated": r.BriefsGenerated,
		"errors":           errors,
		"started_at":       r.StartedAt,
		"finished_at":      r.FinishedAt,
	}
}
