// Package api exposes the read API and the internal pipeline trigger over
// HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/config"
	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/pipeline"
	"github.com/zzoohub/idea-fork-sub001/internal/trends"
)

// Runner is the pipeline surface the server needs.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	IsRunning() bool
	LastResult() *pipeline.Result
}

// TrendProvider enriches product detail responses with interest data.
// A nil provider disables enrichment.
type TrendProvider interface {
	GetInterest(keywords []string) map[string]trends.Interest
}

// Server wires the HTTP routes to storage and the pipeline.
type Server struct {
	cfg    *config.Config
	db     *database.DB
	runner Runner
	trends TrendProvider
}

// NewServer creates a server.
func NewServer(cfg *config.Config, db *database.DB, runner Runner, provider TrendProvider) *Server {
	return &Server{cfg: cfg, db: db, runner: runner, trends: provider}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/posts", s.listPosts)
		api.GET("/posts/:id", s.getPost)
		api.GET("/products", s.listProducts)
		api.GET("/products/:source/:slug", s.getProduct)
		api.GET("/briefs", s.listBriefs)
		api.GET("/briefs/:slug", s.getBrief)
		api.POST("/briefs/:id/ratings", s.rateBrief)
		api.GET("/tags", s.listTags)

		internal := api.Group("/internal")
		internal.POST("/run", s.triggerRun)
		internal.GET("/status", s.status)
	}

	return r
}

// Run starts the HTTP server on the configured port and blocks.
func (s *Server) Run() error {
	return s.Router().Run(fmt.Sprintf(":%d", s.cfg.Server.Port))
}
