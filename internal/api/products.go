package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zzoohub/idea-fork-sub001/internal/database"
)

func (s *Server) listProducts(c *gin.Context) {
	opts := database.ProductListOptions{
		SortColumn: sortColumn(c, productSorts, "trending_score"),
		Limit:      limitParam(c),
		Cursor:     cursorParam(c),
		Source:     c.Query("source"),
		Category:   c.Query("category"),
	}

	products, page, err := s.db.ListProducts(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing products failed"})
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}

	cacheFor(c, 60)
	c.JSON(http.StatusOK, gin.H{"data": views, "meta": listMeta(page)})
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.db.GetProduct(c.Param("source"), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading product failed"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	view := toProductView(*product)
	if s.trends != nil {
		// Fail-soft: a provider miss just omits the trend block.
		if interest, ok := s.trends.GetInterest([]string{product.Name})[product.Name]; ok {
			view.Trend = &trendView{
				AverageScore: interest.AverageScore,
				Direction:    interest.Direction,
			}
		}
	}

	cacheFor(c, 300)
	c.JSON(http.StatusOK, gin.H{"data": view})
}
