package handlers

import (
	"net/http"

	"github.com/axiomabsolute/firms-go/internal/retrieval"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the engine's index is reachable.
type HealthHandler struct {
	engine *retrieval.Engine
}

// NewHealthHandler builds a HealthHandler over engine.
func NewHealthHandler(engine *retrieval.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthCheck confirms the index responds to a corpus size query.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	size, err := h.engine.CorpusSize()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"index":  gin.H{"status": "error: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"index":  gin.H{"status": "healthy", "pieces": size},
	})
}
