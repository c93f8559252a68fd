package handlers

import (
	"net/http"

	"github.com/axiomabsolute/firms-go/internal/retrieval"
	"github.com/gin-gonic/gin"
)

// InfoHandler reports corpus-level statistics.
type InfoHandler struct {
	engine *retrieval.Engine
}

// NewInfoHandler builds an InfoHandler over engine.
func NewInfoHandler(engine *retrieval.Engine) *InfoHandler {
	return &InfoHandler{engine: engine}
}

// Info returns the current corpus size.
func (h *InfoHandler) Info(c *gin.Context) {
	size, err := h.engine.CorpusSize()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pieces_indexed": size})
}
