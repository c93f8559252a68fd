package handlers

import (
	"net/http"
	"time"

	"github.com/axiomabsolute/firms-go/internal/corpus"
	"github.com/axiomabsolute/firms-go/internal/logger"
	"github.com/axiomabsolute/firms-go/internal/metrics"
	"github.com/axiomabsolute/firms-go/internal/notemodel"
	"github.com/axiomabsolute/firms-go/internal/retrieval"
	"github.com/gin-gonic/gin"
)

// QueryHandler parses a tiny-notation query and returns each registered
// grader's ranked results.
type QueryHandler struct {
	engine  *retrieval.Engine
	metrics *metrics.Client
	parser  *corpus.TinyNotationParser
}

// NewQueryHandler builds a QueryHandler over engine, recording latency
// to metricsClient.
func NewQueryHandler(engine *retrieval.Engine, metricsClient *metrics.Client) (*QueryHandler, error) {
	parser, err := corpus.NewTinyNotationParser()
	if err != nil {
		return nil, err
	}
	return &QueryHandler{engine: engine, metrics: metricsClient, parser: parser}, nil
}

// queryRequest is the POST /query body: tiny notation text to match
// against the index.
type queryRequest struct {
	Text string `json:"text" binding:"required"`
}

type gradeResult struct {
	PieceID   uint    `json:"piece_id"`
	PiecePath string  `json:"piece_path"`
	PieceName string  `json:"piece_name"`
	Grade     float64 `json:"grade"`
}

// Query parses the request body as tiny notation and runs it against
// the engine, returning ranked results per grader.
func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	piece, err := h.parser.ParseTinyNotation(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	results, err := h.engine.Query(c.Request.Context(), flattenParts(piece))
	duration := time.Since(start)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make(map[string][]gradeResult, len(results))
	for graderName, graded := range results {
		rows := make([]gradeResult, len(graded))
		for i, r := range graded {
			rows[i] = gradeResult{PieceID: r.PieceID, PiecePath: r.PiecePath, PieceName: r.PieceName, Grade: r.Grade}
		}
		response[graderName] = rows
		if h.metrics != nil {
			h.metrics.RecordQuery(c.Request.Context(), graderName, len(rows), duration)
		}
	}

	logger.Info("http query", logger.Fields{"duration_ms": duration.Milliseconds(), "grader_count": len(response)})
	c.JSON(http.StatusOK, response)
}

// flattenParts concatenates every part's notes into a single stream,
// the same shape the CLI's query verbs hand to Engine.Query.
func flattenParts(piece *notemodel.Piece) []*notemodel.GeneralNote {
	var notes []*notemodel.GeneralNote
	for _, part := range piece.Parts {
		notes = append(notes, part.Notes...)
	}
	return notes
}
