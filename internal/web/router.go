// Package web exposes a read-only HTTP surface over a retrieval.Engine
// for deployments that want query access without the CLI.
package web

import (
	"github.com/axiomabsolute/firms-go/internal/metrics"
	"github.com/axiomabsolute/firms-go/internal/retrieval"
	"github.com/axiomabsolute/firms-go/internal/web/handlers"
	"github.com/axiomabsolute/firms-go/internal/web/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the health, query and info endpoints behind the
// Sentry/recovery/request-tracking middleware stack.
func NewRouter(engine *retrieval.Engine, metricsClient *metrics.Client) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.RecoverWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.RequestTracking())

	router.GET("/healthz", handlers.NewHealthHandler(engine).HealthCheck)

	queryHandler, err := handlers.NewQueryHandler(engine, metricsClient)
	if err != nil {
		return nil, err
	}
	router.POST("/query", queryHandler.Query)

	infoHandler := handlers.NewInfoHandler(engine)
	router.GET("/info", infoHandler.Info)

	return router, nil
}
