// Package server exposes the séance over HTTP with gin.
package server

import (
	"slices"
	"time"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/Yates-Labs/seance/internal/orchestrator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the router needs. It is built once at startup.
type Deps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	Pipeline  *orchestrator.Pipeline
	Historian *narrative.Historian
	Searcher  *archive.Searcher
	Logger    *zap.Logger
}

// SetGinMode switches gin to release mode outside development.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// BuildRouter wires middleware, health checks and the API routes.
func BuildRouter(dep Deps) *gin.Engine {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware(logger))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := NewHealthHandler(dep.ServiceName, dep.Version, dep.Searcher, dep.Historian)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	NewSeanceHandler(dep.Pipeline, logger).RegisterRoutes(api)
	NewLearnHandler(dep.Historian, logger).RegisterRoutes(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
