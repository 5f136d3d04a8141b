package server

import (
	"net/http"
	"time"

	"github.com/Yates-Labs/seance/internal/archive"
	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	Version        string    `json:"version"`
	ArchiveEntries int       `json:"archive_entries"`
	LLM            string    `json:"llm"`
}

type HealthHandler struct {
	serviceName string
	version     string
	searcher    *archive.Searcher
	historian   *narrative.Historian
}

func NewHealthHandler(serviceName, version string, searcher *archive.Searcher, historian *narrative.Historian) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		searcher:    searcher,
		historian:   historian,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	entries := 0
	if h.searcher != nil {
		entries = len(h.searcher.Entries())
	}

	llm := "offline"
	if h.historian != nil && h.historian.Online() {
		llm = "online"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC(),
		Service:        h.serviceName,
		Version:        h.version,
		ArchiveEntries: entries,
		LLM:            llm,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
