package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Yates-Labs/seance/internal/narrative"
	"github.com/Yates-Labs/seance/internal/orchestrator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error and status texts returned to the front end.
const (
	NoQueryMessage       = "No query provided to the medium."
	QueryTooShortMessage = "Query too short"
	LearnOfflineMessage  = "The educational archive is currently offline. Please ensure the Gemini API is configured."
	LearnFailedMessage   = "Failed to generate response"
	MalformedBodyMessage = "Malformed JSON body."

	minLearnQueryLength = 4
)

type seanceRequest struct {
	UserQuery string `json:"user_query"`
}

type seanceResponse struct {
	CrypticResponse string `json:"cryptic_response"`
	Interpretation  string `json:"interpretation"`
}

type learnRequest struct {
	Query string `json:"query"`
}

type learnResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SeanceHandler serves POST /api/seance.
type SeanceHandler struct {
	pipeline *orchestrator.Pipeline
	logger   *zap.Logger
}

func NewSeanceHandler(pipeline *orchestrator.Pipeline, logger *zap.Logger) *SeanceHandler {
	return &SeanceHandler{pipeline: pipeline, logger: logger}
}

func (h *SeanceHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/seance", h.Seance)
}

func (h *SeanceHandler) Seance(c *gin.Context) {
	var req seanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: MalformedBodyMessage})
		return
	}

	reading, err := h.pipeline.Seance(c.Request.Context(), req.UserQuery)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: NoQueryMessage})
			return
		}
		// Only a cancelled request gets here
		h.logger.Warn("séance abandoned",
			zap.String("request_id", GetRequestID(c.Request.Context())),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: narrative.UnknownFailureReply})
		return
	}

	h.logger.Debug("séance complete",
		zap.String("request_id", GetRequestID(c.Request.Context())),
		zap.String("keyword", reading.Keyword))

	c.JSON(http.StatusOK, seanceResponse{
		CrypticResponse: reading.CrypticResponse,
		Interpretation:  reading.Interpretation,
	})
}

// LearnHandler serves POST /api/learn.
type LearnHandler struct {
	historian *narrative.Historian
	logger    *zap.Logger
}

func NewLearnHandler(historian *narrative.Historian, logger *zap.Logger) *LearnHandler {
	return &LearnHandler{historian: historian, logger: logger}
}

func (h *LearnHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/learn", h.Learn)
}

func (h *LearnHandler) Learn(c *gin.Context) {
	var req learnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: MalformedBodyMessage})
		return
	}

	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minLearnQueryLength {
		c.JSON(http.StatusBadRequest, errorResponse{Error: QueryTooShortMessage})
		return
	}

	if h.historian == nil || !h.historian.Online() {
		c.JSON(http.StatusServiceUnavailable, learnResponse{Response: LearnOfflineMessage})
		return
	}

	answer, err := h.historian.Answer(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("learn request failed",
			zap.String("request_id", GetRequestID(c.Request.Context())),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: LearnFailedMessage})
		return
	}

	c.JSON(http.StatusOK, learnResponse{Response: answer})
}
