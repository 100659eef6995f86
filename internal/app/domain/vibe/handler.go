package vibe

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/observability/metrics"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// AnalyzePlace godoc
// @Summary Generate the AI vibe structure for a place
// @Description Sends place metadata and reviews (plus notes on refresh) to the text-generation provider
// @Tags places
// @Accept json
// @Produce json
// @Success 200 {object} models.VibeAnalysis
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places/analyze [post]
func (h *Handler) AnalyzePlace(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.PlaceName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Place name is required"})
		return
	}

	if m := metrics.Get(); m != nil {
		m.AnalyzeRequestsTotal.Add(c.Request.Context(), 1)
	}

	analysis, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to analyze place",
			zap.String("place", req.PlaceName),
			zap.Bool("refresh", req.IsRefresh),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze place"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
