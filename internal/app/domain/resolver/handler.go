package resolver

import (
	"errors"
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

type extractRequest struct {
	URL string `json:"url"`
}

// ExtractPlace godoc
// @Summary Resolve a Google Maps URL into a place record
// @Description Parses the URL, queries the places provider and returns the canonical place
// @Tags places
// @Accept json
// @Produce json
// @Success 200 {object} models.ResolvedPlace
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places/extract [post]
func (h *Handler) ExtractPlace(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.URL == "" || !IsGoogleMapsURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Google Maps URL"})
		return
	}

	if m := metrics.Get(); m != nil {
		m.ExtractRequestsTotal.Add(c.Request.Context(), 1)
	}

	place, err := h.service.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Could not find place details"})
			return
		}
		h.logger.Error("Failed to extract place", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract place data"})
		return
	}

	c.JSON(http.StatusOK, place)
}
