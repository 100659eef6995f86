package notes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// CreateNote godoc
// @Summary Add a personal note to a place
// @Tags notes
// @Accept json
// @Produce json
// @Success 201 {object} models.Note
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /notes [post]
func (h *Handler) CreateNote(c *gin.Context) {
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.PlaceID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id is required"})
		return
	}
	if !models.ValidAuthor(req.Author) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author must be khaled or amal"})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note content is required"})
		return
	}

	note, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		h.logger.Error("Failed to create note",
			zap.String("place_id", req.PlaceID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}
