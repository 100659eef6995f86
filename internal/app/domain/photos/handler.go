package photos

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/pkg/storage"
)

const maxPhotoSize = 15 << 20 // 15 MiB

type Handler struct {
	repo   Repository
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewHandler(repo Repository, store storage.ObjectStore, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// UploadPhoto godoc
// @Summary Upload a photo for a place
// @Description Accepts multipart form data with file, place_id, uploaded_by and optional caption
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.Photo
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /photos [post]
func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Photo storage is not configured"})
		return
	}

	placeID, err := uuid.Parse(c.PostForm("place_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place_id"})
		return
	}
	uploadedBy := models.Author(c.PostForm("uploaded_by"))
	if !models.ValidAuthor(uploadedBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded_by must be khaled or amal"})
		return
	}
	var caption *string
	if v := c.PostForm("caption"); v != "" {
		caption = &v
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is too large"})
		return
	}

	storagePath := buildStoragePath(placeID, fileHeader.Filename)
	if err := h.uploadFile(c.Request.Context(), fileHeader, storagePath); err != nil {
		h.logger.Error("Failed to upload photo to storage",
			zap.String("place_id", placeID.String()),
			zap.String("path", storagePath),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	photo, err := h.repo.Create(c.Request.Context(), placeID, storagePath, caption, uploadedBy)
	if err != nil {
		// The object is already in storage; remove it so nothing orphans.
		h.removeUploaded(storagePath)
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		h.logger.Error("Failed to record photo",
			zap.String("place_id", placeID.String()),
			zap.String("path", storagePath),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}

	photo.PublicURL = h.store.PublicURL(photo.StoragePath)
	c.JSON(http.StatusCreated, photo)
}

func (h *Handler) uploadFile(ctx context.Context, fileHeader *multipart.FileHeader, storagePath string) error {
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return h.store.Upload(ctx, storagePath, contentType, file)
}

func (h *Handler) removeUploaded(storagePath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.store.Remove(ctx, storagePath); err != nil {
		h.logger.Warn("Failed to clean up orphaned storage object",
			zap.String("path", storagePath), zap.Error(err))
	}
}

// buildStoragePath namespaces objects by place and keeps names unique
// without consulting storage.
func buildStoragePath(placeID uuid.UUID, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%d-%d.%s", placeID, time.Now().UnixMilli(), rand.Intn(1_000_000), ext)
}
