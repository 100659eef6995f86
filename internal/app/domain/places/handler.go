package places

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/app/state"
	"github.com/khldd/eternal-hope/internal/pkg/storage"
)

type Handler struct {
	repo    Repository
	store   storage.ObjectStore
	session *state.Store
	logger  *zap.Logger
}

func NewHandler(repo Repository, store storage.ObjectStore, session *state.Store, logger *zap.Logger) *Handler {
	return &Handler{
		repo:    repo,
		store:   store,
		session: session,
		logger:  logger,
	}
}

// CreatePlace godoc
// @Summary Save a place to the journal
// @Description Persists a fully resolved place, defaulting status to planned
// @Tags places
// @Accept json
// @Produce json
// @Success 201 {object} models.Place
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places [post]
func (h *Handler) CreatePlace(c *gin.Context) {
	var req models.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Place name is required"})
		return
	}
	if !models.ValidAuthor(req.AddedBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "added_by must be khaled or amal"})
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPlanned
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place status"})
		return
	}

	place, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create place", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save place"})
		return
	}

	h.session.UpsertPlace(*place)
	c.JSON(http.StatusCreated, place)
}

// ListPlaces godoc
// @Summary List all saved places
// @Description Returns every place with its notes and tags, newest first. Supports status, tags and q query filters.
// @Tags places
// @Produce json
// @Success 200 {array} models.Place
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places [get]
func (h *Handler) ListPlaces(c *gin.Context) {
	filter := state.Filter{
		Status: models.PlaceStatus(c.Query("status")),
		Query:  c.Query("q"),
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place status"})
		return
	}
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}

	places, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list places", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load places"})
		return
	}

	// Refresh the session snapshot; the response applies this request's
	// filter without touching the session's own filter.
	h.session.SetPlaces(places)
	c.JSON(http.StatusOK, state.FilterPlaces(places, filter))
}

// UpdatePlace godoc
// @Summary Partially update a place
// @Description Applies the provided fields only; absent fields are untouched
// @Tags places
// @Accept json
// @Produce json
// @Param id path string true "Place ID"
// @Success 200 {object} models.Place
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places/{id} [patch]
func (h *Handler) UpdatePlace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place ID"})
		return
	}

	var upd models.PlaceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if upd.Status != nil && !models.ValidStatus(*upd.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place status"})
		return
	}

	place, err := h.repo.Update(c.Request.Context(), id, upd)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		h.logger.Error("Failed to update place", zap.String("place_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update place"})
		return
	}

	h.session.UpsertPlace(*place)
	c.JSON(http.StatusOK, place)
}

// DeletePlace godoc
// @Summary Delete a place
// @Description Removes the place row, its dependents via cascade, and its stored photos
// @Tags places
// @Produce json
// @Param id path string true "Place ID"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /places/{id} [delete]
func (h *Handler) DeletePlace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid place ID"})
		return
	}

	paths, err := h.repo.PhotoPaths(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("Failed to collect photo paths before delete",
			zap.String("place_id", id.String()), zap.Error(err))
		paths = nil
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		h.logger.Error("Failed to delete place", zap.String("place_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete place"})
		return
	}

	h.session.RemovePlace(id)

	// Storage cleanup is best effort; the row delete already succeeded.
	if len(paths) > 0 && h.store != nil {
		h.cleanupStorage(c.Request.Context(), id, paths)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) cleanupStorage(ctx context.Context, placeID uuid.UUID, paths []string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range paths {
		path := p
		g.Go(func() error {
			if err := h.store.Remove(ctx, path); err != nil {
				h.logger.Warn("Failed to remove stored photo",
					zap.String("place_id", placeID.String()),
					zap.String("path", path),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
