// Package routes wires repositories, provider clients and handlers onto
// the gin engine.
package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/domain/notes"
	"github.com/khldd/eternal-hope/internal/app/domain/photos"
	"github.com/khldd/eternal-hope/internal/app/domain/places"
	"github.com/khldd/eternal-hope/internal/app/domain/resolver"
	"github.com/khldd/eternal-hope/internal/app/domain/tags"
	"github.com/khldd/eternal-hope/internal/app/domain/vibe"
	"github.com/khldd/eternal-hope/internal/app/state"
	"github.com/khldd/eternal-hope/internal/pkg/config"
	"github.com/khldd/eternal-hope/internal/pkg/storage"
)

// Setup mounts every API route. Provider-backed services degrade
// gracefully when their keys are absent instead of blocking startup.
func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, session *state.Store, logger *zap.Logger) {
	var objectStore storage.ObjectStore
	if cfg.Storage.URL != "" {
		objectStore = storage.NewClient(cfg.Storage, logger)
	} else {
		logger.Warn("STORAGE_URL not set, photo uploads are disabled")
	}

	var placesAPI *resolver.PlacesClient
	if cfg.MapsAPIKey != "" {
		placesAPI = resolver.NewPlacesClient(cfg.MapsAPIKey, logger)
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, extraction serves sample place data")
	}
	resolverService := resolver.NewServiceFromClient(placesAPI, logger)
	resolverHandler := resolver.NewHandler(resolverService, logger)

	vibeService := vibe.NewServiceFromKey(context.Background(), cfg.GeminiAPIKey, logger)
	vibeHandler := vibe.NewHandler(vibeService, logger)

	placeRepo := places.NewRepository(dbPool, logger)
	placeHandler := places.NewHandler(placeRepo, objectStore, session, logger)

	noteRepo := notes.NewRepository(dbPool, logger)
	noteHandler := notes.NewHandler(noteRepo, logger)

	photoRepo := photos.NewRepository(dbPool, logger)
	photoHandler := photos.NewHandler(photoRepo, objectStore, logger)

	tagRepo := tags.NewRepository(dbPool, logger)
	tagHandler := tags.NewHandler(tagRepo, logger)

	r.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/places", placeHandler.CreatePlace)
	r.GET("/places", placeHandler.ListPlaces)
	r.PATCH("/places/:id", placeHandler.UpdatePlace)
	r.DELETE("/places/:id", placeHandler.DeletePlace)
	r.POST("/places/extract", resolverHandler.ExtractPlace)
	r.POST("/places/analyze", vibeHandler.AnalyzePlace)

	r.POST("/notes", noteHandler.CreateNote)
	r.POST("/photos", photoHandler.UploadPhoto)
	r.GET("/tags", tagHandler.GetTags)
}
