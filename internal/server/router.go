package server

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	appmw "github.com/khldd/eternal-hope/internal/app/middleware"
	"github.com/khldd/eternal-hope/internal/app/state"
	"github.com/khldd/eternal-hope/internal/pkg/config"
	"github.com/khldd/eternal-hope/internal/routes"
)

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, dbPool *pgxpool.Pool, session *state.Store, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(appmw.OTELGinMiddleware("eternal-hope"))
	r.Use(appmw.MetricsMiddleware())
	r.Use(appmw.CORSMiddleware())
	r.Use(appmw.SecurityMiddleware())

	routes.Setup(r, cfg, dbPool, session, logger)

	return r
}
