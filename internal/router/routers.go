package router

import (
	"github.com/gin-gonic/gin"

	"github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/handler"
	"github.com/rukshanyomal11/farm-management-system/internal/middleware"
)

type Router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	adminHandler   *handler.AdminHandler
	healthHandler  *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	profile *handler.ProfileHandler,
	admin *handler.AdminHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		profileHandler: profile,
		adminHandler:   admin,
		healthHandler:  health,
		jwtMw:          jwtMw,
		Config:         cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ContextMiddleware("api"))

	router.GET("/health", r.healthHandler.HealthCheck)
	router.GET("/health/live", r.healthHandler.BasicHealth)

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			r.authRoutes(v1)
			r.profileRoutes(v1)
			r.adminRoutes(v1)
		}
	}

	return router
}
