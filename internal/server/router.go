package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/buildshare/blueprint-backend/internal/handlers"
	"github.com/buildshare/blueprint-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AllowOrigins     []string
	AuthHandler      *handlers.AuthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	BlueprintHandler *handlers.BlueprintHandler
	CommentHandler   *handlers.CommentHandler
	ClaimHandler     *handlers.ClaimHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Every /api route runs Identify: bearer tokens are optional, the session
	// cookie is not.
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.Identify())
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)

		api.POST("/blueprints", cfg.BlueprintHandler.Create)
		api.GET("/blueprints/:slug", cfg.BlueprintHandler.Get)
		api.GET("/blueprints/:slug/content", cfg.BlueprintHandler.GetContent)
		api.DELETE("/blueprints/id/:id", cfg.BlueprintHandler.Delete)

		api.POST("/blueprints/id/:id/comments", cfg.CommentHandler.Add)
		api.GET("/blueprints/id/:id/comments", cfg.CommentHandler.List)

		api.GET("/claimable", cfg.ClaimHandler.ListClaimable)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		protected.POST("/blueprints/id/:id/versions", cfg.BlueprintHandler.AddVersion)
		protected.DELETE("/blueprints/id/:id/versions/:version", cfg.BlueprintHandler.DeleteVersion)
		protected.POST("/blueprints/id/:id/claim", cfg.ClaimHandler.Claim)
		protected.DELETE("/comments/:id", cfg.CommentHandler.Delete)
	}

	return router
}
