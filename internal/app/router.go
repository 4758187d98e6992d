package app

import (
	"github.com/gin-gonic/gin"

	"github.com/buildshare/blueprint-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:      cfg.ServiceName,
		AllowOrigins:     cfg.AllowOrigins,
		AuthHandler:      handlerset.Auth,
		AuthMiddleware:   mw.Auth,
		BlueprintHandler: handlerset.Blueprint,
		CommentHandler:   handlerset.Comment,
		ClaimHandler:     handlerset.Claim,
	})
}
