package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/requestdata"
	"github.com/buildshare/blueprint-backend/internal/services"
)

// SessionCookie keys the browser session used for the anonymous claimable
// list. Session mechanics beyond the id itself live outside this service.
const SessionCookie = "bp_session"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// Identify resolves the caller without requiring authentication: a valid
// bearer token yields a user id, anything else stays anonymous. It also
// ensures a session cookie so anonymous creations can be claimed later.
func (am *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &requestdata.RequestData{}

		if tokenString := extractToken(c); tokenString != "" {
			userID, err := am.authService.ParseToken(tokenString)
			if err != nil {
				am.log.Debug("Ignoring invalid bearer token", "error", err)
			} else {
				rd.UserID = userID
			}
		}

		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(SessionCookie, sessionID, 30*24*3600, "/", "", false, true)
		}
		rd.SessionID = sessionID

		ctx := requestdata.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests whose bearer token does not resolve to a user.
// Runs after Identify.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
