package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/storefront/internal/app"
)

// ctxUserIDKey is the gin context key the session user id is stored under.
const ctxUserIDKey = "userID"

// Auth resolves opaque session tokens (Redis-backed) to user ids.
type Auth struct {
	appCtx *app.AppContext
}

// NewAuth creates the auth middleware bound to the shared AppContext.
func NewAuth(appCtx *app.AppContext) *Auth {
	return &Auth{appCtx: appCtx}
}

// RequireAuth aborts with 401 unless the request carries a live session.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}
		userID, err := a.appCtx.RedisCache.GetSession(c.Request.Context(), token)
		if err != nil || userID == 0 {
			abortUnauthorized(c)
			return
		}
		c.Set(ctxUserIDKey, userID)
		c.Set("sessionToken", token)
		c.Next()
	}
}

// OptionalAuth resolves a session when one is present but never aborts;
// anonymous requests proceed with no user id set.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if userID, err := a.appCtx.RedisCache.GetSession(c.Request.Context(), token); err == nil && userID > 0 {
				c.Set(ctxUserIDKey, userID)
				c.Set("sessionToken", token)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}

// SessionToken returns the raw token the request authenticated with.
func SessionToken(c *gin.Context) string {
	if v, ok := c.Get("sessionToken"); ok {
		if t, ok := v.(string); ok {
			return t
		}
	}
	return ""
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": "missing or invalid session", "code": "unauthorized"},
	})
}
