package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/musiclib/backend/internal/models"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxIsAdmin  = "isAdmin"
	ctxToken    = "accessToken"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Auth requires a valid bearer token and stores the user in the context.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Authorization header required"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid or expired token"})
			return
		}

		setUser(c, user, token)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user, token)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user, or nil for anonymous requests.
func CurrentUserID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// CurrentUsername returns the authenticated username, or "" for anonymous requests.
func CurrentUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

// AccessToken returns the bearer token of an authenticated request.
func AccessToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

func setUser(c *gin.Context, user *models.User, token string) {
	c.Set(ctxUserID, user.ID)
	c.Set(ctxUsername, user.Username)
	c.Set(ctxIsAdmin, user.IsAdmin)
	c.Set(ctxToken, token)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
