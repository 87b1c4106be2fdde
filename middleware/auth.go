package middleware

import (
	"net/http"
	"strings"

	"m3allem/models"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// JWTAuth requires a valid Bearer token and stores its subject and role in the context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Next()
	}
}

// OptionalJWTAuth identifies the caller when a valid token is sent and lets anonymous
// requests through.
func OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c); ok {
			c.Set(ContextUserID, claims.Subject)
			c.Set(ContextRole, models.Role(claims.Role))
		}
		c.Next()
	}
}

// RequireRole must run after JWTAuth. Admins pass every role check.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Insufficient permissions"})
	}
}

// UserID returns the authenticated user, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Role(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextRole); ok {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}

func bearerClaims(c *gin.Context) (utils.Claims, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return utils.Claims{}, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return utils.Claims{}, false
	}
	claims, err := utils.ParseClaims(token)
	if err != nil {
		return utils.Claims{}, false
	}
	return claims, true
}
