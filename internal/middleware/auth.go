package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
)

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
	ctxClaims   = "claims"
)

func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := tokens.Parse(c.Request.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenRevoked) {
				logger.WithError(err, "auth_middleware").Error("Token validation failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequirePermission rejects the request with 403 unless the token's role may perform op.
// Services re-check against the stored role.
func RequirePermission(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authorize(CurrentRole(c), op); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func CurrentRole(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ctxUserRole); ok {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}

func CurrentClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
