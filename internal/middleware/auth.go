package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/backend/internal/auth"
	apperrors "taskflow/backend/internal/errors"
)

const subjectKey = "user_id"

// RequireAuth rejects requests that do not carry a valid bearer token and
// stores the verified subject id on the context for downstream handlers.
// A missing token is unauthorized; a token that fails verification is
// forbidden.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		bearer, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || bearer == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "access token required",
			})
			return
		}

		claims, err := tokens.Verify(bearer)
		if err != nil {
			if errors.Is(err, apperrors.ErrNoSigningSecret) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: apperrors.ErrNoSigningSecret.Error(),
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, apperrors.ErrorResponse{
				Error: "invalid or expired token",
			})
			return
		}

		c.Set(subjectKey, claims.UserID)
		c.Next()
	}
}

// Subject returns the authenticated user id set by RequireAuth.
func Subject(c *gin.Context) (uint, bool) {
	v, exists := c.Get(subjectKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
