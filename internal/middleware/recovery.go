package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "taskflow/backend/internal/errors"
)

// RecoveryWithLog converts handler panics into a 500 response and logs
// the stack trace instead of killing the process.
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v\n%s", r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
