package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/services"
)

// ErrorHandler turns the last error recorded with c.Error into a JSON
// response. Validation errors list every message; unknown errors are logged
// and reported as a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := services.StatusOf(err)

		var validation *services.ValidationError
		switch {
		case errors.As(err, &validation):
			c.JSON(status, gin.H{"message": validation.Messages})
		case status == http.StatusInternalServerError:
			userID := "unauthenticated"
			if actor, ok := ActorFrom(c); ok {
				userID = actor.ID.String()
			}
			body, _ := c.Get(ContextRequestBody)
			logger.LogError(err, userID, c.ClientIP(), c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"query": c.Request.URL.RawQuery,
				"body":  body,
			})
			c.JSON(status, gin.H{"message": "Internal server error"})
		default:
			c.JSON(status, gin.H{"error": err.Error()})
		}
	}
}

// Recovery converts a panic into an internal error handled by ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic recovered: %v", recovered))
		c.Abort()
	})
}
