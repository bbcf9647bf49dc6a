package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/logger"
)

const (
	ContextRequestBody = "request_body"
	maxLoggedBody      = 4 << 10
)

var redactedFields = []string{"password", "new_password", "refresh_token", "otp"}

// RequestLogger keeps a copy of JSON bodies for error reports and writes an
// access log line once the request has been handled.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				logger.Warnf("read request body: %v", err)
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			c.Set(ContextRequestBody, loggableBody(raw))
		}

		c.Next()

		userID := "unauthenticated"
		if actor, ok := ActorFrom(c); ok {
			userID = actor.ID.String()
		}
		logger.LogAccessRequest(c, start, userID)
	}
}

// loggableBody truncates the body and blanks out credentials.
func loggableBody(raw []byte) string {
	body := string(raw)
	for _, field := range redactedFields {
		if strings.Contains(body, `"`+field+`"`) {
			return "[redacted]"
		}
	}
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody] + "..."
	}
	return body
}
