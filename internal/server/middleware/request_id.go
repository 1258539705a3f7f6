package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DavidSemke/TechstackApi/internal/log"
)

const requestIDHeader = "X-Request-Id"

// WithRequestID assigns each request an identifier, echoes it in the
// response headers, and stores it in the context so every log entry for
// the request carries it.
func WithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(requestIDHeader, requestID)

		ctx := log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
