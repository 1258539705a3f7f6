package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/log"
)

// AccessLog returns a middleware that logs failed requests: status code,
// method, path, latency, caller identity, and collected errors.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()

		var errMsgs []string
		for _, e := range c.Errors {
			errMsgs = append(errMsgs, e.Error())
		}

		status := c.Writer.Status()
		if status < 400 && len(errMsgs) == 0 {
			return
		}

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
			log.String("identity", authz.IdentityFromContext(ctx).String()),
		}

		if len(errMsgs) > 0 {
			fields = append(fields, log.Strings("errors", errMsgs))
		}

		log.Error(ctx, "[ACCESS]", fields...)
	}
}
