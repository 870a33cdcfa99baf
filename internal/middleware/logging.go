package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cyphera/cyphera-airdrop/internal/constants"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// LoggingMiddleware logs every request after it completes, except health
// checks.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == constants.HealthPath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		sl := logger.NewStructuredLogger(logger.ComponentMiddleware).
			WithCorrelationID(GetCorrelationID(c)).
			WithField("client_ip", c.ClientIP())
		if caller, ok := Caller(c); ok {
			sl = sl.WithCaller(caller.Hex())
		}
		if len(c.Errors) > 0 {
			sl = sl.WithField("errors", c.Errors.String())
		}
		sl.LogHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
