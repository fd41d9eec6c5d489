package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ContextLoggerKey = "logger"
	RequestIDHeader  = "X-Request-ID"
)

var fallbackLogger logrus.FieldLogger = logrus.StandardLogger()

// RequestLogger tags every request with an id, keeps a request-scoped logger
// in the gin context and logs one line once the handler chain is done.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		entry := logger.WithField("request_id", requestID)
		c.Set(ContextLoggerKey, entry)

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if c.FullPath() == "" {
			fields["path"] = c.Request.URL.Path
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		line := entry.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			line.Error("request completed")
		case status >= 400:
			line.Warn("request completed")
		default:
			line.Info("request completed")
		}
	}
}

// Logger returns the request-scoped logger, or the standard logger when the
// middleware did not run.
func Logger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ContextLoggerKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return fallbackLogger
}
