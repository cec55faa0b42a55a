package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/jobpilot/internal/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const loggerKey = "logger"

// LoggerMiddleware injects a request-scoped logger and logs one line per
// completed request. A client-supplied X-Request-ID is kept.
// Parameters:
//   - log: base logger to enrich with request fields.
//   - quietPaths: paths whose successful requests are logged at debug level.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func LoggerMiddleware(log *logger.Logger, quietPaths ...string) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		ctx := log.WithFields(logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		}).WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Set(loggerKey, logger.FromContext(ctx))
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		entry := logger.With(logger.Fields{
			logger.FieldStatus: status,
			logger.FieldSize:   c.Writer.Size(),
		}).WithDuration(time.Since(start))

		switch {
		case status >= 500:
			entry.Error(ctx, "%s %s", c.Request.Method, route)
		case status >= 400:
			entry.Warn(ctx, "%s %s", c.Request.Method, route)
		case quiet[route]:
			entry.Debug(ctx, "%s %s", c.Request.Method, route)
		default:
			entry.Info(ctx, "%s %s", c.Request.Method, route)
		}
	}
}

// GetLogger returns the request-scoped logger, or the context logger when
// the middleware did not run.
func GetLogger(c *gin.Context) *logger.Logger {
	if l, exists := c.Get(loggerKey); exists {
		if log, ok := l.(*logger.Logger); ok {
			return log
		}
	}
	return logger.FromContext(c.Request.Context())
}
