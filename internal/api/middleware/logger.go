package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HTTPRecorder receives per-request metrics. *telemetry.Metrics implements it.
type HTTPRecorder interface {
	RecordHTTP(method, route string, status int, d time.Duration)
}

// Logger writes one structured line per request and records its latency.
// Routes are labelled by their pattern, not the raw path, to bound cardinality.
func Logger(log zerolog.Logger, rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if rec != nil {
			rec.RecordHTTP(c.Request.Method, route, status, elapsed)
		}

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
