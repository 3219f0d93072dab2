package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oremus-labs/webhook-receiver/internal/logutil"
)

const requestIDHeader = "X-Request-ID"

// requestLogger writes one http_request line per request. Server errors are
// logged at warn level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logutil.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"route":     routeLabel(c),
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": c.GetString("requestID"),
			"clientIp":  c.ClientIP(),
		}
		if c.Writer.Status() >= 500 {
			logutil.Warn("http_request", fields)
			return
		}
		logutil.Info("http_request", fields)
	}
}

// routeLabel is the matched route pattern, or "unmatched" so stray paths do
// not become metric labels.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeLabel(c)
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if c.Request.ContentLength > 0 {
			httpRequestSize.WithLabelValues(method, route).Observe(float64(c.Request.ContentLength))
		}
	}
}
