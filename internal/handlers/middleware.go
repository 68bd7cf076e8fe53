package handlers

import (
	"bytes"
	"costseg-api/internal/logger"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog represents a structured log entry for an HTTP request
type RequestLog struct {
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Query     string    `json:"query"`
	ClientIP  string    `json:"client_ip"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// LogRequest logs each request including its body. Used outside release
// mode only; calculation inputs are not secrets but production logs stay
// lean.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			// Restore the body for downstream handlers
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		entry := RequestLog{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			ClientIP:  c.ClientIP(),
			Body:      string(body),
			Timestamp: time.Now(),
		}

		logger.Info("incoming request",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.String("query", entry.Query),
			zap.String("client_ip", entry.ClientIP),
			zap.String("body", entry.Body),
		)

		c.Next()
	}
}
