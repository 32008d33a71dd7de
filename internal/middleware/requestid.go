package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Package middleware provides HTTP middleware for request identification and
// access logging.

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with a unique identifier, honoring one supplied
// by the client. The identifier is stored in the gin context and echoed in the
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the request identifier set by RequestID, or an empty
// string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
