package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	contextRequestIDKey = "request_id"
	maxRequestIDLength  = 64
)

// RequestID берёт X-Request-ID клиента или генерирует новый и пробрасывает его в логгер.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		c.Header(requestIDHeader, requestID)
		c.Set(contextRequestIDKey, requestID)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID возвращает request id текущего запроса.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(contextRequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
