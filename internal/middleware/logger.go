package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CtxRequestID    = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// RequestLogger tags every request with an id and logs its outcome.
// An incoming X-Request-ID is kept.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(CtxRequestID, reqID)
		c.Header(HeaderRequestID, reqID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		if uid, ok := c.Get(CtxUserID); ok {
			fields = append(fields, "user_id", uid)
		}
		switch {
		case status >= 500:
			log.Errorw("[http][request]", fields...)
		case status >= 400:
			log.Warnw("[http][request]", fields...)
		default:
			log.Infow("[http][request]", fields...)
		}
	}
}
