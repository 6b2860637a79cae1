package httpmiddleware

import (
	"net/http"
	"time"

	"PerguntaQueRespondo/backend/go/internal/models"
	"PerguntaQueRespondo/backend/go/pkg/logger"
	"PerguntaQueRespondo/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// MsgTooManyRequests is returned with 429.
const MsgTooManyRequests = "Muitas requisições. Tente novamente em instantes."

// RequestID assigns each request an ID, keeping one the client already sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := models.LogEntry{
			ServiceName: serviceName,
			RequestID:   c.GetString("requestID"),
			SessionID:   c.GetString("sessionID"),
			RequestInfo: &models.RequestInfo{
				Method:     c.Request.Method,
				Path:       c.Request.URL.Path,
				RemoteAddr: c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				Status:     c.Writer.Status(),
				LatencyMS:  time.Since(start).Milliseconds(),
			},
		}
		if len(c.Errors) > 0 {
			entry.Error = &models.ErrorInfo{Message: c.Errors.String(), StatusCode: c.Writer.Status()}
		}

		l := log.WithFields(entry.Fields())
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			l.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			l.Warn("request rejected")
		default:
			l.Info("request handled")
		}
	}
}

// RateLimit rejects requests once the client's token bucket is empty.
func RateLimit(limiter *ratelimiter.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"erro": MsgTooManyRequests})
			return
		}
		c.Next()
	}
}
