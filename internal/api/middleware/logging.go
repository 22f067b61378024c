package middleware

import (
	"net/http"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// LoggingMiddleware logs HTTP requests. A websocket upgrade holds its request
// until the socket ends, so it is reported afterwards with the session
// lifetime instead of a latency. Rejected upgrades and server errors are
// logged as warnings; everything else at debug.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := websocket.IsWebSocketUpgrade(c.Request)

		c.Next()

		elapsed := time.Since(start)
		statusCode := c.Writer.Status()
		target := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			target = target + "?" + raw
		}

		switch {
		case upgrade && statusCode >= http.StatusBadRequest:
			logger.Warnf("[ws] upgrade %s from %s rejected: %d", target, c.ClientIP(), statusCode)
		case upgrade:
			logger.Infof("[ws] session %s from %s lasted %v", target, c.ClientIP(), elapsed.Truncate(time.Millisecond))
		case statusCode >= http.StatusInternalServerError:
			logger.Warnf("[%s] %s - %d (%v)", c.Request.Method, target, statusCode, elapsed)
		default:
			// Log format: [method] path?query - status (latency)
			logger.Debugf("[%s] %s - %d (%v)", c.Request.Method, target, statusCode, elapsed)
		}
	}
}
