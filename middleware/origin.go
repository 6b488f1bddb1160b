package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origin handles cross-origin requests, including the preflight for the
// JSON routes and the headers the event-stream endpoint needs.
func Origin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
