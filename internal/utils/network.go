package utils

import (
	"github.com/gin-gonic/gin"
)

// GetRealIP returns the client IP address. Forwarded headers are honoured
// only when the peer is one of the engine's trusted proxies.
func GetRealIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	userAgent := c.Request.UserAgent()
	if userAgent == "" {
		return "Unknown"
	}
	return userAgent
}
