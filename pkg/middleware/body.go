package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter rejects requests whose body exceeds maxBytes. The
// Content-Length check handles well-behaved clients cheaply, the
// MaxBytesReader catches the rest during reads.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"status":  "fail",
				"message": "Request body size exceeds limit",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		if last := c.Errors.Last(); last != nil {
			if strings.Contains(last.Error(), "http: request body too large") {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{
					"status":  "fail",
					"message": "Request body size exceeds limit",
				})
			}
		}
	}
}
