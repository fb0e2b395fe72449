// Package middleware contains any custom middleware used in the app
package middleware

import (
	"atb/news-api/pkg/util"

	"github.com/gin-gonic/gin"
)

// NewRequestIDMiddleware generates a short random ID for each incoming
// request and stores it as requestID, so log lines and error responses
// can be correlated.
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("requestID", util.RandStr(10))
		c.Next()
	}
}
