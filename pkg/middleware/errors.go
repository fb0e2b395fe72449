package middleware

import (
	"errors"
	"net/http"

	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewErrorHandler is the terminal error translator. Handlers record
// failures with apperr.Abort and this middleware renders the response
// envelope: status "fail" for client errors, "error" for server ones.
// Unexpected errors are flattened to a generic message unless the app
// runs in development mode.
func NewErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		requestID := c.GetString("requestID")
		err := c.Errors.Last().Err

		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			zap.L().Error("Unhandled error", zap.Error(err), zap.String("requestID", requestID))

			msg := "Something went very wrong!"
			if viper.GetString("app.env") == "development" {
				msg = err.Error()
			}

			appErr = apperr.Internal(msg)
		}

		status := "fail"
		if appErr.Status >= http.StatusInternalServerError {
			status = "error"
		}

		c.JSON(appErr.Status, gin.H{
			"status":    status,
			"message":   appErr.Message,
			"requestID": requestID,
		})
	}
}
