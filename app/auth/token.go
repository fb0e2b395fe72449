// Package auth implements the session lifecycle: signup, login, logout
// and the password flows
package auth

import (
	"net/http"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// sendToken issues a fresh session token for user, sets it as an
// http-only cookie and writes the response envelope. The user's password
// hash is never serialized, the model hides it from JSON.
func sendToken(c *gin.Context, d *internal.Deps, user *model.User, status int) {
	requestID := c.GetString("requestID")

	token, err := d.Tokens.Issue(user.ID)
	if err != nil {
		zap.L().Error("Failed to issue session token", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	maxAge := viper.GetInt("jwt.cookie_expires_hours") * 3600

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("jwt", token, maxAge, "/", "", viper.GetBool("host.ssl.enabled"), true)

	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}
