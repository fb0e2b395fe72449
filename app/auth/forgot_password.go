package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resetTokenTTL = 10 * time.Minute

type forgotPasswordBody struct {
	Email string `json:"email"`
}

// ForgotPassword mails the user a one-time reset token. Only the hash of
// the token is persisted; if the mail cannot be delivered the stored
// fields are rolled back so the token can't linger half-issued.
func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		apperr.Abort(c, apperr.BadRequest("Please provide your email"))
		return
	}

	var user model.User

	err := d.DB.
		Scopes(model.ActiveOnly).
		Where("email = ?", strings.ToLower(strings.TrimSpace(data.Email))).
		First(&user).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			apperr.Abort(c, apperr.NotFound("There is no user with this email address"))
			return
		}

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	raw, hashed, err := security.NewResetToken()
	if err != nil {
		zap.L().Error("Failed to generate reset token", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	expires := time.Now().Add(resetTokenTTL)

	err = d.DB.Model(&user).Updates(map[string]any{
		"password_reset_token":   hashed,
		"password_reset_expires": expires,
	}).Error
	if err != nil {
		zap.L().Error("Failed to store reset token", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s",
		scheme, viper.GetString("host.domain"), raw)

	message := fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\nIf you didn't forget your password, please ignore this email!", resetURL)

	err = d.Mail.Send(user.Email, "Your password reset token (valid for 10 minutes)", message)
	if err != nil {
		// Roll the token fields back so a token nobody received can't
		// be matched later
		rbErr := d.DB.Model(&user).Updates(map[string]any{
			"password_reset_token":   "",
			"password_reset_expires": nil,
		}).Error
		if rbErr != nil {
			zap.L().Error("Failed to roll back reset token", zap.Error(rbErr), zap.String("requestID", requestID))
		}

		zap.L().Error("Failed to send reset email", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("There was an error sending the email. Try again later!"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Token sent to email",
	})
}
