package auth

import (
	"net/http"
	"time"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/security"
	"atb/news-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetPasswordBody struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// ResetPassword consumes the raw token from the reset email. The token
// is hashed the same way it was at issuance and matched against an
// unexpired stored hash; an unknown and an expired token fail alike.
func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest("Malformed request body"))
		return
	}

	if err := validators.PasswordPairValidator(data.Password, data.PasswordConfirm); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	hashed := security.HashResetToken(c.Param("token"))

	var user model.User

	err := d.DB.
		Scopes(model.ActiveOnly).
		Where("password_reset_token = ? AND password_reset_expires > ?", hashed, time.Now()).
		First(&user).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			apperr.Abort(c, apperr.BadRequest("Token is invalid or has expired"))
			return
		}

		zap.L().Error("Failed to look up reset token", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	hash, err := d.Passwords.GenerateFromPassword(data.Password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	now := time.Now()

	err = d.DB.Model(&user).Updates(map[string]any{
		"password":               hash,
		"password_changed_at":    now,
		"password_reset_token":   "",
		"password_reset_expires": nil,
	}).Error
	if err != nil {
		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	user.Password = hash
	user.PasswordChangedAt = &now

	sendToken(c, d, &user, http.StatusOK)
}
