package auth

import (
	"net/http"
	"time"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updatePasswordBody struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// UpdatePassword changes the password of the logged-in principal after
// re-verifying the current one, then issues a fresh session token.
// Previously issued tokens die through the passwordChangedAt check.
func UpdatePassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	principal := c.MustGet("user").(*model.User)

	var data updatePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest("Malformed request body"))
		return
	}

	// Re-fetch so the comparison always runs against the current hash
	var user model.User
	if err := d.DB.Where("id = ?", principal.ID).First(&user).Error; err != nil {
		zap.L().Error("Failed to re-fetch user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	ok, err := d.Passwords.VerifyPasswd(data.PasswordCurrent, user.Password)
	if err != nil {
		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	if !ok {
		apperr.Abort(c, apperr.Unauthorized("Your current password is wrong"))
		return
	}

	if err := validators.PasswordPairValidator(data.Password, data.PasswordConfirm); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
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
		"password":            hash,
		"password_changed_at": now,
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
