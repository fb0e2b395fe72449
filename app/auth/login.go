package auth

import (
	"net/http"
	"strings"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a session token. A missing user
// and a wrong password produce the same error so the response doesn't
// reveal which one it was.
func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest("Malformed request body"))
		return
	}

	if data.Email == "" || data.Password == "" {
		apperr.Abort(c, apperr.BadRequest("Please provide email and password!"))
		return
	}

	var user model.User

	err := d.DB.
		Scopes(model.ActiveOnly).
		Where("email = ?", strings.ToLower(strings.TrimSpace(data.Email))).
		First(&user).
		Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		apperr.Abort(c, apperr.Unauthorized("Incorrect email or password"))
		return
	}

	ok, err := d.Passwords.VerifyPasswd(data.Password, user.Password)
	if err != nil {
		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	if !ok {
		apperr.Abort(c, apperr.Unauthorized("Incorrect email or password"))
		return
	}

	sendToken(c, d, &user, http.StatusOK)
}
