package auth

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type signupBody struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	About           string `form:"about"`
	Password        string `form:"password"`
	PasswordConfirm string `form:"passwordConfirm"`
}

// Signup registers a new account and logs it in. The request is a
// multipart form so an avatar can ride along under the photo field; when
// none is sent the default placeholder is assigned instead.
func Signup(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data signupBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest("Malformed request body"))
		return
	}

	if err := validators.NameValidator(data.Name); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	if err := validators.PasswordPairValidator(data.Password, data.PasswordConfirm); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	if utf8.RuneCountInString(data.About) > 50 {
		apperr.Abort(c, apperr.BadRequest("A user bio should not be more than 50 characters"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(data.Email))

	var found bool

	r := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		First(&found)
	if r.Error != nil && r.Error != gorm.ErrRecordNotFound {
		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	if found {
		apperr.Abort(c, apperr.New(http.StatusConflict, "This email is already registered. Please login or use a different email"))
		return
	}

	hash, err := d.Passwords.GenerateFromPassword(data.Password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	photo := model.DefaultUserPhoto

	if fh, err := c.FormFile("photo"); err == nil && fh != nil && d.Media != nil {
		f, err := fh.Open()
		if err != nil {
			zap.L().Error("Failed to open photo upload", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
		defer f.Close()

		photo, err = d.Media.Upload(c.Request.Context(), f, internal.MediaUploadOpts{
			Width:  300,
			Height: 300,
		})
		if err != nil {
			zap.L().Error("Failed to upload photo", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
	}

	user := model.User{
		Name:     data.Name,
		Email:    email,
		Password: hash,
		Role:     model.RoleUser,
		About:    data.About,
		Photo:    photo,
		Active:   true,
		Posts:    model.StringSlice{},
	}

	if err := d.DB.Create(&user).Error; err != nil {
		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	sendToken(c, d, &user, http.StatusCreated)
}
