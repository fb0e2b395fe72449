package user

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

// Me returns the authenticated user's own profile. The principal was
// already loaded by the protect middleware, no second lookup needed.
func Me(c *gin.Context, _ *internal.Deps) {
	user := c.MustGet("user").(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"doc": user},
	})
}

type updateMeBody struct {
	Name  string `form:"name"`
	Email string `form:"email"`
	About string `form:"about"`
}

// UpdateMe patches the caller's own name, email, bio and avatar.
// Password changes go through their own route and are rejected here.
func UpdateMe(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	user := c.MustGet("user").(*model.User)

	if v, ok := c.GetPostForm("password"); ok && v != "" {
		apperr.Abort(c, apperr.BadRequest("This route is not for password updates. Please use /updateMyPassword"))
		return
	}
	if v, ok := c.GetPostForm("passwordConfirm"); ok && v != "" {
		apperr.Abort(c, apperr.BadRequest("This route is not for password updates. Please use /updateMyPassword"))
		return
	}

	var data updateMeBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest("Malformed request body"))
		return
	}

	patch := make(map[string]any)

	if data.Name != "" {
		if err := validators.NameValidator(data.Name); err != nil {
			apperr.Abort(c, apperr.BadRequest(err.Error()))
			return
		}

		patch["name"] = data.Name
	}

	if data.Email != "" {
		if err := validators.EmailValidator(data.Email); err != nil {
			apperr.Abort(c, apperr.BadRequest(err.Error()))
			return
		}

		email := strings.ToLower(strings.TrimSpace(data.Email))

		var taken bool
		err := d.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id <> ?", email, user.ID).
			First(&taken).
			Error
		if err != nil && err != gorm.ErrRecordNotFound {
			zap.L().Error("Failed to check email availability", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		if taken {
			apperr.Abort(c, apperr.New(http.StatusConflict, "This email is already registered. Please login or use a different email"))
			return
		}

		patch["email"] = email
	}

	if _, ok := c.GetPostForm("about"); ok {
		if utf8.RuneCountInString(data.About) > 50 {
			apperr.Abort(c, apperr.BadRequest("A user bio should not be more than 50 characters"))
			return
		}

		patch["about"] = data.About
	}

	if fh, err := c.FormFile("photo"); err == nil && fh != nil && d.Media != nil {
		f, err := fh.Open()
		if err != nil {
			zap.L().Error("Failed to open photo upload", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
		defer f.Close()

		photo, err := d.Media.Upload(c.Request.Context(), f, internal.MediaUploadOpts{
			Width:  300,
			Height: 300,
		})
		if err != nil {
			zap.L().Error("Failed to upload photo", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		// Old avatar becomes unreachable once the row is patched, so
		// evict it from storage first. Best effort only.
		if user.Photo.StorageID != "" {
			if err := d.Media.Destroy(c.Request.Context(), user.Photo.StorageID); err != nil {
				zap.L().Warn("Failed to delete old photo", zap.Error(err), zap.String("requestID", requestID))
			}
		}

		patch["photo_url"] = photo.URL
		patch["photo_storage_id"] = photo.StorageID
	}

	if len(patch) == 0 {
		apperr.Abort(c, apperr.BadRequest("No fields to update provided"))
		return
	}

	if err := d.DB.Model(user).Updates(patch).Error; err != nil {
		zap.L().Error("Failed to update user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	var updated model.User
	if err := d.DB.Where("id = ?", user.ID).First(&updated).Error; err != nil {
		zap.L().Error("Failed to reload user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": updated},
	})
}

// DeleteMe deactivates the caller's account. The row stays around, it
// just drops out of every active-scoped query.
func DeleteMe(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	user := c.MustGet("user").(*model.User)

	err := d.DB.Model(user).Update("active", false).Error
	if err != nil {
		zap.L().Error("Failed to deactivate user", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	c.Status(http.StatusNoContent)
}
