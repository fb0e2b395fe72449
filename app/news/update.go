package news

import (
	"net/http"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateBody struct {
	Title      *string `form:"title" binding:"omitempty,min=10,max=120"`
	Content    *string `form:"content" binding:"omitempty,min=100"`
	Summary    *string `form:"summary" binding:"omitempty,max=200"`
	Source     *string `form:"source" binding:"omitempty,max=100"`
	Tags       *string `form:"tags"`
	Categories *string `form:"categories"`
}

// NewsUpdate edits an article. Only the author may do this; a replaced
// cover image also removes the previous object from storage.
func NewsUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")
	newsID := c.Param("id")

	var news model.News

	err := d.DB.Where("id = ?", newsID).First(&news).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			apperr.Abort(c, apperr.NotFound("No document found with that ID"))
			return
		}

		zap.L().Error("Failed to fetch article", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	if news.AuthorID != userID {
		apperr.Abort(c, apperr.Forbidden("You do not have permission to update this document"))
		return
	}

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest(bindErrorMessage(err)))
		return
	}

	patch := map[string]any{}

	if data.Title != nil {
		patch["title"] = *data.Title
	}
	if data.Content != nil {
		patch["content"] = *data.Content
	}
	if data.Summary != nil {
		patch["summary"] = *data.Summary
	}
	if data.Source != nil {
		patch["source"] = *data.Source
	}
	if data.Tags != nil {
		patch["tags"] = splitTags(*data.Tags)
	}
	if data.Categories != nil {
		categories, appErr := parseCategories(*data.Categories)
		if appErr != nil {
			apperr.Abort(c, appErr)
			return
		}
		patch["categories"] = categories
	}

	if fh, err := c.FormFile("coverImage"); err == nil && fh != nil && d.Media != nil {
		f, err := fh.Open()
		if err != nil {
			zap.L().Error("Failed to open cover upload", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
		defer f.Close()

		// Drop the old cover first so storage doesn't accumulate
		// orphans
		if news.CoverImage.StorageID != "" {
			if err := d.Media.Destroy(c.Request.Context(), news.CoverImage.StorageID); err != nil {
				zap.L().Warn("Failed to destroy old cover image", zap.Error(err), zap.String("requestID", requestID))
			}
		}

		cover, err := d.Media.Upload(c.Request.Context(), f, internal.MediaUploadOpts{
			Width:  1000,
			Height: 420,
		})
		if err != nil {
			zap.L().Error("Failed to upload cover image", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		patch["cover_url"] = cover.URL
		patch["cover_storage_id"] = cover.StorageID
	}

	if len(patch) == 0 {
		apperr.Abort(c, apperr.BadRequest("No fields to update provided"))
		return
	}

	if err := d.DB.Model(&news).Updates(patch).Error; err != nil {
		zap.L().Error("Failed to update article", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	var updated model.News
	err = d.DB.Preload("Comments").Preload("Author", publicAuthor).Where("id = ?", newsID).First(&updated).Error
	if err != nil {
		zap.L().Error("Failed to reload article", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   updated,
	})
}
