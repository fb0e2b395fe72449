package news

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

type createBody struct {
	Title      string `form:"title" binding:"required,min=10,max=120"`
	Content    string `form:"content" binding:"required,min=100"`
	Summary    string `form:"summary" binding:"omitempty,max=200"`
	Source     string `form:"source" binding:"omitempty,max=100"`
	Tags       string `form:"tags"`
	Categories string `form:"categories" binding:"required"`
}

// NewsCreate publishes a new article authored by the requesting
// principal. The cover image is optional; the article ID is appended to
// the author's posts list in the same transaction as the insert.
func NewsCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")

	var data createBody
	if err := c.ShouldBind(&data); err != nil {
		apperr.Abort(c, apperr.BadRequest(bindErrorMessage(err)))
		return
	}

	categories, appErr := parseCategories(data.Categories)
	if appErr != nil {
		apperr.Abort(c, appErr)
		return
	}

	news := model.News{
		Title:      data.Title,
		Content:    data.Content,
		Summary:    data.Summary,
		Source:     data.Source,
		AuthorID:   userID,
		Categories: categories,
		Tags:       splitTags(data.Tags),
	}

	if fh, err := c.FormFile("coverImage"); err == nil && fh != nil && d.Media != nil {
		f, err := fh.Open()
		if err != nil {
			zap.L().Error("Failed to open cover upload", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
		defer f.Close()

		news.CoverImage, err = d.Media.Upload(c.Request.Context(), f, internal.MediaUploadOpts{
			Width:  1000,
			Height: 420,
		})
		if err != nil {
			zap.L().Error("Failed to upload cover image", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}
	}

	// The posts-list append rides in the same transaction so the author
	// record can't drift out of sync with the article
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&news).Error; err != nil {
			return err
		}

		return appendToAuthorPosts(tx, userID, news.ID)
	})
	if err != nil {
		zap.L().Error("Failed to create article", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"news": news},
	})
}

func appendToAuthorPosts(tx *gorm.DB, userID, newsID string) error {
	var user model.User

	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return err
	}

	return tx.Model(&user).Update("posts", append(user.Posts, newsID)).Error
}

// splitTags turns the space-delimited tags form field into a list.
func splitTags(raw string) model.StringSlice {
	tags := model.StringSlice{}

	for _, t := range strings.Fields(raw) {
		tags = append(tags, t)
	}

	return tags
}

func parseCategories(raw string) (model.StringSlice, *apperr.Error) {
	cats := strings.Fields(raw)
	if len(cats) == 0 {
		return nil, apperr.BadRequest("A news article must have at least one category")
	}

	for _, cat := range cats {
		if !model.IsValidCategory(cat) {
			return nil, apperr.BadRequest("Unknown category: " + cat)
		}
	}

	return model.StringSlice(cats), nil
}

func bindErrorMessage(err error) string {
	// Validator errors read poorly raw; keep the message but stay terse
	return "Invalid article payload: " + err.Error()
}
