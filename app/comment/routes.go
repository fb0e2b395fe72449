// Package comment wires the generic handlers to the comment resource
package comment

import (
	"atb/news-api/internal"
	"atb/news-api/internal/crud"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// publicUser narrows the preloaded commenter to active accounts and the
// fields safe to show next to a comment.
func publicUser(db *gorm.DB) *gorm.DB {
	return db.Scopes(model.ActiveOnly).
		Select("id", "name", "about", "photo_url", "photo_storage_id")
}

var commentOpts = crud.Options{
	Filterable:       []string{"news_id", "user_id", "created_at"},
	Preloads:         []crud.Preload{{Name: "User", Scope: publicUser}},
	ProjectionExtras: []string{"user_id"},
	Ownership:        crud.RequireAuthor,
}

type createBody struct {
	Text string `json:"text" binding:"required"`
	News string `json:"news" binding:"required"`
}

type updateBody struct {
	Text string `json:"text" binding:"required"`
}

func List(d *internal.Deps) gin.HandlerFunc {
	return crud.List[model.Comment](d, commentOpts)
}

func Get(d *internal.Deps) gin.HandlerFunc {
	return crud.GetOne[model.Comment](d, commentOpts)
}

// Create binds the payload, checks the target article exists and wires
// the requesting principal as the comment's user.
func Create(d *internal.Deps) gin.HandlerFunc {
	return crud.Create(d, func(c *gin.Context) (*model.Comment, error) {
		var data createBody
		if err := c.ShouldBind(&data); err != nil {
			return nil, apperr.BadRequest("Comment cannot be empty and must belong to a news post")
		}

		var exists bool
		err := d.DB.Model(model.News{}).
			Select("count(*) > 0").
			Where("id = ?", data.News).
			First(&exists).
			Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}

		if !exists {
			return nil, apperr.NotFound("No news post found with that ID")
		}

		return &model.Comment{
			Text:   data.Text,
			NewsID: data.News,
			UserID: c.GetString("userID"),
		}, nil
	})
}

func Update(d *internal.Deps) gin.HandlerFunc {
	return crud.Update[model.Comment](d, func(c *gin.Context) (map[string]any, error) {
		var data updateBody
		if err := c.ShouldBind(&data); err != nil {
			return nil, apperr.BadRequest("Comment cannot be empty")
		}

		return map[string]any{"text": data.Text}, nil
	}, commentOpts)
}

func Delete(d *internal.Deps) gin.HandlerFunc {
	return crud.Delete[model.Comment](d, commentOpts)
}
