// Package news wires the generic handlers to the article resource and
// adds the bits that are specific to it: tag splitting, category checks
// and cover image uploads
package news

import (
	"atb/news-api/internal"
	"atb/news-api/internal/crud"
	"atb/news-api/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// publicAuthor narrows the preloaded author to active accounts and the
// fields safe to show next to an article. Deactivated authors simply
// drop out, same as every other lookup.
func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Scopes(model.ActiveOnly).
		Select("id", "name", "about", "photo_url", "photo_storage_id")
}

var newsOpts = crud.Options{
	Filterable: []string{
		"title", "author_id", "publication_date", "likes", "source", "created_at",
	},
	Preloads: []crud.Preload{
		{Name: "Comments"},
		{Name: "Author", Scope: publicAuthor},
	},
	ProjectionExtras: []string{"author_id"},
	Ownership:        crud.RequireAuthor,

	// Deleting an article takes its comments with it, in the same
	// transaction as the row itself.
	OnDelete: func(tx *gorm.DB, id string) error {
		return tx.Where("news_id = ?", id).Delete(&model.Comment{}).Error
	},
}

func List(d *internal.Deps) gin.HandlerFunc {
	return crud.List[model.News](d, newsOpts)
}

func Get(d *internal.Deps) gin.HandlerFunc {
	return crud.GetOne[model.News](d, newsOpts)
}

func Delete(d *internal.Deps) gin.HandlerFunc {
	return crud.Delete[model.News](d, newsOpts)
}
