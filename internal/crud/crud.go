// Package crud builds the generic per-resource handlers. Each handler is
// parameterized by a model type plus Options describing preloads, the
// filterable columns and the ownership policy, so articles, comments and
// users all flow through the same code.
package crud

import (
	"net/http"

	"atb/news-api/internal"
	"atb/news-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Owned is implemented by models that carry an author/user reference the
// ownership policy can compare against the requesting principal.
type Owned interface {
	Owner() string
}

// Policy decides whether mutations check the document's owner against
// the principal.
type Policy int

const (
	NoCheck Policy = iota
	RequireAuthor
)

// Preload names an association loaded on reads. Scope optionally narrows
// the association query, e.g. to active rows and public columns.
type Preload struct {
	Name  string
	Scope func(*gorm.DB) *gorm.DB
}

type Options struct {
	// Snake_case columns that may appear in filters, sort and fields.
	Filterable []string
	// Associations loaded on reads.
	Preloads []Preload
	// Columns kept in a projection so preloads still resolve.
	ProjectionExtras []string
	// Scopes applied to every query, e.g. the active-user filter.
	Scopes []func(*gorm.DB) *gorm.DB
	// Ownership policy for Update and Delete.
	Ownership Policy
	// OnDelete runs inside the delete transaction, before the row goes.
	// Used for the article -> comments cascade.
	OnDelete func(tx *gorm.DB, id string) error
}

// CreateBinder extracts and validates the payload for Create. Returning
// an error short-circuits before anything is persisted.
type CreateBinder[T any] func(c *gin.Context) (*T, error)

// UpdateBinder extracts and validates the column patch for Update.
type UpdateBinder func(c *gin.Context) (map[string]any, error)

func baseQuery[T any](d *internal.Deps, opts Options) *gorm.DB {
	q := d.DB.Model(new(T))

	for _, s := range opts.Scopes {
		q = q.Scopes(s)
	}

	for _, p := range opts.Preloads {
		if p.Scope != nil {
			q = q.Preload(p.Name, p.Scope)
		} else {
			q = q.Preload(p.Name)
		}
	}

	return q
}

// List returns the filtered, sorted, projected and paginated documents
// plus their count. An empty page is a success with zero results, never
// an error.
func List[T any](d *internal.Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		f := ParseFeatures(c.Request.URL.Query(), opts.Filterable, opts.ProjectionExtras)

		var docs []T

		err := f.Apply(baseQuery[T](d, opts)).Find(&docs).Error
		if err != nil {
			zap.L().Error("Failed to list documents", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		if docs == nil {
			docs = []T{}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"results": len(docs),
			"data":    gin.H{"docs": docs},
		})
	}
}

// GetOne fetches a document by its path ID.
func GetOne[T any](d *internal.Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		var doc T

		err := baseQuery[T](d, opts).Where("id = ?", c.Param("id")).First(&doc).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				apperr.Abort(c, apperr.NotFound("No document found with that ID"))
				return
			}

			zap.L().Error("Failed to fetch document", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"doc": doc},
		})
	}
}

// Create inserts the document produced by bind and echoes it back with
// its server-assigned ID.
func Create[T any](d *internal.Deps, bind CreateBinder[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		doc, err := bind(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		if err := d.DB.Create(doc).Error; err != nil {
			zap.L().Error("Failed to create document", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"status": "success",
			"data":   gin.H{"doc": doc},
		})
	}
}

// Update patches a document by ID: fetch, ownership check, apply the
// bound patch, return the updated document.
func Update[T any, PT interface {
	Owned
	*T
}](d *internal.Deps, bind UpdateBinder, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")
		id := c.Param("id")

		doc, ok := fetchOwned[T, PT](c, d, opts, id, "update")
		if !ok {
			return
		}

		patch, err := bind(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		if len(patch) == 0 {
			apperr.Abort(c, apperr.BadRequest("No fields to update provided"))
			return
		}

		err = d.DB.Model(doc).Updates(patch).Error
		if err != nil {
			zap.L().Error("Failed to update document", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		// Re-read so preloads and derived fields reflect the new state
		var updated T
		err = baseQuery[T](d, opts).Where("id = ?", id).First(&updated).Error
		if err != nil {
			zap.L().Error("Failed to reload document", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   updated,
		})
	}
}

// Delete removes a document by ID after the same fetch-and-ownership
// sequence as Update. The OnDelete cascade runs in the same transaction.
func Delete[T any, PT interface {
	Owned
	*T
}](d *internal.Deps, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")
		id := c.Param("id")

		doc, ok := fetchOwned[T, PT](c, d, opts, id, "delete")
		if !ok {
			return
		}

		err := d.DB.Transaction(func(tx *gorm.DB) error {
			if opts.OnDelete != nil {
				if err := opts.OnDelete(tx, id); err != nil {
					return err
				}
			}

			return tx.Delete(doc).Error
		})
		if err != nil {
			zap.L().Error("Failed to delete document", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   nil,
		})
	}
}

// fetchOwned loads the document and applies the ownership policy. On
// failure the request is aborted and ok is false.
func fetchOwned[T any, PT interface {
	Owned
	*T
}](c *gin.Context, d *internal.Deps, opts Options, id, action string) (PT, bool) {
	requestID := c.GetString("requestID")

	var doc T

	q := d.DB.Model(new(T))
	for _, s := range opts.Scopes {
		q = q.Scopes(s)
	}

	err := q.Where("id = ?", id).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			apperr.Abort(c, apperr.NotFound("No document found with that ID"))
			return nil, false
		}

		zap.L().Error("Failed to fetch document", zap.Error(err), zap.String("requestID", requestID))
		apperr.Abort(c, apperr.Internal("Something went very wrong!"))
		return nil, false
	}

	ptr := PT(&doc)

	if opts.Ownership == RequireAuthor && ptr.Owner() != c.GetString("userID") {
		apperr.Abort(c, apperr.Forbidden("You do not have permission to "+action+" this document"))
		return nil, false
	}

	return ptr, true
}
