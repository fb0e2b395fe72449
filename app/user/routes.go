// Package user holds the self-service profile routes plus the
// admin-only account management handlers.
package user

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"atb/news-api/internal"
	"atb/news-api/internal/crud"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deactivated accounts stay invisible even to admin listings. Fetch by
// raw SQL if you really need a dead row.
var userOpts = crud.Options{
	Filterable: []string{"name", "email", "role", "created_at"},
	Scopes:     []func(*gorm.DB) *gorm.DB{model.ActiveOnly},
}

type adminCreateBody struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	About           string `json:"about"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type adminUpdateBody struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	About  *string `json:"about"`
	Active *bool   `json:"active"`
}

func List(d *internal.Deps) gin.HandlerFunc {
	return crud.List[model.User](d, userOpts)
}

func Get(d *internal.Deps) gin.HandlerFunc {
	return crud.GetOne[model.User](d, userOpts)
}

// Create lets an admin provision an account directly. Same validation
// rules as signup, but the role can be set.
func Create(d *internal.Deps) gin.HandlerFunc {
	return crud.Create(d, func(c *gin.Context) (*model.User, error) {
		var data adminCreateBody
		if err := c.ShouldBind(&data); err != nil {
			return nil, apperr.BadRequest("Malformed request body")
		}

		if err := validators.NameValidator(data.Name); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}

		if err := validators.EmailValidator(data.Email); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}

		if err := validators.PasswordPairValidator(data.Password, data.PasswordConfirm); err != nil {
			return nil, apperr.BadRequest(err.Error())
		}

		role := data.Role
		if role == "" {
			role = model.RoleUser
		}
		if role != model.RoleUser && role != model.RoleAdmin {
			return nil, apperr.BadRequest("Unknown role: " + role)
		}

		hash, err := d.Passwords.GenerateFromPassword(data.Password)
		if err != nil {
			return nil, err
		}

		return &model.User{
			Name:     data.Name,
			Email:    strings.ToLower(strings.TrimSpace(data.Email)),
			Password: hash,
			Role:     role,
			About:    data.About,
			Photo:    model.DefaultUserPhoto,
			Active:   true,
			Posts:    model.StringSlice{},
		}, nil
	})
}

func Update(d *internal.Deps) gin.HandlerFunc {
	return crud.Update[model.User](d, func(c *gin.Context) (map[string]any, error) {
		var data adminUpdateBody
		if err := c.ShouldBind(&data); err != nil {
			return nil, apperr.BadRequest("Malformed request body")
		}

		patch := make(map[string]any)

		if data.Name != nil {
			if err := validators.NameValidator(*data.Name); err != nil {
				return nil, apperr.BadRequest(err.Error())
			}

			patch["name"] = *data.Name
		}

		if data.Email != nil {
			if err := validators.EmailValidator(*data.Email); err != nil {
				return nil, apperr.BadRequest(err.Error())
			}

			email := strings.ToLower(strings.TrimSpace(*data.Email))

			// Same pre-check as signup so the unique index never
			// surfaces as a 500
			var taken bool
			err := d.DB.Model(model.User{}).
				Select("count(*) > 0").
				Where("email = ? AND id <> ?", email, c.Param("id")).
				First(&taken).
				Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}

			if taken {
				return nil, apperr.New(http.StatusConflict, "This email is already registered. Please login or use a different email")
			}

			patch["email"] = email
		}

		if data.Role != nil {
			if *data.Role != model.RoleUser && *data.Role != model.RoleAdmin {
				return nil, apperr.BadRequest("Unknown role: " + *data.Role)
			}

			patch["role"] = *data.Role
		}

		if data.About != nil {
			if utf8.RuneCountInString(*data.About) > 50 {
				return nil, apperr.BadRequest("A user bio should not be more than 50 characters")
			}

			patch["about"] = *data.About
		}

		if data.Active != nil {
			patch["active"] = *data.Active
		}

		return patch, nil
	}, userOpts)
}

func Delete(d *internal.Deps) gin.HandlerFunc {
	return crud.Delete[model.User](d, userOpts)
}
