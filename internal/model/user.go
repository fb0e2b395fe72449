// Package model defines database models
package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"default:user" json:"role,omitempty"`
	About    string `json:"about,omitempty"`
	Photo    Image  `gorm:"embedded;embeddedPrefix:photo_" json:"photo"`

	// PasswordChangedAt is only written by the password-change flows and
	// invalidates tokens issued before it.
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	// Active is the soft-delete flag. Lookups that should exclude
	// deactivated accounts must apply the ActiveOnly scope explicitly.
	Active bool `gorm:"default:true" json:"-"`

	// Posts holds the IDs of articles written by this user. Appended
	// inside the article-create transaction.
	Posts StringSlice `json:"posts"`

	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID != "" {
		return nil
	}

	id, err := NewID()
	if err != nil {
		return err
	}

	u.ID = id
	return nil
}

// Owner satisfies the generic ownership check: a user document is owned
// by the user it describes.
func (u *User) Owner() string {
	return u.ID
}

// ActiveOnly excludes soft-deleted users from a query. Kept as an explicit
// scope rather than a model hook so that admin lookups can still see
// deactivated accounts.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}
