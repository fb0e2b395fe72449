package model

import (
	"slices"
	"time"

	"gorm.io/gorm"
)

// Categories a news article may be filed under.
var ValidCategories = []string{"Finance", "Government", "Sports", "Education", "Other"}

func IsValidCategory(c string) bool {
	return slices.Contains(ValidCategories, c)
}

type News struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"not null" json:"content"`

	// AuthorID is set once at creation and is the sole authority for
	// update and delete permission checks.
	AuthorID string `gorm:"index;not null" json:"authorId"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	PublicationDate time.Time   `json:"publicationDate"`
	Categories      StringSlice `gorm:"not null" json:"categories"`
	Tags            StringSlice `json:"tags"`
	CoverImage      Image       `gorm:"embedded;embeddedPrefix:cover_" json:"coverImage"`
	Summary         string      `json:"summary,omitempty"`
	Source          string      `json:"source,omitempty"`
	Likes           int         `gorm:"default:0" json:"likes"`

	Comments      []Comment `gorm:"foreignKey:NewsID" json:"comments"`
	CommentsCount int       `gorm:"-" json:"commentsCount"`

	CreatedAt time.Time `json:"createdAt"`
}

func (n *News) BeforeCreate(tx *gorm.DB) error {
	if n.PublicationDate.IsZero() {
		n.PublicationDate = time.Now()
	}

	if n.ID != "" {
		return nil
	}

	id, err := NewID()
	if err != nil {
		return err
	}

	n.ID = id
	return nil
}

func (n *News) AfterFind(tx *gorm.DB) error {
	n.CommentsCount = len(n.Comments)
	return nil
}

// Owner implements the ownership check used by the generic handlers.
func (n *News) Owner() string {
	return n.AuthorID
}
