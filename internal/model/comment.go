package model

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Text string `gorm:"not null" json:"text"`

	// Both references are immutable after creation.
	NewsID string `gorm:"index;not null" json:"news"`
	UserID string `gorm:"index;not null" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID != "" {
		return nil
	}

	id, err := NewID()
	if err != nil {
		return err
	}

	c.ID = id
	return nil
}

// Owner implements the ownership check used by the generic handlers.
func (c *Comment) Owner() string {
	return c.UserID
}
