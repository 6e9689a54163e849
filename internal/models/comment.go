package models

import "time"

// Comment is a reply on a post, owned by its author.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Text      string    `gorm:"size:300;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	AuthorUsername string `gorm:"->;-:migration;column:author_username" json:"-"`
	AuthorPicture  string `gorm:"->;-:migration;column:author_profile_picture" json:"-"`

	Author *UserSummary `gorm:"-" json:"user,omitempty"`
}

// HydrateAuthor copies the joined author columns into Author.
func (c *Comment) HydrateAuthor() {
	c.Author = &UserSummary{
		ID:             c.UserID,
		Username:       c.AuthorUsername,
		ProfilePicture: c.AuthorPicture,
	}
}
