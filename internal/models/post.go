package models

import "time"

// Post is a short text entry owned by its author.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Text      string    `gorm:"size:500;not null" json:"text"`
	Image     string    `gorm:"size:2048" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Populated by the repository's joined select; never written.
	AuthorUsername string `gorm:"->;-:migration;column:author_username" json:"-"`
	AuthorPicture  string `gorm:"->;-:migration;column:author_profile_picture" json:"-"`
	LikesCount     int64  `gorm:"->;-:migration;column:likes_count" json:"likes_count"`

	Author   *UserSummary `gorm:"-" json:"user,omitempty"`
	Comments []*Comment   `gorm:"-" json:"comments"`
}

// HydrateAuthor copies the joined author columns into Author.
func (p *Post) HydrateAuthor() {
	p.Author = &UserSummary{
		ID:             p.UserID,
		Username:       p.AuthorUsername,
		ProfilePicture: p.AuthorPicture,
	}
	if p.Comments == nil {
		p.Comments = []*Comment{}
	}
}

// Like records that a user liked a post. The pair is the primary key.
type Like struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string {
	return "post_likes"
}

// LikeResult is returned by a like toggle.
type LikeResult struct {
	Liked  bool          `json:"liked"`
	Likes  []UserSummary `json:"likes"`
	Count  int           `json:"count"`
	PostID uint          `json:"post_id"`
}

// PostSnapshot is the minimal view of a recent post used for trending.
type PostSnapshot struct {
	Text       string
	LikesCount int64
}

// Topic is a trending keyword and its accumulated weight.
type Topic struct {
	Keyword string `json:"keyword"`
	Weight  int64  `json:"weight"`
}
