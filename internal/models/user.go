// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	ProfilePicture      string     `gorm:"size:2048" json:"profile_picture"`
	Bio                 string     `gorm:"size:500" json:"bio"`
	ResetTokenHash      *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Summary projects the user onto the public author fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
	}
}

// UserSummary is the public projection of a user embedded in posts, comments and lists.
type UserSummary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `json:"bio,omitempty"`
}

// UserProfile is the authenticated user's own view, with live graph counts.
type UserProfile struct {
	User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// PublicProfile is what other users see on a profile page.
type PublicProfile struct {
	UserSummary
	CreatedAt      time.Time     `json:"created_at"`
	FollowersCount int64         `json:"followers_count"`
	FollowingCount int64         `json:"following_count"`
	Followers      []UserSummary `json:"followers"`
	Following      []UserSummary `json:"following"`
	IsFollowing    bool          `json:"is_following"`
}

// UserSearchResult is a user search hit annotated for the caller.
type UserSearchResult struct {
	UserSummary
	CreatedAt   time.Time `json:"created_at"`
	IsFollowing bool      `json:"is_following"`
}
