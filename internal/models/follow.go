package models

import "time"

// Follow is a directed edge: FollowerID sees FollowingID's posts in their feed.
type Follow struct {
	FollowerID  uint      `gorm:"primaryKey;autoIncrement:false;check:chk_followers_no_self,follower_id <> following_id" json:"follower_id"`
	FollowingID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string {
	return "followers"
}
