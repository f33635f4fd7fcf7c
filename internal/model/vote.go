package model

import (
	"time"

	"gorm.io/gorm"
)

// Vote 值只有 +1/-1；请求 0 表示删除该行，不存 0
type Vote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:uk_user_post" json:"userId"`
	PostID    string    `gorm:"size:36;not null;index;uniqueIndex:uk_user_post" json:"postId"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}

func (Vote) TableName() string {
	return "votes"
}
