package model

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CommunityID string    `gorm:"size:36;not null;index:idx_community_time,priority:1" json:"communityId"`
	AuthorID    string    `gorm:"size:36;not null;index" json:"authorId"`
	Title       string    `gorm:"size:200" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl"`
	ImageID     string    `gorm:"size:255" json:"imageId"`
	CreatedAt   time.Time `gorm:"index:idx_community_time,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Community Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
	Votes     []Vote    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}

// Image 帖子当前的图片引用
func (p *Post) Image() ImageRef {
	return ImageRef{URL: p.ImageURL, ID: p.ImageID}
}

// ImageRef 图片存储中的一张图：访问地址 + 存储 ID
type ImageRef struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

func (r ImageRef) Empty() bool {
	return r.URL == "" && r.ID == ""
}
