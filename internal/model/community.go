package model

import (
	"time"

	"gorm.io/gorm"
)

type CommunityType string

const (
	CommunityPublic  CommunityType = "PUBLIC"
	CommunityPrivate CommunityType = "PRIVATE"
)

func (t CommunityType) Valid() bool {
	return t == CommunityPublic || t == CommunityPrivate
}

type Role string

const (
	RoleLeader    Role = "LEADER"
	RoleModerator Role = "MODERATOR"
	RoleMember    Role = "MEMBER"
)

// CanModerate LEADER/MODERATOR 可以删除他人帖子
func (r Role) CanModerate() bool {
	return r == RoleLeader || r == RoleModerator
}

type Community struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Name      string        `gorm:"size:64;not null" json:"name"`
	Type      CommunityType `gorm:"size:16;not null;default:PRIVATE;index" json:"type"`
	JoinCode  string        `gorm:"uniqueIndex;size:16;not null" json:"joinCode"`
	AvatarURL string        `gorm:"size:512" json:"avatarUrl"`
	AvatarID  string        `gorm:"size:255" json:"-"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"-"`
}

func (c *Community) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

type Membership struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:uk_user_community" json:"userId"`
	CommunityID string    `gorm:"size:36;not null;index;uniqueIndex:uk_user_community" json:"communityId"`
	Role        Role      `gorm:"size:16;not null;default:MEMBER" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`

	Community Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Membership) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}
