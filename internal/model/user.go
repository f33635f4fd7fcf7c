package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Name             string     `gorm:"size:64;not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password         string     `gorm:"size:255;not null" json:"-"`
	IsVerified       bool       `gorm:"not null;default:false" json:"isVerified"`
	VerificationCode *string    `gorm:"size:6" json:"-"`
	CodeExpiresAt    *time.Time `json:"-"`
	ImageURL         string     `gorm:"size:512" json:"imageUrl"`
	ImageID          string     `gorm:"size:255" json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	newID(&u.ID)
	return nil
}

// CodeValid 验证码一致且未过期
func (u *User) CodeValid(code string, now time.Time) bool {
	if u.VerificationCode == nil || u.CodeExpiresAt == nil {
		return false
	}
	return *u.VerificationCode == code && !now.After(*u.CodeExpiresAt)
}
