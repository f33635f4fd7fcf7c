package database

import (
	"context"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&usr).Error
	return &usr, err
}

// SetVerificationCode 重新下发验证码时覆盖旧码和过期时间
func (r *UserRepository) SetVerificationCode(ctx context.Context, user *model.User, code string, expiresAt time.Time) error {
	return r.DB.WithContext(ctx).Model(user).Updates(map[string]any{
		"verification_code": code,
		"code_expires_at":   expiresAt,
	}).Error
}

// MarkVerified 验证通过：置为已验证并清空验证码
func (r *UserRepository) MarkVerified(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(user).Updates(map[string]any{
		"is_verified":       true,
		"verification_code": nil,
		"code_expires_at":   nil,
	}).Error
}

func (r *UserRepository) UpdateImage(ctx context.Context, user *model.User, ref model.ImageRef) error {
	return r.DB.WithContext(ctx).Model(user).Updates(map[string]any{
		"image_url": ref.URL,
		"image_id":  ref.ID,
	}).Error
}
