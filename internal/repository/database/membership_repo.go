package database

import (
	"context"

	"github.com/jimuelll/EchoSpace/internal/model"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	DB *gorm.DB
}

// Create 不做幂等：重复加入由唯一索引 (user_id, community_id) 拒绝，返回 gorm.ErrDuplicatedKey
func (r *MembershipRepository) Create(ctx context.Context, member *model.Membership) error {
	return r.DB.WithContext(ctx).Omit("Community").Create(member).Error
}

func (r *MembershipRepository) Find(ctx context.Context, userID, communityID string) (*model.Membership, error) {
	var m model.Membership
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&m).Error
	return &m, err
}

func (r *MembershipRepository) IsMember(ctx context.Context, userID, communityID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Membership{}).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		Count(&count).Error
	return count > 0, err
}
