package database

import (
	"context"

	"github.com/jimuelll/EchoSpace/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 同一事务内建社区并让创建者成为 LEADER
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community, creatorID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		mRepo := &MembershipRepository{DB: tx}
		return mRepo.Create(ctx, &model.Membership{
			CommunityID: c.ID,
			UserID:      creatorID,
			Role:        model.RoleLeader,
		})
	})
}

func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).First(&community, "id = ?", id).Error
	return &community, err
}

func (r *CommunityRepository) FindByJoinCode(ctx context.Context, code string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("join_code = ?", code).First(&community).Error
	return &community, err
}

// ListPublic limit<=0 时返回全部
func (r *CommunityRepository) ListPublic(ctx context.Context, offset, limit int) ([]model.Community, error) {
	list := []model.Community{}
	q := r.DB.WithContext(ctx).
		Where("type = ?", model.CommunityPublic).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

// ListByMember 用户加入的某类社区
func (r *CommunityRepository) ListByMember(ctx context.Context, userID string, typ model.CommunityType) ([]model.Community, error) {
	list := []model.Community{}
	err := r.DB.WithContext(ctx).
		Joins("JOIN memberships m ON m.community_id = communities.id").
		Where("m.user_id = ? AND communities.type = ?", userID, typ).
		Order("communities.created_at DESC").
		Find(&list).Error
	return list, err
}
