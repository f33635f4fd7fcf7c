package database

import (
	"context"

	"github.com/jimuelll/EchoSpace/internal/model"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

func (r *VoteRepository) Find(ctx context.Context, userID, postID string) (*model.Vote, error) {
	var v model.Vote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&v).Error
	return &v, err
}

// Create 并发的首次投票会撞唯一索引 (user_id, post_id)，返回 gorm.ErrDuplicatedKey
func (r *VoteRepository) Create(ctx context.Context, v *model.Vote) error {
	return r.DB.WithContext(ctx).Omit("User").Create(v).Error
}

func (r *VoteRepository) UpdateValue(ctx context.Context, id string, value int) error {
	return r.DB.WithContext(ctx).Model(&model.Vote{}).Where("id = ?", id).Update("value", value).Error
}

func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Vote{}).Error
}

// Score 每次都从全部投票行重新求和，不维护单独的计数列
func (r *VoteRepository) Score(ctx context.Context, postID string) (int64, error) {
	var score int64
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&score).Error
	return score, err
}

// ListWithUsers 帖子的全部投票，带投票人
func (r *VoteRepository) ListWithUsers(ctx context.Context, postID string) ([]model.Vote, error) {
	list := []model.Vote{}
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
