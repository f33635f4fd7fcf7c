package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/repository/database"

	"gorm.io/gorm"
)

// scoreInvalidateDelay 延迟双删的第二次删除间隔
const scoreInvalidateDelay = 500 * time.Millisecond

type Voter struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type Voters struct {
	Upvoters   []Voter `json:"upvoters"`
	Downvoters []Voter `json:"downvoters"`
}

type VoteService struct {
	repo     *database.VoteRepository
	postRepo *database.PostRepository
	cache    ScoreCache
	events   EventPublisher
}

func NewVoteService(db *gorm.DB, cache ScoreCache, events EventPublisher) *VoteService {
	return &VoteService{
		repo:     &database.VoteRepository{DB: db},
		postRepo: &database.PostRepository{DB: db},
		cache:    cache,
		events:   events,
	}
}

func validVote(v int) bool {
	return v == -1 || v == 0 || v == 1
}

// Cast 将 (userID, postID) 的投票调整为 value，返回重新求和后的得分
//
//	无票 & value!=0 -> 插入
//	有票 & value==0 -> 删除
//	有票 & 值不同   -> 更新
//	其余            -> 不变
func (s *VoteService) Cast(ctx context.Context, actorID, userID, postID string, value int) (int64, error) {
	if userID == "" || postID == "" {
		return 0, ErrMissingVoteTarget
	}
	if !validVote(value) {
		return 0, ErrInvalidVoteValue
	}
	if actorID != userID {
		return 0, ErrVoteForbidden
	}

	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("check post: %w", err)
	}
	if !ok {
		return 0, ErrPostNotFound
	}

	existing, err := s.repo.Find(ctx, userID, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		existing, err = nil, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find vote: %w", err)
	}

	changed := true
	switch {
	case existing == nil && value != 0:
		err = s.repo.Create(ctx, &model.Vote{UserID: userID, PostID: postID, Value: value})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrVoteConflict
		}
	case existing != nil && value == 0:
		err = s.repo.Delete(ctx, existing.ID)
	case existing != nil && existing.Value != value:
		err = s.repo.UpdateValue(ctx, existing.ID, value)
	default:
		changed = false
	}
	if err != nil {
		return 0, fmt.Errorf("apply vote: %w", err)
	}

	score, err := s.repo.Score(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("sum votes: %w", err)
	}

	if changed {
		s.invalidate(ctx, postID)
		publish(ctx, s.events, EventVoteCast, postID, map[string]any{
			"userId": userID, "value": value, "score": score,
		})
	}
	return score, nil
}

// Score 先读缓存，未命中时求和并回填
func (s *VoteService) Score(ctx context.Context, postID string) (int64, error) {
	if s.cache != nil {
		score, hit, err := s.cache.GetScore(ctx, postID)
		if err != nil {
			log.Printf("[vote] cache get post=%s: %v", postID, err)
		} else if hit {
			return score, nil
		}
	}

	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("check post: %w", err)
	}
	if !ok {
		return 0, ErrPostNotFound
	}

	score, err := s.repo.Score(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("sum votes: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetScore(ctx, postID, score); err != nil {
			log.Printf("[vote] cache set post=%s: %v", postID, err)
		}
	}
	return score, nil
}

// Voters 按正负票拆分投票人
func (s *VoteService) Voters(ctx context.Context, postID string) (*Voters, error) {
	votes, err := s.repo.ListWithUsers(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	out := &Voters{Upvoters: []Voter{}, Downvoters: []Voter{}}
	for _, v := range votes {
		voter := Voter{Name: v.User.Name, ImageURL: v.User.ImageURL}
		switch v.Value {
		case 1:
			out.Upvoters = append(out.Upvoters, voter)
		case -1:
			out.Downvoters = append(out.Downvoters, voter)
		}
	}
	return out, nil
}

// Status 用户对帖子的当前投票，没投过返回 0
func (s *VoteService) Status(ctx context.Context, userID, postID string) (int, error) {
	if userID == "" || postID == "" {
		return 0, ErrMissingVoteTarget
	}
	v, err := s.repo.Find(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("find vote: %w", err)
	}
	return v.Value, nil
}

// invalidate 删除缓存，并在短暂延迟后再删一次，防止并发读回填旧值
func (s *VoteService) invalidate(ctx context.Context, postID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteScore(ctx, postID, scoreInvalidateDelay); err != nil {
		log.Printf("[vote] cache invalidate post=%s: %v", postID, err)
	}
}
