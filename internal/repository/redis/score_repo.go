package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ScoreTTL       = 24 * time.Hour
	ScoreKeyPrefix = "vote:score:post" // 缓存某个帖子的得分
)

type ScoreCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewScoreCacheRepository(rdb *redis.Client) *ScoreCacheRepository {
	return &ScoreCacheRepository{rdb: rdb, ttl: ScoreTTL}
}

func (r *ScoreCacheRepository) scoreKey(postID string) string {
	return fmt.Sprintf("%s:%s", ScoreKeyPrefix, postID)
}

// GetScore 从缓存读取帖子得分，ok=false 表示未命中
func (r *ScoreCacheRepository) GetScore(ctx context.Context, postID string) (int64, bool, error) {
	val, err := r.rdb.Get(ctx, r.scoreKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// SetScore 回填帖子得分
func (r *ScoreCacheRepository) SetScore(ctx context.Context, postID string, score int64) error {
	return r.rdb.Set(ctx, r.scoreKey(postID), score, r.ttl).Err()
}

// DeleteScore 立刻删除得分缓存；delay>0 时在后台再删一次，抵消并发回填窗口
func (r *ScoreCacheRepository) DeleteScore(ctx context.Context, postID string, delay ...time.Duration) error {
	key := r.scoreKey(postID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = r.rdb.Del(context.Background(), key).Err()
		}()
	}
	return nil
}
