package service

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
	rrepo "github.com/jimuelll/EchoSpace/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type voteFixture struct {
	db    *gorm.DB
	svc   *VoteService
	users []*model.User
	post  *model.Post
}

func newVoteFixture(t *testing.T, cache ScoreCache) *voteFixture {
	t.Helper()
	db := newTestDB(t)
	leader := seedUser(t, db, "leader")
	c := seedCommunity(t, db, leader, "VOTE01", model.CommunityPublic)
	post := seedPost(t, db, leader, c, model.ImageRef{})

	users := []*model.User{leader}
	for i := 0; i < 4; i++ {
		users = append(users, seedUser(t, db, "voter"+strconv.Itoa(i)))
	}
	return &voteFixture{
		db:    db,
		svc:   NewVoteService(db, cache, &fakePublisher{}),
		users: users,
		post:  post,
	}
}

func (f *voteFixture) rowsFor(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Vote{}).
		Where("user_id = ? AND post_id = ?", userID, f.post.ID).Count(&n).Error)
	return n
}

func TestCastUpvoteThenRepeatThenClear(t *testing.T) {
	f := newVoteFixture(t, nil)
	ctx := context.Background()
	u := f.users[1]

	score, err := f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)

	score, err = f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
	assert.Equal(t, int64(1), f.rowsFor(t, u.ID))

	score, err = f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)
	assert.Equal(t, int64(0), f.rowsFor(t, u.ID))
}

func TestCastZeroTwiceIsIdempotent(t *testing.T) {
	f := newVoteFixture(t, nil)
	ctx := context.Background()
	u := f.users[2]

	_, err := f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, -1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		score, err := f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), score)
		assert.Equal(t, int64(0), f.rowsFor(t, u.ID))
	}
}

func TestCastScoreAlwaysEqualsSum(t *testing.T) {
	f := newVoteFixture(t, nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	current := map[string]int{}

	for i := 0; i < 60; i++ {
		u := f.users[rng.Intn(len(f.users))]
		value := rng.Intn(3) - 1

		score, err := f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, value)
		require.NoError(t, err)
		current[u.ID] = value

		var want int64
		for _, v := range current {
			want += int64(v)
		}
		assert.Equal(t, want, score, "step %d", i)
		assert.LessOrEqual(t, f.rowsFor(t, u.ID), int64(1))

		status, err := f.svc.Status(ctx, u.ID, f.post.ID)
		require.NoError(t, err)
		assert.Equal(t, value, status)
	}
}

func TestCastRejectsBadInput(t *testing.T) {
	f := newVoteFixture(t, nil)
	ctx := context.Background()
	u := f.users[1]

	_, err := f.svc.Cast(ctx, u.ID, "", f.post.ID, 1)
	assert.ErrorIs(t, err, ErrMissingVoteTarget)

	_, err = f.svc.Cast(ctx, u.ID, u.ID, "", 1)
	assert.ErrorIs(t, err, ErrMissingVoteTarget)

	_, err = f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidVoteValue)

	_, err = f.svc.Cast(ctx, f.users[2].ID, u.ID, f.post.ID, 1)
	assert.ErrorIs(t, err, ErrVoteForbidden)

	_, err = f.svc.Cast(ctx, u.ID, u.ID, "missing-post", 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestVotersSplitsBySign(t *testing.T) {
	f := newVoteFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Cast(ctx, f.users[1].ID, f.users[1].ID, f.post.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Cast(ctx, f.users[2].ID, f.users[2].ID, f.post.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Cast(ctx, f.users[3].ID, f.users[3].ID, f.post.ID, -1)
	require.NoError(t, err)

	voters, err := f.svc.Voters(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Len(t, voters.Upvoters, 2)
	require.Len(t, voters.Downvoters, 1)
	assert.Equal(t, "voter2", voters.Downvoters[0].Name)

	empty, err := f.svc.Voters(ctx, "no-such-post")
	require.NoError(t, err)
	assert.Empty(t, empty.Upvoters)
	assert.Empty(t, empty.Downvoters)
}

func TestStatusDefaultsToZero(t *testing.T) {
	f := newVoteFixture(t, nil)

	v, err := f.svc.Status(context.Background(), f.users[1].ID, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = f.svc.Status(context.Background(), "", f.post.ID)
	assert.ErrorIs(t, err, ErrMissingVoteTarget)
}

func TestScoreReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := rrepo.NewScoreCacheRepository(rdb)

	f := newVoteFixture(t, cache)
	ctx := context.Background()
	u := f.users[1]
	key := rrepo.ScoreKeyPrefix + ":" + f.post.ID

	_, err := f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, 1)
	require.NoError(t, err)

	score, err := f.svc.Score(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", cached)

	// 投票后缓存失效
	_, err = f.svc.Cast(ctx, u.ID, u.ID, f.post.ID, -1)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	score, err = f.svc.Score(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), score)

	// 延迟双删之后再读一次，仍然正确
	time.Sleep(scoreInvalidateDelay + 100*time.Millisecond)
	score, err = f.svc.Score(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), score)

	_, err = f.svc.Score(ctx, "no-such-post")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCastConcurrentFirstVoteConflicts(t *testing.T) {
	f := newVoteFixture(t, nil)
	u := f.users[1]

	// 在 Find 之后、INSERT 之前插入同一 (user, post) 的投票，模拟并发请求先写入
	raced := false
	err := f.db.Callback().Create().Before("gorm:create").Register("test:rival_vote", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "votes" {
			return
		}
		raced = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO votes (id, user_id, post_id, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			"rival-vote", u.ID, f.post.ID, -1, now, now,
		)
	})
	require.NoError(t, err)

	_, err = f.svc.Cast(context.Background(), u.ID, u.ID, f.post.ID, 1)
	assert.True(t, raced)
	assert.ErrorIs(t, err, ErrVoteConflict)
	assert.LessOrEqual(t, f.rowsFor(t, u.ID), int64(1))
}
