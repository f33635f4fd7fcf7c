package service

import (
	"bytes"
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/repository/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接都是独立的库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, model.Migrate(db))
	return db
}

type fakeStore struct {
	mu         sync.Mutex
	uploads    []string
	destroyed  []model.ImageRef
	destroyErr error
}

func (f *fakeStore) Upload(_ context.Context, folder, filename string, r io.Reader) (model.ImageRef, error) {
	if _, err := io.ReadAll(r); err != nil {
		return model.ImageRef{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, folder+"/"+filename)
	return model.ImageRef{URL: "https://img.test/" + folder + "/" + filename, ID: folder + "/" + filename}, nil
}

func (f *fakeStore) Destroy(_ context.Context, ref model.ImageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, ref)
	return f.destroyErr
}

func (f *fakeStore) Destroyed() []model.ImageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ImageRef(nil), f.destroyed...)
}

// newSyncImages 同步执行删除，方便断言
func newSyncImages(store ImageStore) *ImageService {
	s := NewImageService(store)
	s.async = func(fn func()) { fn() }
	return s
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return m.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *fakePublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@echo.test", Password: "x", IsVerified: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCommunity(t *testing.T, db *gorm.DB, leader *model.User, code string, typ model.CommunityType) *model.Community {
	t.Helper()
	c := &model.Community{Name: "c-" + code, Type: typ, JoinCode: code}
	repo := &database.CommunityRepository{DB: db}
	require.NoError(t, repo.Create(context.Background(), c, leader.ID))
	return c
}

func seedMember(t *testing.T, db *gorm.DB, u *model.User, c *model.Community, role model.Role) {
	t.Helper()
	repo := &database.MembershipRepository{DB: db}
	require.NoError(t, repo.Create(context.Background(), &model.Membership{UserID: u.ID, CommunityID: c.ID, Role: role}))
}

func seedPost(t *testing.T, db *gorm.DB, author *model.User, c *model.Community, image model.ImageRef) *model.Post {
	t.Helper()
	p := &model.Post{CommunityID: c.ID, AuthorID: author.ID, Title: "t", Content: "hello", ImageURL: image.URL, ImageID: image.ID}
	repo := &database.PostRepository{DB: db}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

// brokenCache 每个操作都失败
type brokenCache struct {
	err error
}

func (b brokenCache) GetScore(context.Context, string) (int64, bool, error) {
	return 0, false, b.err
}

func (b brokenCache) SetScore(context.Context, string, int64) error {
	return b.err
}

func (b brokenCache) DeleteScore(context.Context, string, ...time.Duration) error {
	return b.err
}

// captureLog 把标准 log 输出重定向到缓冲区，测试结束时恢复
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}
