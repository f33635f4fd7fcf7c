package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/pkg"
	"github.com/jimuelll/EchoSpace/internal/repository/database"

	"gorm.io/gorm"
)

const (
	joinCodeLength      = 6
	maxJoinCodeAttempts = 3
)

type CreateCommunityInput struct {
	Name   string
	Type   model.CommunityType
	Avatar model.ImageRef
}

type AuthorView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type PostView struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	ImageURL   string     `json:"imageUrl"`
	ImageID    string     `json:"imageId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Author     AuthorView `json:"author"`
	AuthorID   string     `json:"authorId"`
	Votes      int64      `json:"votes"`
	VoteStatus int        `json:"voteStatus"`
}

type CommunityView struct {
	Community *model.Community `json:"community"`
	Posts     []PostView       `json:"posts"`
	UserRole  *model.Role      `json:"userRole"`
}

type CommunityService struct {
	repo       *database.CommunityRepository
	memberRepo *database.MembershipRepository
	postRepo   *database.PostRepository
	images     *ImageService
	events     EventPublisher

	newCode func() (string, error)
}

func NewCommunityService(db *gorm.DB, images *ImageService, events EventPublisher) *CommunityService {
	return &CommunityService{
		repo:       &database.CommunityRepository{DB: db},
		memberRepo: &database.MembershipRepository{DB: db},
		postRepo:   &database.PostRepository{DB: db},
		images:     images,
		events:     events,
		newCode:    func() (string, error) { return pkg.RandBase36(joinCodeLength) },
	}
}

// Join 通过邀请码加入社区，重复加入返回 ErrAlreadyJoined
func (s *CommunityService) Join(ctx context.Context, userID, code string) (*model.Community, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrJoinCodeRequired
	}

	community, err := s.repo.FindByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidJoinCode
		}
		return nil, fmt.Errorf("find community by code: %w", err)
	}

	err = s.memberRepo.Create(ctx, &model.Membership{
		UserID:      userID,
		CommunityID: community.ID,
		Role:        model.RoleMember,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}

	publish(ctx, s.events, EventCommunityJoined, community.ID, map[string]any{"userId": userID})
	return community, nil
}

// Create 建社区，邀请码冲突时重新生成，最多 maxJoinCodeAttempts 次
func (s *CommunityService) Create(ctx context.Context, userID string, in CreateCommunityInput) (*model.Community, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrCommunityNameRequired
	}
	typ := in.Type
	if typ == "" {
		typ = model.CommunityPrivate
	}
	if !typ.Valid() {
		return nil, ErrInvalidCommunityType
	}

	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		community := &model.Community{
			Name:      name,
			Type:      typ,
			JoinCode:  code,
			AvatarURL: in.Avatar.URL,
			AvatarID:  in.Avatar.ID,
		}
		err = s.repo.Create(ctx, community, userID)
		if err == nil {
			publish(ctx, s.events, EventCommunityCreated, community.ID, map[string]any{
				"name": community.Name, "type": community.Type, "leaderId": userID,
			})
			return community, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create community: %w", err)
		}
	}
	return nil, ErrJoinCodeExhausted
}

// RoleOf 返回用户在社区中的角色，非成员返回 ok=false
func (s *CommunityService) RoleOf(ctx context.Context, userID, communityID string) (model.Role, bool, error) {
	if userID == "" {
		return "", false, nil
	}
	m, err := s.memberRepo.Find(ctx, userID, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find membership: %w", err)
	}
	return m.Role, true, nil
}

// Get 社区详情；viewerID 可为空（匿名访问）
func (s *CommunityService) Get(ctx context.Context, communityID, viewerID string) (*CommunityView, error) {
	community, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("find community: %w", err)
	}

	posts, err := s.postRepo.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	view := &CommunityView{Community: community, Posts: make([]PostView, 0, len(posts))}
	for i := range posts {
		view.Posts = append(view.Posts, toPostView(&posts[i], viewerID))
	}

	role, ok, err := s.RoleOf(ctx, viewerID, communityID)
	if err != nil {
		return nil, err
	}
	if ok {
		view.UserRole = &role
	}
	return view, nil
}

func toPostView(p *model.Post, viewerID string) PostView {
	v := PostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		ImageID:   p.ImageID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Author:    AuthorView{ID: p.Author.ID, Name: p.Author.Name, ImageURL: p.Author.ImageURL},
		AuthorID:  p.AuthorID,
	}
	for _, vote := range p.Votes {
		v.Votes += int64(vote.Value)
		if viewerID != "" && vote.UserID == viewerID {
			v.VoteStatus = vote.Value
		}
	}
	return v
}

// ListPublic page/size 任一 <=0 时返回全部
func (s *CommunityService) ListPublic(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 || size <= 0 {
		return s.repo.ListPublic(ctx, 0, 0)
	}
	if size > 50 {
		size = 50
	}
	return s.repo.ListPublic(ctx, (page-1)*size, size)
}

func (s *CommunityService) ListPrivate(ctx context.Context, userID string) ([]model.Community, error) {
	return s.repo.ListByMember(ctx, userID, model.CommunityPrivate)
}

// UploadAvatar 上传社区头像，返回的引用在 Create 时写入
func (s *CommunityService) UploadAvatar(ctx context.Context, filename string, size int64, r io.Reader) (model.ImageRef, error) {
	return s.images.Upload(ctx, FolderCommunities, filename, size, r)
}
