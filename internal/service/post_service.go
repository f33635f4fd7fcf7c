package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/repository/database"

	"gorm.io/gorm"
)

type ImageOpKind int

const (
	ImageKeep ImageOpKind = iota
	ImageClear
	ImageReplace
)

// ImageOp 编辑帖子时对图片的处理：保留 / 清空 / 替换
type ImageOp struct {
	Kind ImageOpKind
	Ref  model.ImageRef
}

func KeepImage() ImageOp { return ImageOp{Kind: ImageKeep} }
func ClearImage() ImageOp { return ImageOp{Kind: ImageClear} }
func ReplaceImage(ref model.ImageRef) ImageOp { return ImageOp{Kind: ImageReplace, Ref: ref} }

type CreatePostInput struct {
	CommunityID string
	Title       string
	Content     string
	Image       model.ImageRef
}

type EditPostInput struct {
	Title   *string
	Content *string
	Image   ImageOp
}

type PostService struct {
	repo          *database.PostRepository
	userRepo      *database.UserRepository
	communityRepo *database.CommunityRepository
	memberRepo    *database.MembershipRepository
	images        *ImageService
	cache         ScoreCache
	events        EventPublisher

	// requireMembership 为 false 时任何已登录用户都能在社区发帖
	requireMembership bool
}

func NewPostService(db *gorm.DB, images *ImageService, cache ScoreCache, events EventPublisher, requireMembership bool) *PostService {
	return &PostService{
		repo:              &database.PostRepository{DB: db},
		userRepo:          &database.UserRepository{DB: db},
		communityRepo:     &database.CommunityRepository{DB: db},
		memberRepo:        &database.MembershipRepository{DB: db},
		images:            images,
		cache:             cache,
		events:            events,
		requireMembership: requireMembership,
	}
}

func (s *PostService) Create(ctx context.Context, userID string, in CreatePostInput) (*model.Post, error) {
	if in.CommunityID == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find author: %w", err)
	}
	if _, err := s.communityRepo.FindByID(ctx, in.CommunityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("find community: %w", err)
	}

	// 判断是否是 community 成员
	if s.requireMembership {
		ok, err := s.memberRepo.IsMember(ctx, userID, in.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if !ok {
			return nil, ErrNotMember
		}
	}

	post := &model.Post{
		CommunityID: in.CommunityID,
		AuthorID:    userID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		ImageURL:    in.Image.URL,
		ImageID:     in.Image.ID,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	publish(ctx, s.events, EventPostCreated, post.ID, map[string]any{
		"communityId": post.CommunityID, "authorId": post.AuthorID,
	})
	return post, nil
}

// Edit 只有作者可以编辑；图片按 ImageOp 处理，旧图在写库之后异步删除
func (s *PostService) Edit(ctx context.Context, userID, postID string, in EditPostInput) (*model.Post, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, ErrMissingFields
		}
		fields["content"] = *in.Content
	}

	var stale model.ImageRef
	old := post.Image()
	switch in.Image.Kind {
	case ImageClear:
		fields["image_url"] = ""
		fields["image_id"] = ""
		stale = old
	case ImageReplace:
		if in.Image.Ref.URL == "" {
			return nil, ErrMissingFields
		}
		fields["image_url"] = in.Image.Ref.URL
		fields["image_id"] = in.Image.Ref.ID
		if old != in.Image.Ref {
			stale = old
		}
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := s.repo.Update(ctx, postID, fields); err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
	}

	s.images.Purge(stale)

	updated, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventPostUpdated, postID, nil)
	return updated, nil
}

// Delete 作者或社区 LEADER/MODERATOR 可删除；帖子与投票同事务删除，图片随后异步清理
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		m, err := s.memberRepo.Find(ctx, userID, post.CommunityID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNoPermission
		case err != nil:
			return fmt.Errorf("find membership: %w", err)
		case !m.Role.CanModerate():
			return ErrNoPermission
		}
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteScore(ctx, postID); err != nil {
			log.Printf("[post] cache invalidate post=%s: %v", postID, err)
		}
	}
	s.images.Purge(post.Image())
	publish(ctx, s.events, EventPostDeleted, postID, map[string]any{"deletedBy": userID})
	return nil
}

func (s *PostService) find(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

func (s *PostService) UploadImage(ctx context.Context, filename string, size int64, r io.Reader) (model.ImageRef, error) {
	return s.images.Upload(ctx, FolderPosts, filename, size, r)
}
