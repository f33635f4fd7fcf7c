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
	"github.com/jimuelll/EchoSpace/internal/pkg"
	"github.com/jimuelll/EchoSpace/internal/repository/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// CodeTTL 邮箱验证码有效期
	CodeTTL = 15 * time.Minute
	// bcrypt 只接受 72 字节以内的密码
	maxPasswordBytes = 72
)

type Session struct {
	Token string
	User  *model.User
}

type UserService struct {
	repo   *database.UserRepository
	tokens *pkg.TokenIssuer
	mailer Mailer
	images *ImageService
	events EventPublisher

	now     func() time.Time
	newCode func() (string, error)
}

func NewUserService(db *gorm.DB, tokens *pkg.TokenIssuer, mailer Mailer, images *ImageService, events EventPublisher) *UserService {
	return &UserService{
		repo:    &database.UserRepository{DB: db},
		tokens:  tokens,
		mailer:  mailer,
		images:  images,
		events:  events,
		now:     time.Now,
		newCode: func() (string, error) { return pkg.RandDigits(6) },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 创建未验证用户并发送验证码；邮件失败不影响注册结果
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsVerified {
			return nil, ErrEmailUnverified
		}
		return nil, ErrEmailInUse
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(CodeTTL)

	user := &model.User{
		Name:             name,
		Email:            email,
		Password:         string(hash),
		VerificationCode: &code,
		CodeExpiresAt:    &expires,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendCode(user.Email, code)
	publish(ctx, s.events, EventUserSignedUp, user.ID, map[string]any{"email": user.Email})
	return user, nil
}

// Verify 校验验证码，成功后签发令牌
func (s *UserService) Verify(ctx context.Context, email, code string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user.IsVerified {
		return nil, ErrInvalidRequest
	}
	if !user.CodeValid(code, s.now()) {
		return nil, ErrInvalidCode
	}

	if err := s.repo.MarkVerified(ctx, user); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.IsVerified = true
	user.VerificationCode = nil
	user.CodeExpiresAt = nil

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventUserVerified, user.ID, nil)
	return &Session{Token: token, User: user}, nil
}

// Resend 为未验证用户重新生成验证码
func (s *UserService) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidRequest
		}
		return fmt.Errorf("find user by email: %w", err)
	}
	if user.IsVerified {
		return ErrInvalidRequest
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	expires := s.now().Add(CodeTTL)
	if err := s.repo.SetVerificationCode(ctx, user, code, expires); err != nil {
		return fmt.Errorf("set verification code: %w", err)
	}
	s.sendCode(user.Email, code)
	return nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UploadProfile 上传并替换头像，旧图异步删除
func (s *UserService) UploadProfile(ctx context.Context, userID, filename string, size int64, r io.Reader) (*model.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref, err := s.images.Upload(ctx, FolderProfiles, filename, size, r)
	if err != nil {
		return nil, err
	}
	old := model.ImageRef{URL: user.ImageURL, ID: user.ImageID}

	if err := s.repo.UpdateImage(ctx, user, ref); err != nil {
		s.images.Purge(ref)
		return nil, fmt.Errorf("update profile image: %w", err)
	}
	user.ImageURL, user.ImageID = ref.URL, ref.ID

	if old != ref {
		s.images.Purge(old)
	}
	return user, nil
}

func (s *UserService) sendCode(email, code string) {
	if s.mailer == nil {
		return
	}
	body := pkg.VerificationEmailHTML(code, CodeTTL)
	if err := s.mailer.Send(email, "Your EchoSpace verification code", body); err != nil {
		log.Printf("[mail] send verification code to %s failed: %v", email, err)
	}
}
