package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/jimuelll/EchoSpace/internal/model"
)

var ErrImageDestroyFailed = errors.New("image destroy failed")

// PublicName 由原文件名生成可读且唯一的名字：slug-短uuid
func PublicName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := slug.Make(base)
	if s == "" {
		s = "image"
	}
	return fmt.Sprintf("%s-%s", s, uuid.NewString()[:8])
}

func boolPtr(b bool) *bool {
	return &b
}

// CloudinaryStore 图片存 Cloudinary，ID 为 public_id
type CloudinaryStore struct {
	cld *cld.Cloudinary
}

func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	c, err := cld.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: c}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (model.ImageRef, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         folder,
		PublicID:       PublicName(filename),
		ResourceType:   "image",
		UniqueFilename: boolPtr(false),
		Overwrite:      boolPtr(false),
	})
	if err != nil {
		return model.ImageRef{}, err
	}
	if res.Error.Message != "" {
		return model.ImageRef{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return model.ImageRef{URL: res.SecureURL, ID: res.PublicID}, nil
}

// Destroy 按 public_id 删除；没有 ID 的旧数据无从删除，直接跳过
func (s *CloudinaryStore) Destroy(ctx context.Context, ref model.ImageRef) error {
	if ref.ID == "" {
		return nil
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     ref.ID,
		ResourceType: "image",
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrImageDestroyFailed, res.Error.Message)
	}
	// "not found" 也视为已删除
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("%w: %s", ErrImageDestroyFailed, res.Result)
	}
	return nil
}

// LocalStore 开发环境下把图片写到本地目录，由 /uploads 静态路由提供访问
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(_ context.Context, folder, filename string, r io.Reader) (model.ImageRef, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s-%d%s", PublicName(filename), time.Now().UnixMilli(), ext)
	if folder != "" {
		name = slug.Make(path.Base(folder)) + "-" + name
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return model.ImageRef{}, err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return model.ImageRef{}, err
	}
	if err = f.Close(); err != nil {
		return model.ImageRef{}, err
	}
	return model.ImageRef{URL: s.urlPrefix + "/" + name, ID: name}, nil
}

func (s *LocalStore) Destroy(_ context.Context, ref model.ImageRef) error {
	name := ref.ID
	if name == "" {
		name = path.Base(ref.URL)
	}
	name = filepath.Base(name)
	if name == "" || name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
