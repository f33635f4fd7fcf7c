package service

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
)

const (
	FolderPosts       = "echospace/posts"
	FolderCommunities = "echospace/communities"
	FolderProfiles    = "echospace/profiles"

	MaxImageSize = 5 * 1024 * 1024
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ImageService struct {
	store ImageStore
	// async 执行远端删除；测试里替换成同步执行
	async func(fn func())
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{
		store: store,
		async: func(fn func()) { go fn() },
	}
}

// Upload 校验扩展名与大小后上传到指定目录
func (s *ImageService) Upload(ctx context.Context, folder, filename string, size int64, r io.Reader) (model.ImageRef, error) {
	if r == nil || filename == "" {
		return model.ImageRef{}, ErrNoImage
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(filename))] {
		return model.ImageRef{}, ErrUnsupportedImage
	}
	if size > MaxImageSize {
		return model.ImageRef{}, ErrImageTooLarge
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	return s.store.Upload(ctx, folder, filename, r)
}

// Purge 异步删除远端图片；失败只记录日志，不回传给调用方
func (s *ImageService) Purge(ref model.ImageRef) {
	if s == nil || ref.Empty() {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := s.store.Destroy(ctx, ref); err != nil {
			log.Printf("[image] failed to delete image id=%s url=%s: %v", ref.ID, ref.URL, err)
			return
		}
		log.Printf("[image] deleted image id=%s", ref.ID)
	})
}
