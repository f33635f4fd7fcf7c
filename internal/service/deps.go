package service

import (
	"context"
	"io"
	"time"

	"github.com/jimuelll/EchoSpace/internal/model"
)

// ImageStore 外部图片存储（Cloudinary 或本地目录）
type ImageStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (model.ImageRef, error)
	Destroy(ctx context.Context, ref model.ImageRef) error
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// ScoreCache 帖子得分缓存，可为 nil
type ScoreCache interface {
	GetScore(ctx context.Context, postID string) (int64, bool, error)
	SetScore(ctx context.Context, postID string, score int64) error
	DeleteScore(ctx context.Context, postID string, delay ...time.Duration) error
}
