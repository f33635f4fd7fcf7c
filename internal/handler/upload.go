package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

// UploadField multipart 表单里图片字段名
const UploadField = "image"

type uploadFunc func(ctx context.Context, filename string, size int64, r io.Reader) (model.ImageRef, error)

// receiveImage 读取 multipart 图片并交给 upload；返回 false 时已写响应
func receiveImage(c *gin.Context, op string, upload uploadFunc) (model.ImageRef, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+1<<20)

	fh, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, op, service.ErrImageTooLarge)
			return model.ImageRef{}, false
		}
		respondError(c, op, service.ErrNoImage)
		return model.ImageRef{}, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, op, err)
		return model.ImageRef{}, false
	}
	defer f.Close()

	ref, err := upload(c.Request.Context(), fh.Filename, fh.Size, f)
	if err != nil {
		respondError(c, op, err)
		return model.ImageRef{}, false
	}
	return ref, true
}
