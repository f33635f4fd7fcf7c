package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

type CreatePostReq struct {
	CommunityID string `json:"communityId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl"`
	ImageID     string `json:"imageId"`
}

// nullableString 区分字段缺失、显式 null 和字符串
type nullableString struct {
	Set   bool
	Null  bool
	Value string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// EditPostReq imageUrl 缺失表示保留，null 或空串表示清除，其他值表示替换
type EditPostReq struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	ImageURL nullableString `json:"imageUrl"`
	ImageID  string         `json:"imageId"`
}

func (r EditPostReq) imageOp() service.ImageOp {
	switch {
	case !r.ImageURL.Set:
		return service.KeepImage()
	case r.ImageURL.Null || r.ImageURL.Value == "":
		return service.ClearImage()
	default:
		return service.ReplaceImage(model.ImageRef{URL: r.ImageURL.Value, ID: r.ImageID})
	}
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	post, err := h.svc.Create(c.Request.Context(), userID, service.CreatePostInput{
		CommunityID: req.CommunityID,
		Title:       req.Title,
		Content:     req.Content,
		Image:       model.ImageRef{URL: req.ImageURL, ID: req.ImageID},
	})
	if err != nil {
		respondError(c, "create post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *PostHandler) EditPost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req EditPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	post, err := h.svc.Edit(c.Request.Context(), userID, c.Param("id"), service.EditPostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.imageOp(),
	})
	if err != nil {
		respondError(c, "update post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, "delete post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PostHandler) UploadImage(c *gin.Context) {
	ref, ok := receiveImage(c, "upload", h.svc.UploadImage)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": ref.URL, "id": ref.ID})
}
