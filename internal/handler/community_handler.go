package handler

import (
	"net/http"
	"strconv"

	"github.com/jimuelll/EchoSpace/internal/middleware"
	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	AvatarURL string `json:"avatarUrl"`
	AvatarID  string `json:"avatarId"`
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Join(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	community, err := h.svc.Join(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, "join community", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "community": community})
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	community, err := h.svc.Create(c.Request.Context(), userID, service.CreateCommunityInput{
		Name:   req.Name,
		Type:   model.CommunityType(req.Type),
		Avatar: model.ImageRef{URL: req.AvatarURL, ID: req.AvatarID},
	})
	if err != nil {
		respondError(c, "create community", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "community": community})
}

func (h *CommunityHandler) UploadAvatar(c *gin.Context) {
	ref, ok := receiveImage(c, "upload", h.svc.UploadAvatar)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": ref.URL, "id": ref.ID})
}

func (h *CommunityHandler) ListPublic(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListPublic(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, "fetch public communities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": list})
}

func (h *CommunityHandler) ListPrivate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListPrivate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch private communities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": list})
}

// Get 社区详情，未登录也可访问
func (h *CommunityHandler) Get(c *gin.Context) {
	viewerID, _ := middleware.UserID(c)

	view, err := h.svc.Get(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		respondError(c, "fetch community", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
