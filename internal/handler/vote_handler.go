package handler

import (
	"net/http"

	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	svc *service.VoteService
}

type VoteReq struct {
	UserID string `json:"userId"`
	PostID string `json:"postId"`
	Value  *int   `json:"value"`
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Vote 投票接口，value 取 1 / -1 / 0(取消)
func (h *VoteHandler) Vote(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}

	var req VoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	if req.UserID == "" || req.PostID == "" {
		respondError(c, "process vote", service.ErrMissingVoteTarget)
		return
	}
	if req.Value == nil {
		respondError(c, "process vote", service.ErrInvalidVoteValue)
		return
	}

	score, err := h.svc.Cast(c.Request.Context(), actorID, req.UserID, req.PostID, *req.Value)
	if err != nil {
		respondError(c, "process vote", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "score": score})
}

func (h *VoteHandler) Voters(c *gin.Context) {
	voters, err := h.svc.Voters(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "fetch votes", err)
		return
	}
	c.JSON(http.StatusOK, voters)
}

func (h *VoteHandler) Score(c *gin.Context) {
	score, err := h.svc.Score(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "fetch score", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "score": score})
}

// Status 查询用户对帖子的投票
func (h *VoteHandler) Status(c *gin.Context) {
	value, err := h.svc.Status(c.Request.Context(), c.Query("userId"), c.Query("postId"))
	if err != nil {
		respondError(c, "fetch vote status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "value": value})
}
