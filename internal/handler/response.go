package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/jimuelll/EchoSpace/internal/middleware"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

var errStatus = []struct {
	err    error
	status int
}{
	{service.ErrMissingFields, http.StatusBadRequest},
	{service.ErrEmailInUse, http.StatusBadRequest},
	{service.ErrInvalidRequest, http.StatusBadRequest},
	{service.ErrInvalidCode, http.StatusBadRequest},
	{service.ErrPasswordTooLong, http.StatusBadRequest},
	{service.ErrCommunityNameRequired, http.StatusBadRequest},
	{service.ErrInvalidCommunityType, http.StatusBadRequest},
	{service.ErrJoinCodeRequired, http.StatusBadRequest},
	{service.ErrMissingVoteTarget, http.StatusBadRequest},
	{service.ErrInvalidVoteValue, http.StatusBadRequest},
	{service.ErrNoImage, http.StatusBadRequest},
	{service.ErrUnsupportedImage, http.StatusBadRequest},
	{service.ErrImageTooLarge, http.StatusBadRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},

	{service.ErrNotAuthor, http.StatusForbidden},
	{service.ErrNoPermission, http.StatusForbidden},
	{service.ErrNotMember, http.StatusForbidden},
	{service.ErrVoteForbidden, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrCommunityNotFound, http.StatusNotFound},
	{service.ErrInvalidJoinCode, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},

	{service.ErrAlreadyJoined, http.StatusConflict},
	{service.ErrVoteConflict, http.StatusConflict},
}

// respondError 已知错误映射为对应状态码，其余记录日志后返回 500 "<op> failed"
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmailUnverified):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "unverified": true})
		return
	case errors.Is(err, service.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "unverified": true})
		return
	}

	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}

	log.Printf("%s error: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// currentUser 受 Auth 保护的路由一定能取到；取不到按未登录处理
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	}
	return userID, ok
}
