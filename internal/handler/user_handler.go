package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jimuelll/EchoSpace/internal/middleware"
	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
	// cookie 设置
	secureCookie bool
	cookieTTL    time.Duration
}

// SignupReq 注册请求体
type SignupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserHandler(svc *service.UserService, secureCookie bool, cookieTTL time.Duration) *UserHandler {
	return &UserHandler{svc: svc, secureCookie: secureCookie, cookieTTL: cookieTTL}
}

func sessionBody(sess *service.Session) gin.H {
	return gin.H{
		"token": sess.Token,
		"id":    sess.User.ID,
		"name":  sess.User.Name,
		"email": sess.User.Email,
	}
}

func profileBody(u *model.User) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "imageUrl": u.ImageURL}
}

// Signup 注册接口
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	if _, err := h.svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		respondError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "verification code sent to email"})
}

func (h *UserHandler) Verify(c *gin.Context) {
	var req VerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	sess, err := h.svc.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, "verification", err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(sess))
}

func (h *UserHandler) Resend(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	if err := h.svc.Resend(c.Request.Context(), req.Email); err != nil {
		respondError(c, "resend", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "new verification code sent"})
}

// Login 登录接口，令牌同时写入 httpOnly cookie
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "login", err)
		return
	}

	h.setTokenCookie(c, sess.Token, int(h.cookieTTL.Seconds()))
	c.JSON(http.StatusOK, sessionBody(sess))
}

// Logout 只清 cookie，bearer 令牌无状态，到期前仍然有效
func (h *UserHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch user", err)
		return
	}
	c.JSON(http.StatusOK, profileBody(user))
}

func (h *UserHandler) UploadProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var user *model.User
	_, ok = receiveImage(c, "upload", func(ctx context.Context, filename string, size int64, r io.Reader) (model.ImageRef, error) {
		u, err := h.svc.UploadProfile(ctx, userID, filename, size, r)
		if err != nil {
			return model.ImageRef{}, err
		}
		user = u
		return model.ImageRef{URL: u.ImageURL, ID: u.ImageID}, nil
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imageUrl": user.ImageURL, "id": user.ImageID})
}

func (h *UserHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	// 前后端跨域部署，需要 SameSite=None
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookieName, value, maxAge, "/", "", h.secureCookie, true)
}
