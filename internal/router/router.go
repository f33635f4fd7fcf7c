package router

import (
	"net/http"
	"time"

	"github.com/jimuelll/EchoSpace/internal/handler"
	"github.com/jimuelll/EchoSpace/internal/middleware"
	"github.com/jimuelll/EchoSpace/internal/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	Tokens         *pkg.TokenIssuer
	AllowedOrigins []string
	// UploadDir 非空时以 /uploads 提供本地图片
	UploadDir string

	User      *handler.UserHandler
	Community *handler.CommunityHandler
	Post      *handler.PostHandler
	Vote      *handler.VoteHandler
}

func InitRouter(opts Options) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.Auth(opts.Tokens)
	optionalAuth := middleware.OptionalAuth(opts.Tokens)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	// 用户相关接口
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", opts.User.Signup)
		authGroup.POST("/verify", opts.User.Verify)
		authGroup.POST("/resend", opts.User.Resend)
		authGroup.POST("/login", opts.User.Login)
		authGroup.POST("/logout", opts.User.Logout)
		authGroup.GET("/me", auth, opts.User.Me)
		authGroup.POST("/upload-profile", auth, opts.User.UploadProfile)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/community")
	{
		communityGroup.POST("/join", auth, opts.Community.Join)
		communityGroup.POST("/create", auth, opts.Community.Create)
		communityGroup.POST("/upload", auth, opts.Community.UploadAvatar)
		communityGroup.GET("/public", opts.Community.ListPublic)
		communityGroup.GET("/private", auth, opts.Community.ListPrivate)
		communityGroup.GET("/download/:filename", handler.Download(opts.UploadDir))
		communityGroup.GET("/:id", optionalAuth, opts.Community.Get)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(auth)
	{
		postGroup.POST("/create", opts.Post.CreatePost)
		postGroup.POST("/upload", opts.Post.UploadImage)
		postGroup.PATCH("/:id", opts.Post.EditPost)
		postGroup.DELETE("/:id", opts.Post.DeletePost)
	}

	// 投票相关接口
	voteGroup := r.Group("/api/vote")
	{
		voteGroup.POST("", auth, opts.Vote.Vote)
		voteGroup.GET("/:id/votes", opts.Vote.Voters)
		voteGroup.GET("/:id/score", opts.Vote.Score)
	}
	r.GET("/api/voteStatus", opts.Vote.Status)

	return r
}
