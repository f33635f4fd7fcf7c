package main

import (
	"log"

	"github.com/jimuelll/EchoSpace/internal/config"
	"github.com/jimuelll/EchoSpace/internal/handler"
	"github.com/jimuelll/EchoSpace/internal/model"
	"github.com/jimuelll/EchoSpace/internal/pkg"
	"github.com/jimuelll/EchoSpace/internal/repository/database"
	"github.com/jimuelll/EchoSpace/internal/repository/redis"
	"github.com/jimuelll/EchoSpace/internal/router"
	"github.com/jimuelll/EchoSpace/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	// 自动建表
	if err := model.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	tokens, err := pkg.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	// 连接redis，未配置时不使用缓存
	var cache service.ScoreCache
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		cache = redis.NewScoreCacheRepository(rdb)
	} else {
		log.Println("REDIS_ADDR not set, score cache disabled")
	}

	var events service.EventPublisher = service.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		defer producer.Close()
		events = service.NewKafkaPublisher(producer)
	}

	var mailer service.Mailer = pkg.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	var store service.ImageStore
	uploadDir := ""
	if cfg.CloudinaryURL != "" {
		cld, err := pkg.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		store = cld
	} else {
		local, err := pkg.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatalf("upload dir: %v", err)
		}
		store = local
		uploadDir = local.Dir()
	}
	images := service.NewImageService(store)

	userSvc := service.NewUserService(db, tokens, mailer, images, events)
	communitySvc := service.NewCommunityService(db, images, events)
	postSvc := service.NewPostService(db, images, cache, events, cfg.PostRequiresMembership)
	voteSvc := service.NewVoteService(db, cache, events)

	// Gin
	r := router.InitRouter(router.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
		User:           handler.NewUserHandler(userSvc, cfg.CookieSecure, tokens.TTL()),
		Community:      handler.NewCommunityHandler(communitySvc),
		Post:           handler.NewPostHandler(postSvc),
		Vote:           handler.NewVoteHandler(voteSvc),
	})

	log.Printf("server listening on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
