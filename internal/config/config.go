package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	GinMode    string

	DBDriver    string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	CloudinaryURL string
	UploadDir     string

	AllowedOrigins         []string
	PostRequiresMembership bool
}

// LoadConfig 非生产环境先加载 .env，再读取环境变量
func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not loaded, continuing with environment variables")
		}
	}

	return Config{
		ServerAddr: getEnv("SERVER_ADDR", ":3001"),
		GinMode:    os.Getenv("GIN_MODE"),

		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN: getEnv("DATABASE_DSN", "user:password@tcp(127.0.0.1:3306)/echospace?charset=utf8mb4&parseTime=True"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "echospace.events"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     time.Duration(getInt("TOKEN_TTL_HOURS", 7*24)) * time.Hour,
		CookieSecure: getBool("COOKIE_SECURE", true),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", `"EchoSpace" <no-reply@echospace.local>`),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),

		AllowedOrigins:         splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5174,https://echo-space-b9t4.vercel.app")),
		PostRequiresMembership: getBool("POST_REQUIRES_MEMBERSHIP", true),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
