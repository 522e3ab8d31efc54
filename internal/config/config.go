package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DriverPostgres 为生产环境使用的数据库驱动。
	DriverPostgres = "postgres"
	// DriverSQLite 用于本地开发与测试。
	DriverSQLite = "sqlite"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabaseDriver    string
	DatabaseURL       string
	DatabasePath      string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	JWTSecret         string
	JWTTTL            time.Duration
	SessionSecret     string
	GinMode           string
	UploadDir         string
	UploadURLPath     string
	MaxUploadBytes    int64
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
	SuperRootUserName string
	SuperRootPassword string
	SuperRootEmail    string
}

// LoadDotEnv 在存在 .env 文件时加载其中的变量，已存在的环境变量不会被覆盖。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOrDefault("PORT", "8080")

	listenAddr := envOrDefault("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	driver := strings.ToLower(envOrDefault("DATABASE_DRIVER", DriverPostgres))

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" && driver == DriverPostgres {
		databaseURL = buildPostgresDSN(
			envOrDefault("DB_HOST", "localhost"),
			envOrDefault("DB_PORT", "5432"),
			envOrDefault("DB_USER", "postgres"),
			strings.TrimSpace(os.Getenv("DB_PASSWORD")),
			envOrDefault("DB_NAME", "sitecms"),
			envOrDefault("DB_SSLMODE", "disable"),
		)
	}

	jwtTTL, err := time.ParseDuration(envOrDefault("JWT_TTL", "24h"))
	if err != nil || jwtTTL <= 0 {
		jwtTTL = 24 * time.Hour
	}

	maxUploadMB := envInt("MAX_UPLOAD_MB", 10)
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabaseDriver:    driver,
		DatabaseURL:       databaseURL,
		DatabasePath:      envOrDefault("DATABASE_PATH", "sitecms.db"),
		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:            jwtTTL,
		SessionSecret:     envOrDefault("SESSION_SECRET", "sitecms-dev-secret"),
		GinMode:           envOrDefault("GIN_MODE", "release"),
		UploadDir:         envOrDefault("UPLOAD_DIR", "uploads"),
		UploadURLPath:     "/" + strings.Trim(envOrDefault("UPLOAD_URL_PATH", "/uploads"), "/"),
		MaxUploadBytes:    int64(maxUploadMB) << 20,
		CORSOrigins:       splitList(envOrDefault("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:          strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		SuperRootUserName: strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
		SuperRootEmail:    strings.TrimSpace(os.Getenv("SUPER_ROOT_EMAIL")),
	}
}

// Validate 检查配置组合是否可用。
func (c AppConfig) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.JWTSecret == "" && c.GinMode == "release" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	return nil
}

// TokenSecret 返回签发令牌使用的密钥，开发模式下允许回退到会话密钥。
func (c AppConfig) TokenSecret() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}
	return c.SessionSecret
}

func buildPostgresDSN(host, port, user, password, name, sslMode string) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
