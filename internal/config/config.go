package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// placeholderAPIKey 示例配置中的占位 Key，视同未配置
const placeholderAPIKey = "YOUR_API_KEY_HERE"

// Config 应用配置
type Config struct {
	Env       string `validate:"oneof=development production test"`
	AppSecret string `validate:"required,min=16"`
	Port      string `validate:"required,numeric"`
	SiteName  string `validate:"required"`
	SiteUrl   string `validate:"required,url"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	// TMDB 上游配置
	TMDBAPIKey           string
	TMDBBaseURL          string `validate:"required,url"`
	TMDBImageBaseURL     string `validate:"required,url"`
	TMDBLanguage         string `validate:"required"`
	TMDBFallbackLanguage string `validate:"required"`
	WatchRegion          string `validate:"required,len=2"`

	CacheTTL        time.Duration `validate:"gte=0"`
	SearchRateLimit int           `validate:"gte=0"` // 每客户端每分钟搜索次数，0 表示不限制
}

// Load 加载配置
func Load() *Config {
	cacheMinutes := getEnvInt("CACHE_TTL_MINUTES", 60)
	searchLimit := getEnvInt("SEARCH_RATE_LIMIT", 120)

	appSecret := getEnv("APP_SECRET", "your-secret-key-change-in-production")
	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:                  getEnv("APP_ENV", "development"),
		AppSecret:            appSecret,
		Port:                 getEnv("PORT", "5005"),
		SiteName:             getEnv("SITE_NAME", "ARD CINEMA"),
		SiteUrl:              getEnv("SITE_URL", "http://localhost:5005"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		TMDBAPIKey:           getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:          getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageBaseURL:     getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
		TMDBLanguage:         getEnv("TMDB_LANGUAGE", "ja-JP"),
		TMDBFallbackLanguage: getEnv("TMDB_FALLBACK_LANGUAGE", "en-US"),
		WatchRegion:          getEnv("WATCH_REGION", "JP"),
		CacheTTL:             time.Duration(cacheMinutes) * time.Minute,
		SearchRateLimit:      searchLimit,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// HasTMDBKey 是否配置了可用的 TMDB API Key
func (c *Config) HasTMDBKey() bool {
	return c.TMDBAPIKey != "" && c.TMDBAPIKey != placeholderAPIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 读取整数环境变量，无法解析时使用默认值
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("【警告】环境变量 %s=%q 不是整数，使用默认值 %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
