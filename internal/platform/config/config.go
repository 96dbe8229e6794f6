package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（SEO分析・alt属性生成用）
	OpenAI OpenAIConfig

	// クローラー設定
	Crawler CrawlerConfig

	// 自動化エンジン設定
	Automation AutomationConfig

	// スケジューラー設定
	Scheduler SchedulerConfig

	// プラットフォームアダプターサービス設定
	PlatformAPI PlatformAPIConfig

	// ログ設定
	LogLevel  string
	LogFormat string
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// CrawlerConfig はサイトクローラーの設定
type CrawlerConfig struct {
	MaxPages    int           // 1サイトあたりの最大クロールページ数
	MaxDepth    int           // リンク追跡の最大深度
	PageTimeout time.Duration // 1ページあたりの取得タイムアウト
	UserAgent   string
}

// AutomationConfig は自動化実行の設定
type AutomationConfig struct {
	MaxImagesPerRun int           // 1実行あたりのalt属性生成の上限
	PhaseTimeout    time.Duration // 各フェーズのネットワーク呼び出しタイムアウト
	AltTextProvider string        // alt属性生成の担当: "llm" または "platform"
}

// SchedulerConfig はバッチスケジューラーの設定
type SchedulerConfig struct {
	CronSchedule       string // Cron形式のスケジュール（例: "0 3 * * *" = 毎日3:00）
	MaxConcurrentUsers int    // 同時に処理するユーザー数の上限
}

// PlatformAPIConfig はプラットフォームアダプターサービスへの接続設定
// Shopify/WordPress等への実際の書き込みはこのサービスが担います
type PlatformAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "autopilot"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "autopilot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Crawler: CrawlerConfig{
			MaxPages:    getEnvAsInt("CRAWLER_MAX_PAGES", 25),
			MaxDepth:    getEnvAsInt("CRAWLER_MAX_DEPTH", 2),
			PageTimeout: getEnvAsDuration("CRAWLER_PAGE_TIMEOUT", 15*time.Second),
			UserAgent:   getEnv("CRAWLER_USER_AGENT", "seo-autopilot/1.0"),
		},
		Automation: AutomationConfig{
			MaxImagesPerRun: getEnvAsInt("AUTOMATION_MAX_IMAGES", 20),
			PhaseTimeout:    getEnvAsDuration("AUTOMATION_PHASE_TIMEOUT", 2*time.Minute),
			AltTextProvider: getEnv("ALT_TEXT_PROVIDER", "llm"),
		},
		Scheduler: SchedulerConfig{
			CronSchedule:       getEnv("SCHEDULER_CRON", "0 3 * * *"),
			MaxConcurrentUsers: getEnvAsInt("SCHEDULER_MAX_CONCURRENT_USERS", 4),
		},
		PlatformAPI: PlatformAPIConfig{
			BaseURL: getEnv("PLATFORM_API_URL", "http://localhost:8090"),
			Token:   getEnv("PLATFORM_API_TOKEN", ""),
			Timeout: getEnvAsDuration("PLATFORM_API_TIMEOUT", 90*time.Second),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数をtime.Durationとして取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
