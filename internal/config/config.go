// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Identity provider (Supabase Auth)
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string // 未設定の場合、プロフィール更新は利用不可

	// Evaluation provider (Groq, OpenAI互換API)
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// History store
	DatabaseURL string

	// TestMode が有効な場合、評価APIを呼ばず決定的なテンプレートを返す
	TestMode bool

	// SecretKey は付随的な署名用シークレット。認証フロー自体では使用しない。
	SecretKey string

	// RolePromptPath はロールプロンプトの上書きファイルパス（任意）
	RolePromptPath string

	// Upstream
	UpstreamTimeout time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitAnalyze int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルがあれば先に読み込む（未存在は無視）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .env はローカル開発用の便宜。既存の環境変数は上書きしない。
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}

	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	if cfg.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TestMode = getEnvBool("TEST_MODE", false)

	// 評価APIキーはTEST_MODE時のみ省略可
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	if cfg.GroqAPIKey == "" && !cfg.TestMode {
		missing = append(missing, "GROQ_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SupabaseServiceRoleKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	cfg.GroqModel = getEnvString("GROQ_MODEL", "openai/gpt-oss-20b")
	cfg.GroqBaseURL = getEnvString("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	cfg.SecretKey = getEnvString("SECRET_KEY", "supersecretkey")
	cfg.RolePromptPath = os.Getenv("ROLE_PROMPT_PATH")
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAnalyze = getEnvInt("RATE_LIMIT_ANALYZE", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "5000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	// "true" のみを真として扱う
	return v == "true"
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
