package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Data        DataConfig      `mapstructure:"data"`
	Selector    SelectorConfig  `mapstructure:"selector"`
	Selection   SelectionConfig `mapstructure:"selection"`
	Session     SessionConfig   `mapstructure:"session"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// 配對資料來源
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceRemote   = "remote"
)

// DataConfig 靜態配對資料設定
type DataConfig struct {
	Source            string        `mapstructure:"source"`
	BasePairs         string        `mapstructure:"base_pairs"`
	ExperimentalPairs string        `mapstructure:"experimental_pairs"`
	Profiles          string        `mapstructure:"profiles"`
	RemoteTimeout     time.Duration `mapstructure:"remote_timeout"`
	RemoteRetries     int           `mapstructure:"remote_retries"`
}

// SelectorConfig 隨機選取引擎設定
type SelectorConfig struct {
	MaxAttempts int    `mapstructure:"max_attempts"`
	Seed        uint64 `mapstructure:"seed"`
	DefaultMode string `mapstructure:"default_mode"`
}

// SelectionConfig 選取狀態設定
type SelectionConfig struct {
	MaxSize       int `mapstructure:"max_size"`
	DefaultTarget int `mapstructure:"default_target"`
	HistoryLimit  int `mapstructure:"history_limit"`
}

// SessionConfig session 儲存設定
type SessionConfig struct {
	MaxSessions     int           `mapstructure:"max_sessions"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig session 快照持久化設定
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MetricsConfig Prometheus 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為選用
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("data.source", "PAIRING_DATA_SOURCE")
	_ = v.BindEnv("data.base_pairs", "PAIRING_BASE_PAIRS")
	_ = v.BindEnv("data.experimental_pairs", "PAIRING_EXPERIMENTAL_PAIRS")
	_ = v.BindEnv("data.profiles", "PAIRING_PROFILES")
	_ = v.BindEnv("selector.seed", "SELECTOR_SEED")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "flavor-pairing")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 配對資料
	v.SetDefault("data.source", SourceEmbedded)
	v.SetDefault("data.base_pairs", "")
	v.SetDefault("data.experimental_pairs", "")
	v.SetDefault("data.profiles", "")
	v.SetDefault("data.remote_timeout", "10s")
	v.SetDefault("data.remote_retries", 2)

	// 選取引擎
	v.SetDefault("selector.max_attempts", 200)
	v.SetDefault("selector.seed", 0)
	v.SetDefault("selector.default_mode", "perfect")

	// 選取狀態
	v.SetDefault("selection.max_size", 5)
	v.SetDefault("selection.default_target", 3)
	v.SetDefault("selection.history_limit", 50)

	// session 設定
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cleanup_interval", "10m")

	// redis 設定
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "pairing:session:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("dedup_window", "500ms")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Data.Source {
	case SourceEmbedded:
	case SourceFile, SourceRemote:
		if config.Data.BasePairs == "" {
			return fmt.Errorf("data.base_pairs is required for source %q", config.Data.Source)
		}
	default:
		return fmt.Errorf("invalid data source %q", config.Data.Source)
	}

	if config.Selector.MaxAttempts <= 0 {
		return fmt.Errorf("invalid selector max attempts")
	}
	switch config.Selector.DefaultMode {
	case "perfect", "mixed", "random":
	default:
		return fmt.Errorf("invalid selector default mode %q", config.Selector.DefaultMode)
	}

	if config.Selection.MaxSize <= 0 {
		return fmt.Errorf("invalid selection max size")
	}
	if config.Selection.DefaultTarget < 0 || config.Selection.DefaultTarget > config.Selection.MaxSize {
		return fmt.Errorf("selection default target must be within 0..%d", config.Selection.MaxSize)
	}
	if config.Selection.HistoryLimit <= 0 {
		return fmt.Errorf("invalid selection history limit")
	}

	if config.Session.MaxSessions <= 0 {
		return fmt.Errorf("invalid session max sessions")
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}
	if config.Session.CleanupInterval <= 0 {
		return fmt.Errorf("invalid session cleanup interval")
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	if config.Redis.Enabled && config.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}

	return nil
}
