package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Match     MatchConfig     `mapstructure:"match"`
	Scale     ScaleConfig     `mapstructure:"scale"`
	Gap       GapConfig       `mapstructure:"gap"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	LogLevel  string          `mapstructure:"log_level"`
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

// CorpusConfig 食譜語料庫設定
type CorpusConfig struct {
	Path     string        `mapstructure:"path"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// MatchConfig 比對與排序設定
type MatchConfig struct {
	MaxResults int `mapstructure:"max_results"`
	MinMatches int `mapstructure:"min_matches"`
}

// ScaleConfig 份量縮放範圍
type ScaleConfig struct {
	MinServings    int `mapstructure:"min_servings"`
	MaxServings    int `mapstructure:"max_servings"`
	MinServingSize int `mapstructure:"min_serving_size"`
	MaxServingSize int `mapstructure:"max_serving_size"`
}

// GapConfig 缺料建議設定
type GapConfig struct {
	MaxSuggestions       int     `mapstructure:"max_suggestions"`
	MaxRecipeSuggestions int     `mapstructure:"max_recipe_suggestions"`
	AlmostThreshold      float64 `mapstructure:"almost_threshold"`
	MaxMissing           int     `mapstructure:"max_missing"`
}

// GeneratorConfig 生成式備援設定
type GeneratorConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StoreConfig 生成食譜暫存設定
type StoreConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Burst    int           `mapstructure:"burst"`
}

// 生成器種類
const (
	ProviderOpenRouter = "openrouter"
	ProviderProcedural = "procedural"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("generator.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("generator.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("generator.provider", "GENERATOR_PROVIDER")
	_ = v.BindEnv("generator.timeout", "GENERATOR_TIMEOUT")
	_ = v.BindEnv("corpus.path", "CORPUS_PATH")
	_ = v.BindEnv("corpus.watch", "CORPUS_WATCH")
	_ = v.BindEnv("store.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("store.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 未指定生成器時，有金鑰走 OpenRouter，否則使用離線程序化生成
	if config.Generator.Provider == "" {
		if config.Generator.APIKey != "" {
			config.Generator.Provider = ProviderOpenRouter
		} else {
			config.Generator.Provider = ProviderProcedural
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "fridge-recommender")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("corpus.path", "data/recipes.json")
	v.SetDefault("corpus.watch", false)
	v.SetDefault("corpus.debounce", "250ms")

	v.SetDefault("match.max_results", 5)
	v.SetDefault("match.min_matches", 1)

	v.SetDefault("scale.min_servings", 1)
	v.SetDefault("scale.max_servings", 20)
	v.SetDefault("scale.min_serving_size", 50)
	v.SetDefault("scale.max_serving_size", 1000)

	v.SetDefault("gap.max_suggestions", 5)
	v.SetDefault("gap.max_recipe_suggestions", 2)
	v.SetDefault("gap.almost_threshold", 0.7)
	v.SetDefault("gap.max_missing", 3)

	v.SetDefault("generator.provider", "")
	v.SetDefault("generator.model", "google/gemini-2.5-flash")
	v.SetDefault("generator.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generator.max_tokens", 2048)
	v.SetDefault("generator.temperature", 0.7)
	v.SetDefault("generator.timeout", "30s")

	v.SetDefault("store.ttl", "24h")
	v.SetDefault("store.max_size", 1000)
	v.SetDefault("store.cleanup_interval", "10m")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}

	if config.Match.MaxResults <= 0 {
		return fmt.Errorf("invalid match max results")
	}
	if config.Match.MinMatches <= 0 {
		return fmt.Errorf("invalid match min matches")
	}

	s := config.Scale
	if s.MinServings <= 0 || s.MinServings > s.MaxServings {
		return fmt.Errorf("invalid servings range %d-%d", s.MinServings, s.MaxServings)
	}
	if s.MinServingSize <= 0 || s.MinServingSize > s.MaxServingSize {
		return fmt.Errorf("invalid serving size range %d-%d", s.MinServingSize, s.MaxServingSize)
	}

	if config.Gap.AlmostThreshold <= 0 || config.Gap.AlmostThreshold > 1 {
		return fmt.Errorf("gap almost threshold must be in (0, 1]")
	}
	if config.Gap.MaxSuggestions < 0 || config.Gap.MaxRecipeSuggestions < 0 {
		return fmt.Errorf("invalid gap suggestion limits")
	}

	switch config.Generator.Provider {
	case ProviderOpenRouter:
		if config.Generator.APIKey == "" {
			return fmt.Errorf("openrouter provider requires an api key")
		}
	case ProviderProcedural:
	default:
		return fmt.Errorf("unknown generator provider %q", config.Generator.Provider)
	}
	if config.Generator.Timeout <= 0 {
		return fmt.Errorf("invalid generator timeout")
	}

	if config.Store.MaxSize <= 0 {
		return fmt.Errorf("invalid store max size")
	}
	if config.Store.TTL <= 0 || config.Store.CleanupInterval <= 0 {
		return fmt.Errorf("invalid store ttl or cleanup interval")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
