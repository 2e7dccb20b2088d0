package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
	RateLimit   float64 // requests per second per device
	RateBurst   int
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LLMConfig struct {
	Provider         string // gemini, openai or anthropic
	FallbackProvider string
	Timeout          time.Duration

	GeminiKey      string
	GeminiModel    string
	GeminiEndpoint string

	OpenAIKey   string
	OpenAIModel string

	AnthropicKey   string
	AnthropicModel string
}

type StorageConfig struct {
	Backend     string // memory, redis or postgres
	PersistMode string // local or queue
}

type CacheConfig struct {
	MaxBytes int64
	TTL      time.Duration
}

const (
	PersistLocal = "local"
	PersistQueue = "queue"
)

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	tokenTTL, err := getEnvDuration("PROMPTIA_TOKEN_TTL", 365*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid PROMPTIA_TOKEN_TTL: %w", err)
	}

	llmTimeout, err := getEnvDuration("LLM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	cacheBytes, err := getEnvInt("CACHE_MAX_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAX_BYTES: %w", err)
	}

	cacheTTL, err := getEnvDuration("CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("PROMPTIA_JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
		},
		LLM: LLMConfig{
			Provider:         getEnv("LLM_PROVIDER", "gemini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			Timeout:          llmTimeout,
			GeminiKey:        getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiEndpoint:   getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models"),
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "memory"),
			PersistMode: getEnv("PERSIST_MODE", PersistLocal),
		},
		Cache: CacheConfig{
			MaxBytes: int64(cacheBytes),
			TTL:      cacheTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks the settings the API server cannot run without.
// A missing LLM key is not an error: generation endpoints report it per request.
func (c *Config) Validate() error {
	var problems []string
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "PROMPTIA_JWT_SECRET is required")
	}
	switch c.Storage.Backend {
	case "memory", "redis":
	case "postgres":
		if c.Database.URL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND %q is not one of memory, redis, postgres", c.Storage.Backend))
	}
	switch c.Storage.PersistMode {
	case PersistLocal:
	case PersistQueue:
		if c.Storage.Backend == "memory" {
			problems = append(problems, "PERSIST_MODE=queue needs a shared storage backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("PERSIST_MODE %q is not one of local, queue", c.Storage.PersistMode))
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "anthropic":
	default:
		problems = append(problems, fmt.Sprintf("LLM_PROVIDER %q is not one of gemini, openai, anthropic", c.LLM.Provider))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
