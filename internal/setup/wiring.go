package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/cache"
	"github.com/secureproxy/validation-gateway/internal/classifier"
	"github.com/secureproxy/validation-gateway/internal/classifier/bedrock"
	"github.com/secureproxy/validation-gateway/internal/config"
	"github.com/secureproxy/validation-gateway/internal/models"
	"github.com/secureproxy/validation-gateway/internal/rules"
	"github.com/secureproxy/validation-gateway/internal/validation"
)

type Config struct {
	Port                 string
	LogLevel             string
	DefaultSecurityLevel string

	RedisAddr       string
	RedisPassword   string
	TextTTLSeconds  int
	FileTTLSeconds  int
	CacheTTLSeconds int

	ClassifierProvider       string
	ClassifierTimeoutSeconds int
	AWSRegion                string
	ClaudeModelID            string

	StreamProvider string
	StreamName     string
	StreamGroup    string
}

type Dependencies struct {
	Service *validation.Service
	Engine  *rules.Engine
	Store   *cache.Store
	Logger  *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("VALIDATION_API_PORT", "18080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DefaultSecurityLevel: getEnv("DEFAULT_SECURITY_LEVEL", "medium"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		TextTTLSeconds:  getEnvInt("CACHE_TEXT_TTL_SECONDS", 1800),
		FileTTLSeconds:  getEnvInt("CACHE_FILE_TTL_SECONDS", 7200),
		CacheTTLSeconds: getEnvInt("CACHE_DEFAULT_TTL_SECONDS", 3600),

		ClassifierProvider:       getEnv("CLASSIFIER_PROVIDER", "bedrock"),
		ClassifierTimeoutSeconds: getEnvInt("CLASSIFIER_TIMEOUT_SECONDS", 8),
		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:            getEnv("CLAUDE_MODEL_ID", ""),

		StreamProvider: getEnv("STREAM_PROVIDER", "redis"),
		StreamName:     getEnv("VALIDATION_STREAM", "validation-events"),
		StreamGroup:    getEnv("VALIDATION_GROUP", "validation-group"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	rulesConfig, err := config.LoadRulesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules config: %w", err)
	}

	engine, err := rules.NewEngine(rulesConfig.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule tables: %w", err)
	}
	keywords := rules.NewKeywordMatcher(rulesConfig.HarmfulKeywords)

	// Classifier. An unconfigured provider still gets an adapter so every
	// level degrades the same way: fail open, neutral signal.
	client, err := createClassifierClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}
	adapter := classifier.NewAdapter(client, time.Duration(cfg.ClassifierTimeoutSeconds)*time.Second, logger)

	// Cache. A failed connect is logged, not fatal: the store reconnects
	// lazily and validation runs uncached in the meantime.
	store := cache.NewStore(
		cache.NewClient(cfg.RedisAddr, cfg.RedisPassword),
		cache.TTLConfig{
			Text:    time.Duration(cfg.TextTTLSeconds) * time.Second,
			File:    time.Duration(cfg.FileTTLSeconds) * time.Second,
			Default: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		},
		3*time.Second,
		logger,
	)
	if err := store.Connect(ctx); err != nil {
		logger.Warn().Err(err).Msg("Cache unavailable at startup, continuing without it")
	}

	defaultLevel, ok := models.ParseSecurityLevel(cfg.DefaultSecurityLevel)
	if !ok {
		logger.Warn().Str("level", cfg.DefaultSecurityLevel).Msg("Unknown default security level, using medium")
		defaultLevel = models.LevelMedium
	}

	service := validation.NewService(engine, keywords, adapter, store, defaultLevel, logger)

	return &Dependencies{
		Service: service,
		Engine:  engine,
		Store:   store,
		Logger:  logger,
	}, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func createClassifierClient(ctx context.Context, cfg *Config) (classifier.Client, error) {
	switch cfg.ClassifierProvider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "none":
		return classifier.Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (expected 'bedrock' or 'none')", cfg.ClassifierProvider)
	}
}
