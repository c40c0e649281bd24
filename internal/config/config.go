package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the chat relay.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float32

	SystemPrompt        string
	SystemPromptEnabled bool

	SynologyWebhookToken string
	SynologyIncomingURL  string

	MaxConversationLen int
	MaxTimeGapMinutes  int
	ResetKeywords      []string

	DatabaseURL string
}

// MaxTimeGap returns the idle-expiry threshold as a duration.
func (c Config) MaxTimeGap() time.Duration {
	return time.Duration(c.MaxTimeGapMinutes) * time.Minute
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "synogpt"),
		AllowAnyOrigin:       false,
		OpenAIAPIKey:         stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:        stringsTrimSpace("OPENAI_BASE_URL"),
		OpenAIModel:          envOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAITemperature:    0.5,
		SystemPrompt:         os.Getenv("SYSTEM_PROMPT"),
		SystemPromptEnabled:  false,
		SynologyWebhookToken: stringsTrimSpace("SYNOLOGY_WEBHOOK_TOKEN"),
		SynologyIncomingURL:  stringsTrimSpace("SYNOLOGY_INCOMING_URL"),
		MaxConversationLen:   10,
		MaxTimeGapMinutes:    30,
		DatabaseURL:          stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:      15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.OpenAITemperature, err = float32FromEnv("OPENAI_TEMPERATURE", cfg.OpenAITemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.SystemPromptEnabled, err = boolFromEnv("SYSTEM_PROMPT_ENABLED", cfg.SystemPromptEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxConversationLen, err = intFromEnv("MAX_CONVERSATION_LEN", cfg.MaxConversationLen)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTimeGapMinutes, err = intFromEnv("MAX_TIME_GAP_MINUTES", cfg.MaxTimeGapMinutes)
	if err != nil {
		return Config{}, err
	}
	cfg.ResetKeywords = listFromEnv("RESET_KEYWORDS")

	if cfg.MaxConversationLen <= 0 {
		return Config{}, fmt.Errorf("MAX_CONVERSATION_LEN must be positive")
	}
	if cfg.MaxTimeGapMinutes <= 0 {
		return Config{}, fmt.Errorf("MAX_TIME_GAP_MINUTES must be positive")
	}
	if cfg.OpenAITemperature < 0 || cfg.OpenAITemperature > 2 {
		return Config{}, fmt.Errorf("OPENAI_TEMPERATURE must be within [0, 2]")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func float32FromEnv(key string, fallback float32) (float32, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return float32(f), nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}

func listFromEnv(key string) []string {
	v := stringsTrimSpace(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
