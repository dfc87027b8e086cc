package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. The gateway holds no credentials here: upstream keys arrive
// per request and live only for the request's duration.
type Config struct {
	AppEnv           string
	Port             string
	QueueBaseURL     string
	SyncBaseURL      string
	RenderModel      string
	RestyleModel     string
	PromptBaseURL    string
	PromptModel      string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		QueueBaseURL:     getEnv("RENDER_QUEUE_BASE_URL", "https://queue.fal.run"),
		SyncBaseURL:      getEnv("RENDER_SYNC_BASE_URL", "https://fal.run"),
		RenderModel:      getEnv("RENDER_MODEL", "fal-ai/flux/dev"),
		RestyleModel:     getEnv("RESTYLE_MODEL", "fal-ai/flux/dev/image-to-image"),
		PromptBaseURL:    getEnv("PROMPT_BASE_URL", "https://api.openai.com/v1"),
		PromptModel:      getEnv("PROMPT_MODEL", "gpt-4o-mini"),
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
