package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RENDER_QUEUE_BASE_URL", "")
	t.Setenv("PROMPT_BASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.QueueBaseURL != "https://queue.fal.run" {
		t.Fatalf("QueueBaseURL = %q", cfg.QueueBaseURL)
	}
	if cfg.PromptBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("PromptBaseURL = %q", cfg.PromptBaseURL)
	}
	if cfg.PromptModel != "gpt-4o-mini" {
		t.Fatalf("PromptModel = %q", cfg.PromptModel)
	}
	if cfg.HTTPWriteTimeout != 120*time.Second {
		t.Fatalf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RENDER_QUEUE_BASE_URL", "http://localhost:9191")
	t.Setenv("RENDER_MODEL", "fal-ai/flux-pro/v1.1")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.QueueBaseURL != "http://localhost:9191" {
		t.Fatalf("QueueBaseURL = %q", cfg.QueueBaseURL)
	}
	if cfg.RenderModel != "fal-ai/flux-pro/v1.1" {
		t.Fatalf("RenderModel = %q", cfg.RenderModel)
	}
	if cfg.HTTPWriteTimeout != 15*time.Second {
		t.Fatalf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
	want := []string{"https://app.example.com", "https://staging.example.com"}
	if len(cfg.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %#v", cfg.CORSOrigins)
	}
	for i := range want {
		if cfg.CORSOrigins[i] != want[i] {
			t.Fatalf("CORSOrigins[%d] = %q, want %q", i, cfg.CORSOrigins[i], want[i])
		}
	}
}
