package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Header names for the per-request upstream credentials. The gateway never
// stores keys; they ride the request context and die with it.
const (
	RenderKeyHeader = "X-Fal-Key"
	PromptKeyHeader = "X-Openai-Key"
)

const (
	renderKeyCtx contextKey = "render_api_key"
	promptKeyCtx contextKey = "prompt_api_key"
)

// APIKeys extracts the two upstream credentials from request headers into
// the context. It never rejects: each handler decides which keys it needs
// and fails the precondition itself.
func APIKeys(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if key := strings.TrimSpace(r.Header.Get(RenderKeyHeader)); key != "" {
			ctx = context.WithValue(ctx, renderKeyCtx, key)
		}
		if key := strings.TrimSpace(r.Header.Get(PromptKeyHeader)); key != "" {
			ctx = context.WithValue(ctx, promptKeyCtx, key)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RenderKeyFromContext returns the render-service credential, or "".
func RenderKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(renderKeyCtx).(string); ok {
		return v
	}
	return ""
}

// PromptKeyFromContext returns the language-model credential, or "".
func PromptKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(promptKeyCtx).(string); ok {
		return v
	}
	return ""
}
