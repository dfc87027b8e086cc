package handlers

import (
	"net/http"

	"wallgen/internal/middleware"
)

// ModelsList proxies the language-model provider's catalog with local
// pricing annotations.
func (a *App) ModelsList(w http.ResponseWriter, r *http.Request) {
	promptKey := middleware.PromptKeyFromContext(r.Context())
	if promptKey == "" {
		a.error(w, http.StatusUnauthorized, "missing_api_key", "header "+middleware.PromptKeyHeader+" is required")
		return
	}
	models, err := a.Models.List(r.Context(), promptKey)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": models})
}
