package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"wallgen/internal/catalog"
	"wallgen/internal/providers/fal"
	"wallgen/internal/providers/scene"
	"wallgen/internal/wallpaper"
)

// WallpaperService is the asynchronous generation workflow.
type WallpaperService interface {
	Submit(ctx context.Context, creds wallpaper.Credentials, req wallpaper.GenerationRequest) (*wallpaper.Submission, error)
	Status(ctx context.Context, renderKey, jobID string) (*wallpaper.JobStatus, error)
	Open(ctx context.Context, renderKey, jobID string) (*wallpaper.ImageStream, error)
}

// RenderClient is the render service's synchronous surface.
type RenderClient interface {
	Generate(ctx context.Context, apiKey string, in fal.SubmitInput) (*fal.Image, error)
	Restyle(ctx context.Context, apiKey, prompt, imageDataURL string) (*fal.Image, error)
}

// ModelCatalog lists upstream models with local pricing annotations.
type ModelCatalog interface {
	List(ctx context.Context, apiKey string) ([]catalog.Model, error)
}

// App bundles the handler dependencies.
type App struct {
	Logger     zerolog.Logger
	Wallpapers WallpaperService
	Render     RenderClient
	Models     ModelCatalog
}

// NewApp wires the handler container.
func NewApp(logger zerolog.Logger, wallpapers WallpaperService, render RenderClient, models ModelCatalog) *App {
	return &App{Logger: logger, Wallpapers: wallpapers, Render: render, Models: models}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": code, "message": message})
}

// upstreamError translates the provider error taxonomy into HTTP responses:
// prompt-generation failures stay distinct from render failures, render
// statuses pass through when they are valid HTTP codes, and artifact-fetch
// failures get their own code so callers never confuse the CDN with the
// render service.
func (a *App) upstreamError(w http.ResponseWriter, err error) {
	var fields wallpaper.FieldErrors
	if errors.As(err, &fields) {
		a.json(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid_request",
			"message": err.Error(),
			"fields":  fields,
		})
		return
	}
	if errors.Is(err, scene.ErrMissingAPIKey) || errors.Is(err, fal.ErrMissingAPIKey) {
		a.error(w, http.StatusUnauthorized, "missing_api_key", err.Error())
		return
	}
	if errors.Is(err, scene.ErrEmptyResponse) {
		a.error(w, http.StatusBadGateway, "prompt_failed", err.Error())
		return
	}
	if errors.Is(err, fal.ErrNoImage) {
		a.error(w, http.StatusBadGateway, "no_image_produced", err.Error())
		return
	}

	var sceneUpstream *scene.UpstreamError
	if errors.As(err, &sceneUpstream) {
		a.json(w, http.StatusBadGateway, map[string]any{
			"error":           "prompt_failed",
			"message":         sceneUpstream.Message,
			"upstream_status": sceneUpstream.StatusCode,
		})
		return
	}
	var malformed *scene.MalformedError
	if errors.As(err, &malformed) {
		a.error(w, http.StatusBadGateway, "prompt_failed", err.Error())
		return
	}
	var queueErr *fal.QueueError
	if errors.As(err, &queueErr) {
		a.error(w, queueErr.StatusCode, "render_failed", queueErr.Message)
		return
	}
	var fetchErr *fal.FetchError
	if errors.As(err, &fetchErr) {
		a.error(w, http.StatusBadGateway, "image_fetch_failed", "failed to fetch generated image")
		return
	}
	var proxyErr *catalog.ProxyError
	if errors.As(err, &proxyErr) {
		status := proxyErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		a.error(w, status, "catalog_failed", proxyErr.Message)
		return
	}
	a.error(w, http.StatusInternalServerError, "internal", err.Error())
}
