package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wallgen/internal/middleware"
	"wallgen/internal/providers/fal"
	"wallgen/internal/wallpaper"
)

type wallpaperGenerateRequest struct {
	City     string `json:"city"`
	Weather  string `json:"weather"`
	Datetime string `json:"datetime"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type wallpaperStatusResponse struct {
	Status        wallpaper.State `json:"status"`
	QueuePosition *int            `json:"queue_position,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
}

// WallpapersGenerate accepts a validated generation request, runs the
// synthesis and submission path, and answers immediately with the job
// handle. The render keeps running remotely; the caller polls.
func (a *App) WallpapersGenerate(w http.ResponseWriter, r *http.Request) {
	creds, ok := a.requireKeys(w, r, true)
	if !ok {
		return
	}
	var req wallpaperGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sub, err := a.Wallpapers.Submit(r.Context(), creds, wallpaper.GenerationRequest{
		City:    req.City,
		Weather: req.Weather,
		Moment:  req.Datetime,
		Width:   req.Width,
		Height:  req.Height,
	})
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, sub)
}

// WallpaperStatus polls the remote job and answers with the canonical state.
// Each call is independent and side-effect-free on the gateway.
func (a *App) WallpaperStatus(w http.ResponseWriter, r *http.Request) {
	creds, ok := a.requireKeys(w, r, false)
	if !ok {
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	status, err := a.Wallpapers.Status(r.Context(), creds.RenderKey, jobID)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, wallpaperStatusResponse{
		Status:        status.State,
		QueuePosition: status.QueuePosition,
		ImageURL:      status.ImageURL,
	})
}

// WallpaperImage relays the finished artifact without buffering. A job whose
// render has not completed gets a retriable not-ready answer, never an
// error.
func (a *App) WallpaperImage(w http.ResponseWriter, r *http.Request) {
	creds, ok := a.requireKeys(w, r, false)
	if !ok {
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	stream, err := a.Wallpapers.Open(r.Context(), creds.RenderKey, jobID)
	if err != nil {
		if errors.Is(err, fal.ErrNotReady) {
			a.json(w, http.StatusAccepted, map[string]string{"status": "IN_PROGRESS"})
			return
		}
		a.upstreamError(w, err)
		return
	}
	defer func() {
		_ = stream.Body.Close()
	}()
	w.Header().Set("Content-Type", stream.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, stream.Body); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("image relay interrupted")
	}
}

// requireKeys enforces the credential precondition before any core logic
// runs. The render key is always required; the prompt key only on the
// submission path.
func (a *App) requireKeys(w http.ResponseWriter, r *http.Request, needPromptKey bool) (wallpaper.Credentials, bool) {
	creds := wallpaper.Credentials{
		RenderKey: middleware.RenderKeyFromContext(r.Context()),
		PromptKey: middleware.PromptKeyFromContext(r.Context()),
	}
	if creds.RenderKey == "" {
		a.error(w, http.StatusUnauthorized, "missing_api_key", "header "+middleware.RenderKeyHeader+" is required")
		return creds, false
	}
	if needPromptKey && creds.PromptKey == "" {
		a.error(w, http.StatusUnauthorized, "missing_api_key", "header "+middleware.PromptKeyHeader+" is required")
		return creds, false
	}
	return creds, true
}
