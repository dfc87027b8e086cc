package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"wallgen/internal/providers/fal"
	"wallgen/internal/wallpaper"
	"wallgen/pkg/imaging"
)

const maxUploadBytes = 20 << 20

type imageGenerateRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type imageResponse struct {
	ImageURL    string `json:"image_url"`
	ContentType string `json:"content_type,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// ImagesGenerate performs one blocking render on the synchronous endpoint.
// No scene synthesis is involved; the caller supplies the full prompt.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	creds, ok := a.requireKeys(w, r, false)
	if !ok {
		return
	}
	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	if err := wallpaper.ValidateDimensions(req.Width, req.Height); err != nil {
		a.upstreamError(w, err)
		return
	}
	img, err := a.Render.Generate(r.Context(), creds.RenderKey, fal.SubmitInput{
		Prompt: req.Prompt,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{
		ImageURL:    img.URL,
		ContentType: img.ContentType,
		Width:       img.Width,
		Height:      img.Height,
	})
}

// ImagesRestyle reworks an uploaded photo with a style prompt. Uploads in
// formats the render service rejects are converted before submission.
func (a *App) ImagesRestyle(w http.ResponseWriter, r *http.Request) {
	creds, ok := a.requireKeys(w, r, false)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file required")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable image upload")
		return
	}

	mime := imaging.DetectMIME(data, header.Header.Get("Content-Type"))
	converted, mime, err := imaging.EnsureRenderable(data, mime)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			a.error(w, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	img, err := a.Render.Restyle(r.Context(), creds.RenderKey, prompt, imaging.DataURL(converted, mime))
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{ImageURL: img.URL, ContentType: img.ContentType})
}
