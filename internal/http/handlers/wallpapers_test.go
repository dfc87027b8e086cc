package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wallgen/internal/catalog"
	"wallgen/internal/middleware"
	"wallgen/internal/providers/fal"
	"wallgen/internal/providers/scene"
	"wallgen/internal/wallpaper"
)

type stubWallpapers struct {
	submission *wallpaper.Submission
	submitErr  error
	status     *wallpaper.JobStatus
	statusErr  error
	stream     *wallpaper.ImageStream
	openErr    error

	gotCreds wallpaper.Credentials
	gotReq   wallpaper.GenerationRequest
	gotJobID string
}

func (s *stubWallpapers) Submit(_ context.Context, creds wallpaper.Credentials, req wallpaper.GenerationRequest) (*wallpaper.Submission, error) {
	s.gotCreds = creds
	s.gotReq = req
	return s.submission, s.submitErr
}

func (s *stubWallpapers) Status(_ context.Context, _ string, jobID string) (*wallpaper.JobStatus, error) {
	s.gotJobID = jobID
	return s.status, s.statusErr
}

func (s *stubWallpapers) Open(_ context.Context, _ string, jobID string) (*wallpaper.ImageStream, error) {
	s.gotJobID = jobID
	return s.stream, s.openErr
}

type stubRender struct {
	image       *fal.Image
	err         error
	gotPrompt   string
	gotInput    fal.SubmitInput
	gotImageURL string
}

func (s *stubRender) Generate(_ context.Context, _ string, in fal.SubmitInput) (*fal.Image, error) {
	s.gotInput = in
	return s.image, s.err
}

func (s *stubRender) Restyle(_ context.Context, _ string, prompt, imageDataURL string) (*fal.Image, error) {
	s.gotPrompt = prompt
	s.gotImageURL = imageDataURL
	return s.image, s.err
}

type stubCatalog struct {
	models []catalog.Model
	err    error
}

func (s *stubCatalog) List(_ context.Context, _ string) ([]catalog.Model, error) {
	return s.models, s.err
}

func newTestRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.APIKeys)
	r.Post("/v1/wallpapers", app.WallpapersGenerate)
	r.Get("/v1/wallpapers/{job_id}/status", app.WallpaperStatus)
	r.Get("/v1/wallpapers/{job_id}/image", app.WallpaperImage)
	r.Post("/v1/images", app.ImagesGenerate)
	r.Post("/v1/images/restyle", app.ImagesRestyle)
	r.Get("/v1/models", app.ModelsList)
	return r
}

func wallpaperRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(middleware.RenderKeyHeader, "fal-key")
	req.Header.Set(middleware.PromptKeyHeader, "openai-key")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("undecodable body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestWallpapersGenerateAccepted(t *testing.T) {
	wallpapers := &stubWallpapers{
		submission: &wallpaper.Submission{JobID: "job-1", StatusURL: "https://q/s", ResultURL: "https://q/r"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers",
		`{"city":"Tokyo","weather":"Sunny","datetime":"Sunset","width":1920,"height":1080}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["job_id"] != "job-1" || body["status_url"] != "https://q/s" || body["result_url"] != "https://q/r" {
		t.Fatalf("body = %v", body)
	}
	if wallpapers.gotCreds.RenderKey != "fal-key" || wallpapers.gotCreds.PromptKey != "openai-key" {
		t.Fatalf("creds = %+v", wallpapers.gotCreds)
	}
	if wallpapers.gotReq.City != "Tokyo" || wallpapers.gotReq.Moment != "Sunset" || wallpapers.gotReq.Width != 1920 {
		t.Fatalf("request = %+v", wallpapers.gotReq)
	}
}

func TestWallpapersGenerateMissingKeys(t *testing.T) {
	app := NewApp(zerolog.Nop(), &stubWallpapers{}, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	cases := []struct {
		name   string
		header string
	}{
		{"no render key", middleware.RenderKeyHeader},
		{"no prompt key", middleware.PromptKeyHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers", `{"city":"Tokyo"}`)
			req.Header.Del(tc.header)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("code = %d", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != "missing_api_key" {
				t.Fatalf("body = %v", body)
			}
			if !strings.Contains(body["message"].(string), tc.header) {
				t.Fatalf("message %q does not name the header", body["message"])
			}
		})
	}
}

func TestWallpapersGenerateInvalidPayload(t *testing.T) {
	app := NewApp(zerolog.Nop(), &stubWallpapers{}, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers", `{"city":`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestWallpapersGenerateFieldErrors(t *testing.T) {
	wallpapers := &stubWallpapers{
		submitErr: wallpaper.FieldErrors{"city": "required", "width": "must be between 512 and 4096"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers", `{"weather":"Rain"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["error"] != "invalid_request" {
		t.Fatalf("error = %v", body["error"])
	}
	fields, ok := body["fields"].(map[string]any)
	if !ok || fields["city"] != "required" || fields["width"] != "must be between 512 and 4096" {
		t.Fatalf("fields = %v", body["fields"])
	}
}

func TestWallpapersGeneratePromptFailure(t *testing.T) {
	wallpapers := &stubWallpapers{
		submitErr: &scene.UpstreamError{StatusCode: 429, Message: "rate limited"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers", `{"city":"Tokyo"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "prompt_failed" {
		t.Fatalf("error = %v", body["error"])
	}
	if body["upstream_status"] != float64(429) {
		t.Fatalf("upstream_status = %v", body["upstream_status"])
	}
}

func TestWallpapersGenerateRenderFailurePassesStatusThrough(t *testing.T) {
	wallpapers := &stubWallpapers{
		submitErr: &fal.QueueError{Op: "submit", StatusCode: http.StatusForbidden, Message: "bad key"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodPost, "/v1/wallpapers", `{"city":"Tokyo"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "render_failed" {
		t.Fatalf("body = %v", body)
	}
}

func TestWallpaperStatusQueued(t *testing.T) {
	pos := 5
	wallpapers := &stubWallpapers{
		status: &wallpaper.JobStatus{State: wallpaper.StateQueued, QueuePosition: &pos},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/status", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if wallpapers.gotJobID != "job-1" {
		t.Fatalf("jobID = %q", wallpapers.gotJobID)
	}
	body := decodeBody(t, rec)
	if body["status"] != "QUEUED" || body["queue_position"] != float64(5) {
		t.Fatalf("body = %v", body)
	}
	if _, present := body["image_url"]; present {
		t.Fatal("image_url must be omitted before completion")
	}
}

func TestWallpaperStatusCompleted(t *testing.T) {
	wallpapers := &stubWallpapers{
		status: &wallpaper.JobStatus{State: wallpaper.StateCompleted, ImageURL: "https://cdn/img.png"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/status", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	if body["status"] != "COMPLETED" || body["image_url"] != "https://cdn/img.png" {
		t.Fatalf("body = %v", body)
	}
	if _, present := body["queue_position"]; present {
		t.Fatal("queue_position must be omitted after the queue phase")
	}
}

func TestWallpaperStatusDoesNotRequirePromptKey(t *testing.T) {
	wallpapers := &stubWallpapers{status: &wallpaper.JobStatus{State: wallpaper.StateRunning}}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/status", "")
	req.Header.Del(middleware.PromptKeyHeader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestWallpaperImageNotReady(t *testing.T) {
	wallpapers := &stubWallpapers{openErr: fal.ErrNotReady}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/image", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("code = %d, want retriable 202", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "IN_PROGRESS" {
		t.Fatalf("body = %v", body)
	}
}

func TestWallpaperImageStreamsArtifact(t *testing.T) {
	wallpapers := &stubWallpapers{
		stream: &wallpaper.ImageStream{
			Body:        io.NopCloser(strings.NewReader("png-bytes")),
			ContentType: "image/png",
		},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/image", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
	if rec.Body.String() != "png-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestWallpaperImageFetchFailure(t *testing.T) {
	wallpapers := &stubWallpapers{
		openErr: &fal.FetchError{StatusCode: http.StatusServiceUnavailable, Message: "cdn down"},
	}
	app := NewApp(zerolog.Nop(), wallpapers, &stubRender{}, &stubCatalog{})
	router := newTestRouter(app)

	req := wallpaperRequest(t, http.MethodGet, "/v1/wallpapers/job-1/image", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "image_fetch_failed" {
		t.Fatalf("body = %v", body)
	}
	if strings.Contains(body["message"].(string), "cdn down") {
		t.Fatal("CDN detail must not leak to the caller")
	}
}
