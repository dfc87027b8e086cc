package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"wallgen/internal/http/handlers"
	"wallgen/internal/middleware"
)

// NewRouter builds the gateway's route tree.
func NewRouter(app *handlers.App, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(corsOrigins),
		middleware.APIKeys,
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/wallpapers", func(r chi.Router) {
		r.Post("/", app.WallpapersGenerate)
		r.Get("/{job_id}/status", app.WallpaperStatus)
		r.Get("/{job_id}/image", app.WallpaperImage)
	})

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/", app.ImagesGenerate)
		r.Post("/restyle", app.ImagesRestyle)
	})

	r.Get("/v1/models", app.ModelsList)

	return r
}
