package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wallgen/internal/catalog"
	"wallgen/internal/http/handlers"
	"wallgen/internal/http/httpapi"
	"wallgen/internal/infra"
	"wallgen/internal/providers/fal"
	"wallgen/internal/providers/scene"
	"wallgen/internal/wallpaper"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	queue := fal.NewClient(fal.Options{
		QueueBaseURL: cfg.QueueBaseURL,
		SyncBaseURL:  cfg.SyncBaseURL,
		Model:        cfg.RenderModel,
		RestyleModel: cfg.RestyleModel,
		Logger:       &logger,
	})
	scenes := scene.NewSynthesizer(scene.Options{
		BaseURL: cfg.PromptBaseURL,
		Model:   cfg.PromptModel,
		Logger:  &logger,
	})
	models := catalog.NewClient(catalog.Options{
		BaseURL: cfg.PromptBaseURL,
		Logger:  &logger,
	})

	app := handlers.NewApp(logger, wallpaper.NewService(scenes, queue), queue, models)
	router := httpapi.NewRouter(app, cfg.CORSOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
