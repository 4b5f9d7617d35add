package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/config"
	"github.com/reeltide/backend/internal/db"
	"github.com/reeltide/backend/internal/handlers"
	"github.com/reeltide/backend/internal/httpserver"
	"github.com/reeltide/backend/internal/metrics"
	"github.com/reeltide/backend/internal/middleware"
	"github.com/reeltide/backend/internal/models"
	"github.com/reeltide/backend/internal/repositories"
)

// Run bootstraps the ReelTide backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, indexes, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "indexes":
		return ensureIndexes(ctx)
	case "seed":
		return runSeed(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Disconnect(client); err != nil {
			logger.Error("disconnect mongodb", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	deps, ingestor, err := buildDependencies(ctx, client.Database(cfg.MongoDatabase), cfg, collector, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)
	mux.Handle("GET /metrics", metrics.Handler(registry))

	handler := middleware.RequestLogger(logger, collector)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if ingestor != nil {
		if err := ingestor.Shutdown(shutdownCtx); err != nil {
			logger.Error("drain media ingestor", "error", err)
		}
	}

	return srv.Shutdown(shutdownCtx)
}

// ensureIndexes creates the MongoDB indexes the repositories rely on. Safe to
// run repeatedly.
func ensureIndexes(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = db.Disconnect(client) }()

	database := client.Database(cfg.MongoDatabase)

	if err := repositories.EnsureUserIndexes(ctx, database); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	if err := repositories.EnsureVideoIndexes(ctx, database); err != nil {
		return fmt.Errorf("ensure video indexes: %w", err)
	}
	if err := repositories.EnsureSessionIndexes(ctx, database); err != nil {
		return fmt.Errorf("ensure session indexes: %w", err)
	}

	fmt.Println("indexes ensured")
	return nil
}

// runSeed inserts a small sample catalog for local development.
func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = db.Disconnect(client) }()

	videos := repositories.NewMongoVideoRepository(client.Database(cfg.MongoDatabase))

	for _, video := range sampleVideos() {
		if err := videos.Create(ctx, video); err != nil {
			return fmt.Errorf("seed video %q: %w", video.Title, err)
		}
		fmt.Printf("seeded video %q\n", video.Title)
	}

	return nil
}

func sampleVideos() []models.Video {
	now := time.Now().UTC()

	samples := []struct {
		title       string
		description string
		thumbnail   string
	}{
		{"Sample: Mountain Timelapse", "Beautiful mountain timelapse sample video.", "https://placehold.co/640x360?text=Mountain"},
		{"Sample: Ocean Waves", "Relaxing ocean waves sample video.", "https://placehold.co/640x360?text=Ocean"},
		{"Sample: City Drive", "Night city drive sample video.", "https://placehold.co/640x360?text=City"},
	}

	videos := make([]models.Video, 0, len(samples))
	for _, s := range samples {
		videos = append(videos, models.Video{
			ID:           primitive.NewObjectID(),
			Title:        s.title,
			Description:  s.description,
			VideoURL:     "https://samplelib.com/lib/preview/mp4/sample-5s.mp4",
			ThumbnailURL: s.thumbnail,
			Controls:     true,
			Transformation: models.Transformation{
				Width:   models.DefaultVideoWidth,
				Height:  models.DefaultVideoHeight,
				Quality: models.DefaultVideoQuality,
			},
			UserID:    primitive.NewObjectID(),
			Views:     0,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return videos
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
