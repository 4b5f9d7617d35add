package app

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reeltide/backend/internal/auth"
	"github.com/reeltide/backend/internal/config"
	"github.com/reeltide/backend/internal/handlers"
	"github.com/reeltide/backend/internal/media"
	"github.com/reeltide/backend/internal/metrics"
	"github.com/reeltide/backend/internal/middleware"
	"github.com/reeltide/backend/internal/repositories"
	"github.com/reeltide/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned ingestor, when non-nil, must be drained on shutdown.
func buildDependencies(ctx context.Context, database *mongo.Database, cfg config.Config, recorder metrics.Recorder, logger *slog.Logger) (handlers.Dependencies, *media.Ingestor, error) {
	users := repositories.NewMongoUserRepository(database)
	videos := repositories.NewMongoVideoRepository(database)
	sessionStore := repositories.NewMongoSessionStore(database)

	deps := handlers.Dependencies{
		Users:       users,
		Videos:      videos,
		Sessions:    auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore),
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute),
		Metrics:     recorder,
		PresignTTL:  cfg.ObjectStore.PresignTTL,
	}

	if cfg.GoogleOAuth.ClientID != "" {
		deps.Google = auth.NewGoogleProvider(auth.GoogleConfig{
			ClientID:     cfg.GoogleOAuth.ClientID,
			ClientSecret: cfg.GoogleOAuth.ClientSecret,
			RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		})
	}

	var ingestor *media.Ingestor
	if cfg.ObjectStore.Bucket != "" {
		store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, err
		}
		deps.Signer = store

		ingestor = media.NewIngestor(store, videos, media.IngestorConfig{
			QueueSize:    cfg.IngestQueueSize,
			Workers:      cfg.IngestWorkers,
			FetchTimeout: cfg.IngestTimeout,
		}, logger)
		deps.Ingestor = ingestor
	} else {
		logger.Warn("object store not configured; uploads and media mirroring disabled")
	}

	return deps, ingestor, nil
}
