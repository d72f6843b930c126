package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/config"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/repository"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-catalog/transport/rest"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	appMetrics := metrics.New()

	var catalogRepo repository.CatalogRepository
	if conf.Redis.Enabled {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer closeStorage(log, redisStorage)

		catalogRepo = repository.NewCatalogRepository(redisStorage, conf.Redis.KeyPrefix)
	}

	catalogUseCase := usecase.NewCatalogManager(logger, catalogRepo, appMetrics, conf.Engine.Parallel)

	if !conf.Engine.Lazy {
		if _, err := catalogUseCase.Catalog(ctx); err != nil {
			return fmt.Errorf("could not build catalog: %w", err)
		}
	}

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, catalogUseCase, appMetrics.Handler())); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func closeStorage(log *slog.Logger, client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Error("could not close redis storage", "error", err)
	}
}
