package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"edu_progress/internal/adapters"
	"edu_progress/internal/bootstrap"
	"edu_progress/internal/delivery"
	progressDelivery "edu_progress/internal/delivery/progress"
	sessionDelivery "edu_progress/internal/delivery/session"
	"edu_progress/internal/repository"
	progressUC "edu_progress/internal/usecase/progress"
	sessionUC "edu_progress/internal/usecase/session"
)

const shutdownTimeout = 10 * time.Second

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	databaseAdapters, err := initDatabaseAdapters(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize database adapters", zap.Error(err))
		os.Exit(1)
	}
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           delivery.NewRouter(initializeDeliveryHandlers(*cfg, logger, databaseAdapters), cfg.IsLocalCors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Server is running on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (*dataBaseAdapters, error) {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		return nil, err
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		_ = mongoAdapter.Close(ctx)
		return nil, err
	}

	log.Info("database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}, nil
}

func initializeDeliveryHandlers(cfg bootstrap.Config, log *zap.SugaredLogger, databaseAdapters *dataBaseAdapters) delivery.Handlers {
	// Records outlive their validity window so an expired session can still
	// be told apart from a missing one.
	sessionStorage := repository.NewSessionRedisStorage(databaseAdapters.redisAdapter.GetClient(), log, 2*cfg.SessionValidity)
	registry := sessionUC.NewRegistry(
		func(clientID string) sessionUC.Storage { return sessionStorage.ForClient(clientID) },
		[]byte(cfg.SessionSecret),
		log,
		sessionUC.WithValidity(cfg.SessionValidity),
	)

	profiles := repository.NewMongoProfileStorage(databaseAdapters.mongoAdapter.Collection(), log)
	store := progressUC.NewStore(profiles, log, progressUC.WithStrictMode(cfg.StrictProgress))

	return delivery.Handlers{
		Session:  sessionDelivery.NewSessionHandler(cfg, log, registry, store),
		Progress: progressDelivery.NewProgressHandler(log, store, registry),
	}
}
