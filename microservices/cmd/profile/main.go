package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"edu_progress/internal/adapters"
	"edu_progress/internal/bootstrap"
	"edu_progress/internal/repository"
	progressUC "edu_progress/internal/usecase/progress"
	profileRPC "edu_progress/microservices/proto"
	"edu_progress/microservices/usecase"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Load(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mongoAdapter := adapters.NewAdapterMongo(cfg, logger)
	if err := mongoAdapter.Init(ctx); err != nil {
		logger.Error("Failed to initialize MongoDB", zap.Error(err))
		return
	}
	defer mongoAdapter.Close(context.Background())

	lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
	if err != nil {
		logger.Error("Failed to listen", zap.Error(err))
		return
	}

	profiles := repository.NewMongoProfileStorage(mongoAdapter.Collection(), logger)
	store := progressUC.NewStore(profiles, logger, progressUC.WithStrictMode(true))

	server := grpc.NewServer()
	profileRPC.RegisterProfileServiceServer(server, usecase.NewProfileUseCase(store, logger))

	go func() {
		<-ctx.Done()
		logger.Info("Received shutdown signal")
		server.GracefulStop()
	}()

	logger.Infof("profile service listening on :%s", cfg.GrpcPort)
	if err := server.Serve(lis); err != nil {
		logger.Error("gRPC server stopped", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
