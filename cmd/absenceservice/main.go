package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/handler"
	repo "github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/logging"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/absenceservice.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateBackend(); err != nil {
		log.Fatalf("invalid absence service config: %v", err)
	}

	logger := logging.New(cfg.Logging, "absence-service")
	defer func() { _ = logger.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	absenceRepo := repo.NewAbsenceRepository(dbPool)
	txManager := pg.NewTransactionManager(dbPool)
	absenceSvc := absence.NewService(absenceRepo, nil, nil, txManager)
	absenceHandler := handler.NewAbsenceCommandHandler(absenceSvc, logger)

	grpcServer := server.New(cfg.Server.ListenAddr, absenceHandler.Commands(),
		grpc.UnaryInterceptor(handler.LoggingUnaryInterceptor(logger)))

	logger.Info("absence service listening", zap.String("addr", cfg.Server.ListenAddr))

	if err := grpcServer.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
