package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/gateway"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/config"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/logging"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/token"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/gateway.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		log.Fatalf("invalid gateway config: %v", err)
	}

	logger := logging.New(cfg.Logging, "api-gateway")
	defer func() { _ = logger.Sync() }()

	codec := token.NewCodec(cfg.JWT.Secret, cfg.JWT.SessionTTL, nil)
	guard := gateway.NewGuardChain(codec, logger)

	authConn, err := gateway.DialBackend(cfg.Backends.Auth.Addr())
	if err != nil {
		logger.Fatal("failed to dial auth backend", zap.Error(err))
	}
	defer func() { _ = authConn.Close() }()

	absenceConn, err := gateway.DialBackend(cfg.Backends.Absence.Addr())
	if err != nil {
		logger.Fatal("failed to dial absence backend", zap.Error(err))
	}
	defer func() { _ = absenceConn.Close() }()

	dispatcher := gateway.NewDispatcher(authConn, absenceConn)

	router := gateway.NewRouter(gateway.RouterParams{
		Log:               logger,
		Guard:             guard,
		Auth:              gateway.NewAuthHandler(dispatcher, logger),
		Absence:           gateway.NewAbsenceHandler(dispatcher, logger),
		ThrottlePerMinute: cfg.Gateway.ThrottlePerMinute,
		AllowedOrigins:    cfg.Gateway.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Gateway.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("API gateway listening", zap.String("addr", cfg.Gateway.ListenAddr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
