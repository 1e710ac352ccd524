package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/openbooks/backend/internal/application/dispatcher"
	"github.com/openbooks/backend/internal/application/service"
	"github.com/openbooks/backend/internal/config"
	"github.com/openbooks/backend/internal/domain/document"
	"github.com/openbooks/backend/internal/infrastructure/external/vatcomply"
	"github.com/openbooks/backend/internal/infrastructure/navigation"
	"github.com/openbooks/backend/internal/infrastructure/persistence"
	httpserver "github.com/openbooks/backend/internal/interfaces/http"
	"github.com/openbooks/backend/pkg/database"
	"github.com/openbooks/backend/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting books backend",
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	registry := document.DefaultRegistry()

	events := dispatcher.New(dispatcher.WithLogger(utils.NewKeyValueLogger(logger, "dispatcher")))
	defer events.Close()

	store := persistence.NewDocumentStore(db.DB, registry, events, logger)
	kv := persistence.NewKVStore(db.DB, logger)

	// A nil provider keeps the resolver in offline mode
	var exchange *service.ExchangeService
	if cfg.Exchange.Offline {
		exchange = service.NewExchangeService(kv, nil, logger)
	} else {
		rates := vatcomply.NewClient(vatcomply.Config{
			Endpoint: cfg.Exchange.Endpoint,
			Timeout:  cfg.Exchange.Timeout,
		}, logger)
		exchange = service.NewExchangeService(kv, rates, logger)
	}

	nav := navigation.NewLogNavigator(logger)
	documents := service.NewDocumentService(registry, store, nav, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, documents, exchange, utils.NewKeyValueLogger(logger, "http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
