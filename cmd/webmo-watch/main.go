package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chemtools/webmo-go/internal/config"
	"github.com/chemtools/webmo-go/internal/watcher"
	"github.com/chemtools/webmo-go/internal/watcher/storage"
	"github.com/chemtools/webmo-go/shared/logger"
	"github.com/chemtools/webmo-go/shared/postgresql"
	"github.com/chemtools/webmo-go/shared/rabbitmq"
	"github.com/chemtools/webmo-go/webmo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WEBMO_WATCH_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/webmo-watch/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger := initLogger(&cfg.Logging)

	appLogger.Info("Starting watcher service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := webmo.Connect(ctx, cfg.WebMO.BaseURL, cfg.WebMO.Username, cfg.WebMO.Password,
		webmo.WithLogger(appLogger),
	)
	if err != nil {
		return fmt.Errorf("failed to open WebMO session: %w", err)
	}
	defer client.Close()

	appLogger.Info("WebMO session established",
		slog.String("base_url", cfg.WebMO.BaseURL),
	)

	watcherInstance := watcher.NewWatcher(&watcher.Config{
		Logger:       appLogger,
		Service:      client,
		Store:        storage.NewStorage(dbClient.GetDB(), appLogger),
		Publisher:    rabbitClient,
		Concurrency:  cfg.Watcher.Concurrency,
		PollInterval: cfg.Watcher.PollInterval,
		TargetUser:   cfg.Watcher.TargetUser,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := watcherInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Watcher service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Watcher error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Watcher.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		watcherInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Watcher stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Watcher shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Watcher service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) *slog.Logger {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	return postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
	}, logger)
}
