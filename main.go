package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"salesdash/adapters/postgres"
	"salesdash/internal"
	"salesdash/internal/config"
	"salesdash/internal/container"
	"salesdash/ui"
)

//go:embed ui/templates/* ui/static/*
var embeddedFiles embed.FS

// initDatabase opens the optional prediction log database
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if !appConfig.Database.Enabled() {
		return nil, nil
	}
	return postgres.Connect(ctx, appConfig.Database.URL)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if db != nil {
		if err := appContainer.InitWithDatabase(ctx, db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	}

	if err := appContainer.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap dashboards: %v", err)
	}

	assets, err := fs.Sub(embeddedFiles, "ui")
	if err != nil {
		log.Fatalf("Failed to open embedded assets: %v", err)
	}
	server := ui.NewServer(appContainer, assets)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("[Server] stopped: %v", err)
		}
	case <-ctx.Done():
		logger.Info("[Server] shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("[Server] graceful shutdown failed: %v", err)
		}
	}
}
