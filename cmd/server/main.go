package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/log"
	"github.com/wso2/informed-consent-api/internal/system/middleware"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "consent-server",
		Short:         "Informed consent API server",
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	// Priority: --config flag > CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to deployment.yaml")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})

	return root
}

// bootstrap loads configuration, configures logging and opens the database.
func bootstrap() (*config.Config, *database.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := log.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger := log.GetLogger()
	logger.Info("Configuration loaded successfully",
		log.String("config_path", configPath),
		log.String("log_level", cfg.Logging.Level),
		log.String("database_type", cfg.Database.Consent.Type),
	)

	db, err := database.Initialize(&cfg.Database.Consent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info("Database connection established successfully")
	return cfg, db, nil
}

func runMigrate() error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.GetLogger().Info("Database schema is up to date")
	return nil
}

func runServe() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	logger := log.GetLogger()

	logger.Info("Starting Informed Consent API Server...",
		log.String("version", version),
		log.String("build_date", buildDate),
	)

	if cfg.Database.Consent.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			db.Close()
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	provider.InitDBProvider(db)
	dbClient, err := provider.GetDBProvider().GetConsentDBClient()
	if err != nil {
		db.Close()
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CorrelationIDMiddleware(), middleware.RequestLogger())
	if cfg.CORS.Enabled {
		engine.Use(middleware.CORSMiddleware(middleware.CORSOptionsFromConfig(cfg.CORS)))
	}

	registerServices(engine, cfg, dbClient, db)

	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...",
			log.String("hostname", cfg.Server.Hostname),
			log.Int("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			provider.GetDBProviderCloser().Close()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", log.Error(err))
	}
	if err := provider.GetDBProviderCloser().Close(); err != nil {
		logger.Error("Failed to close database", log.Error(err))
	}

	logger.Info("Server exited gracefully")
	return nil
}
