package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hirely/hirely/internal/cache"
	"github.com/hirely/hirely/internal/config"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/logging"
	"github.com/hirely/hirely/internal/notify"
	"github.com/hirely/hirely/internal/server"
	"github.com/hirely/hirely/internal/server/ratelimit"
	"github.com/hirely/hirely/internal/storage"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job board REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig loads the configuration and applies the --port override.
// The result is validated again so the flag gets the same bounds as the file.
func loadServeConfig(path string, port int) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(configPath, servePort)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, nil)
	if err != nil {
		return err
	}
	log := logging.Component(logger, "main")

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return err
	}

	deps := server.Deps{
		Store:       database,
		Logger:      logger,
		RateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		JWT:         jwtCfg,
		Password:    pwCfg,
		Mailer:      notify.DisabledMailer{Logger: logging.Component(logger, "mailer")},
	}

	if cfg.RedisURL != "" {
		jobCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, cache.DefaultTTL)
		if err != nil {
			database.Close()
			return err
		}
		deps.Cache = jobCache
	} else {
		log.Info("REDIS_URL not set, job listings are not cached")
	}

	if cfg.Storage.Enabled() {
		blobs, err := storage.NewS3Store(cfg.Storage, logging.Component(logger, "storage"))
		if err != nil {
			database.Close()
			return err
		}
		deps.Blobs = blobs
	} else {
		log.Warn("storage bucket not configured, resume and logo uploads are disabled")
	}

	srv, err := server.New(server.Config{
		Port:          cfg.Port,
		PublicBaseURL: cfg.PublicBaseURL,
		CORSOrigin:    cfg.CORSOrigin,
		MailFrom:      cfg.Mail.From,
	}, deps)
	if err != nil {
		database.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
