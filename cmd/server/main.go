// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/EscalationLeague/internal/api/armies"
	"github.com/codr1/EscalationLeague/internal/api/auth"
	"github.com/codr1/EscalationLeague/internal/api/leagues"
	"github.com/codr1/EscalationLeague/internal/api/matches"
	"github.com/codr1/EscalationLeague/internal/api/memberships"
	"github.com/codr1/EscalationLeague/internal/api/players"
	"github.com/codr1/EscalationLeague/internal/config"
	"github.com/codr1/EscalationLeague/internal/db"
	"github.com/codr1/EscalationLeague/internal/email"
	"github.com/codr1/EscalationLeague/internal/ratelimit"
	"github.com/codr1/EscalationLeague/internal/scheduler"
)

const (
	defaultConfigPath = "config/app.yaml"
	shutdownTimeout   = 30 * time.Second
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config_path", configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	limiter := ratelimit.New(&ratelimit.Config{
		MaxFailures:   cfg.RateLimit.JoinMaxFailures,
		MaxIPFailures: cfg.RateLimit.JoinMaxIPFailures,
		Lockout:       cfg.RateLimit.JoinLockoutDuration,
		TrustProxy:    cfg.RateLimit.TrustProxy,
	})
	defer limiter.Close()

	var sender email.EmailSender
	if cfg.Email.Enabled {
		sesClient, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create SES client")
		}
		sender = sesClient
	} else {
		log.Info().Msg("Email notifications disabled")
	}

	auth.InitHandlers(database, cfg.Auth.SignInURL)
	auth.InitClerk(cfg.Auth.ClerkSecretKey)
	memberships.InitHandlers(database, memberships.Options{
		RequireSession: cfg.Auth.RequireSession,
		Limiter:        limiter,
		EmailSender:    sender,
	})
	leagues.InitHandlers(database, cfg.Auth.RequireSession)
	players.InitHandlers(database, cfg.Auth.RequireSession)
	armies.InitHandlers(database, cfg.Auth.RequireSession)
	matches.InitHandlers(database, cfg.Auth.RequireSession)

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterArchiveJob(database, cfg.Scheduler.ArchiveLeaguesCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register archive job")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("app", cfg.App.Name).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
