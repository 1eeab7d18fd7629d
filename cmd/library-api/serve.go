package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bookshelf/library-api/internal/api"
	"github.com/bookshelf/library-api/internal/core/ports"
	"github.com/bookshelf/library-api/internal/core/service"
	"github.com/bookshelf/library-api/internal/infrastructure/config"
	"github.com/bookshelf/library-api/internal/infrastructure/db/redis"
	"github.com/bookshelf/library-api/internal/infrastructure/security"
	"github.com/bookshelf/library-api/pkg/logger"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP API. The schema is migrated on startup and the server
shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "library-api",
		Version: version,
	})

	st, err := openStore(ctx, cfg, true)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("store unavailable")
		return err
	}
	defer st.close()

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable")
			return err
		}
		defer client.Close()
		idem = redis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		st.health["redis"] = redis.Pinger{Client: client}
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewJWTService([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTokenTTL)

	e := api.NewRouter(api.Dependencies{
		Logger:      logger.Component("http"),
		Auth:        service.NewAuthService(st.users, hasher, tokens, logger.Component("auth")),
		Users:       service.NewUserService(st.users, hasher, logger.Component("users")),
		Books:       service.NewBookService(st.books, logger.Component("books")),
		Idempotency: idem,
		Health:      st.health,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("driver", cfg.Store.Driver).
			Bool("idempotency", idem != nil).
			Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error().Err(err).Msg("server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.HTTP.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
