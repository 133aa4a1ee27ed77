package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"mestre-tatu/internal/bot"
	"mestre-tatu/internal/config"
	"mestre-tatu/internal/constants"
	fxmodules "mestre-tatu/internal/fx"
	"mestre-tatu/internal/middleware"
	"mestre-tatu/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	tatu *bot.Bot,
	statsServer *server.StatsServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	handler := middleware.RequestID(logger)(c.Handler(statsServer.Routes()))
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := tatu.Open(); err != nil {
				return err
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("stats server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("stats server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := tatu.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing discord connection")
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("stats server shutdown failed")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
				return err
			}
			logger.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
