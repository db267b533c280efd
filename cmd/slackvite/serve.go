package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slackvite/internal/interfaces/router"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		app, db, rdb, err := router.CreateApp(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		log.Info().Msg("Postgres connected")
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		log.Info().Msg("Redis connected")

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Msg("Server running")
			errCh <- app.Listen(":" + cfg.Port)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		_ = rdb.Close()
		return sqlDB.Close()
	},
}
