package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpHandler "reservation-sync/internal/adapter/http/handler"
	"reservation-sync/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	var noSweeper bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, webhook receiver and retry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := rt.cfg, rt.log
			log.Info().
				Str("mode", cfg.Server.Mode).
				Int("port", cfg.Server.Port).
				Str("version", Version).
				Msg("starting reservation sync")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := wire(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer c.close(log)

			router := httpHandler.SetupRouter(httpHandler.RouterDeps{
				MappingSvc:      c.mappingSvc,
				AvailabilitySvc: c.availabilitySvc,
				SyncSvc:         c.syncSvc,
				WebhookSvc:      c.webhookSvc,
				TokenSvc:        c.tokenSvc,
				Bookings:        c.bookings,
				Reservations:    c.reservations,
				ChangeFeed:      c.feed,
				RateLimitStore:  c.rateLimits,
				HealthCheckers:  c.healthCheckers,
				AuditSvc:        c.auditSvc,
				Mode:            cfg.Server.Mode,
				Logger:          log,
			})

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			var wg sync.WaitGroup
			if !noSweeper {
				sweeper := service.NewRetrySweeper(c.syncSvc, cfg.Sync.SweepInterval, log)
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						log.Error().Err(err).Msg("retry sweeper stopped")
					}
				}()
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("HTTP server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down server...")
			case err := <-serveErr:
				stop()
				wg.Wait()
				return fmt.Errorf("http server: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
			}
			wg.Wait()

			log.Info().Msg("server exited")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSweeper, "no-sweeper", false, "do not run the retry sweeper in this process")
	return cmd
}
