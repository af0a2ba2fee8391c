package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/item-service/internal/api"
	"github.com/Sternrassler/item-service/pkg/engine"
	"github.com/Sternrassler/item-service/pkg/logging"
	"github.com/Sternrassler/item-service/pkg/workerpool"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the item HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts down the
// server first and the worker pool second.
func (a *app) serve(ctx context.Context) error {
	itemStore, closeStore, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	pool := workerpool.New(a.cfg.WorkerPool(), logging.NewLogger("pool"))
	eng := engine.New(itemStore, pool, a.cfg.BatchEngine(), logging.NewLogger("engine"))
	handler := api.NewHandler(itemStore, eng, logging.NewLogger("api"))

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().
			Str("addr", a.cfg.Server.Addr).
			Str("store", a.cfg.Store.Backend).
			Int("workers", a.cfg.Pool.Workers).
			Msg("Starting item service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info().Msg("Shutting down item service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		serverErr := server.Shutdown(shutdownCtx)
		poolErr := pool.Shutdown(shutdownCtx)
		return errors.Join(serverErr, poolErr)
	})

	return g.Wait()
}
