package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neri-gut/jwparse/internal/api"
	"github.com/neri-gut/jwparse/internal/discovery"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decode pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateServe(); err != nil {
				return err
			}

			parser, err := a.newParser()
			if err != nil {
				return err
			}
			disc := discovery.NewClient(a.cfg.CDNBaseURL)
			defer disc.Close()

			srv := api.NewServer(parser, disc, a.log, a.cfg)

			httpServer := &http.Server{
				Addr:         ":" + a.cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				a.log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			a.log.Info("starting jwparse api", "port", a.cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	return cmd
}
