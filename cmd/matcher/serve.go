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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/david-caro/inspire-matcher/internal/transport/chi"
	"github.com/david-caro/inspire-matcher/internal/version"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compile API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		a.logger.Info("Starting matcher API server",
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("env", envName),
			zap.Int("http_port", a.cfg.HTTP.Port),
			zap.Int("algorithms", len(a.matching.Algorithms())),
		)

		server := chiTransport.NewServer(a.matching, a.logger).WithMaxBodyBytes(a.cfg.HTTP.MaxBodyBytes)
		handler := chiTransport.NewRouter(server, a.cfg.Auth.APIKeys, a.logger)

		addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
		srv := &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("Starting HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
			a.logger.Info("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Error during shutdown", zap.Error(err))
			return fmt.Errorf("shutdown: %w", err)
		}

		a.logger.Info("Server stopped gracefully")
		return nil
	},
}
