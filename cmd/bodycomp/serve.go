// ABOUTME: CLI command for starting the HTTP JSON API.
// ABOUTME: Serves until SIGINT/SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr  string
	serveToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP JSON API.

ENDPOINTS:

  GET    /health                                 Liveness and AI availability
  GET    /metrics                                Prometheus metrics
  GET    /api/v1/subjects                        List subjects
  POST   /api/v1/subjects                        Create a subject
  GET    /api/v1/subjects/:subject               Get a subject
  DELETE /api/v1/subjects/:subject               Delete a subject
  GET    /api/v1/subjects/:subject/measurements  List measurements
  POST   /api/v1/subjects/:subject/measurements  Record a measurement
  DELETE /api/v1/measurements/:id                Delete a measurement
  GET    /api/v1/subjects/:subject/card          Latest score and protein
  GET    /api/v1/subjects/:subject/trend         Score per week
  GET    /api/v1/subjects/:subject/protein       Protein range (?weight=)
  POST   /api/v1/evaluate                        Score ad-hoc values
  POST   /api/v1/subjects/:subject/extract       Read a report photo (multipart "image")
  GET    /api/v1/insights/comparison             AI comparison of all subjects

AI routes answer 503 unless a gateway API key is configured. With
--token (or server.api_token) every /api/v1 route requires
"Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetServerAddr()
		}
		token := serveToken
		if token == "" {
			token = cfg.Server.APIToken
		}

		svc, err := aiService()
		if errors.Is(err, ai.ErrNotConfigured) {
			logger.Info("AI routes disabled", zap.String("reason", "no gateway api key"))
			svc = nil
		} else if err != nil {
			return err
		}

		srv, err := server.New(server.Options{
			Repo:      repo,
			Evaluator: evaluator,
			AI:        svc,
			Logger:    logger,
			Addr:      addr,
			APIToken:  token,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			serverErrors <- srv.Start()
		}()

		select {
		case err := <-serverErrors:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "bearer token required on /api/v1 routes")
	rootCmd.AddCommand(serveCmd)
}
