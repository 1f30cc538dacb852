package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dealerflow/dealerflow/internal/api"
	"github.com/dealerflow/dealerflow/internal/macro"
	"github.com/dealerflow/dealerflow/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read-only API server",
	Long: `Starts the HTTP server exposing scores and the macro state.

Endpoints:
  GET  /health                   - Health check
  GET  /api/v1/scores/{date}     - Asset scores for a date
  GET  /api/v1/state/{date}      - Macro state for a date

Example:
  go run ./cmd/dealerflow api
  go run ./cmd/dealerflow api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides API_PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.API.Port = apiPort
	}

	rdb, err := redis.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	cache := redis.NewCache(rdb, "dealerflow")

	builder := macro.NewStateBuilder(a.scores, a.macros, a.logger)
	handler := api.NewHandler(a.scores, builder, a.universe, cache, a.logger)
	router := api.NewRouter(handler, a.logger, rate.Limit(a.cfg.API.RateLimit), a.cfg.API.RateBurst)
	server := api.New(a.cfg, a.logger, router)

	go func() {
		if err := server.Start(); err != nil {
			a.logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.API.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/v1/scores/{date}")
	fmt.Println("  GET  /api/v1/state/{date}")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.logger.Info("Server stopped")
	return nil
}
