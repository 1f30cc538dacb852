package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity and pool health",
	Long: `Pings the database and prints connection pool statistics plus the
configured universe.

Example:
  go run ./cmd/dealerflow status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Dealerflow Status")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		PrintError(fmt.Sprintf("Database: %v", err))
		return fmt.Errorf("database ping: %w", err)
	}
	PrintSuccess("Database reachable")

	stats := a.db.Stats()
	fmt.Printf("  Pool: %d/%d conns (%d idle), %d acquires\n",
		stats.TotalConns, stats.MaxConns, stats.IdleConns, stats.AcquireCount)

	PrintSeparator()
	fmt.Printf("  Env      : %s\n", a.cfg.Env)
	fmt.Printf("  Universe : %d assets\n", len(a.universe.Assets))
	for _, asset := range a.universe.Assets {
		fmt.Printf("    %-10s %s\n", asset.Symbol, asset.Class)
	}

	return nil
}
