package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealerflow/dealerflow/internal/scheduler"
	"github.com/dealerflow/dealerflow/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the daily pipeline scheduler",
	Long: `Runs the daily pipeline on its cron schedule (default 22:30 on
weekdays, exchange time). Failed runs are retried up to three times.

Example:
  go run ./cmd/dealerflow scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	loc, err := time.LoadLocation(a.cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", a.cfg.Scheduler.Timezone, err)
	}

	sched := scheduler.New(a.logger, loc)

	job := jobs.NewPipelineJob(a.runner, a.cfg.Scheduler.PipelineSpec, a.logger)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add pipeline job: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler running")
	fmt.Printf("  %s: %s (%s)\n", job.Name(), job.Schedule(), a.cfg.Scheduler.Timezone)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
