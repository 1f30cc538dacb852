package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/pipeline"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// PipelineJob runs the daily batch after the market data loaders finish.
// Default schedule is 22:30 on weekdays, after US futures settlement.
type PipelineJob struct {
	runner   *pipeline.Runner
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates a new pipeline job
func NewPipelineJob(runner *pipeline.Runner, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "daily_pipeline"
}

// Schedule returns the cron schedule expression
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline for today
func (j *PipelineJob) Run(ctx context.Context) error {
	today := time.Now()

	result, err := j.runner.Run(ctx, today)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"features_ok": result.FeaturesOK,
		"scored":      result.Scoring.Scored,
	}).Info("Scheduled pipeline completed")

	return nil
}
