// Package core has core logic for collecting project history and computing flow datasets.
package core

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taigaflow/taigaflow/core/cfd"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/internal/outwriter"
	"github.com/taigaflow/taigaflow/internal/taiga"
	"github.com/taigaflow/taigaflow/schema"
)

// summaryLookback is the fixed window the summary mode inspects.
const summaryLookback = 30 * 24 * time.Hour

// ExecutorFunc defines the function signature for executing different generation modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) error

// ExecuteGenerate runs the full pipeline and prints the flow dataset.
// It serves as the main entry point for the 'generate' mode.
func ExecuteGenerate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) error {
	start := time.Now()
	output, err := GetGenerateResults(ctx, cfg, mgr, logger)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintCFDResults(output.Result, cfg, duration)
}

// ExecuteStatuses lists the project's workflow states in board order.
// It serves as the main entry point for the 'statuses' mode.
func ExecuteStatuses(ctx context.Context, cfg *contract.Config, _ contract.CacheManager, logger *logrus.Logger) error {
	start := time.Now()
	project, statuses, err := GetWorkflowResults(ctx, cfg, logger)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintStatusResults(project, statuses, cfg, duration)
}

// ExecuteSummary runs a quick analysis over the most recent month at day
// granularity and prints the condensed flow numbers.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) error {
	start := time.Now()
	summary, cfgRun, err := GetSummaryResults(ctx, cfg, mgr, logger, 0)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintSummaryResults(summary, cfgRun, duration)
}

// GetGenerateResults runs the pipeline and returns the structured output
// without printing. Used by the MCP and HTTP surfaces.
func GetGenerateResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) (*schema.GenerateOutput, error) {
	client := taiga.NewClient(cfg, logger)
	return runGenerateCore(ctx, cfg, client, mgr, logger)
}

// GetWorkflowResults resolves the project and returns its workflow states in
// board order without printing.
func GetWorkflowResults(ctx context.Context, cfg *contract.Config, logger *logrus.Logger) (schema.Project, []schema.ProjectStatus, error) {
	client := taiga.NewClient(cfg, logger)
	return fetchWorkflow(ctx, cfg, client)
}

// GetSummaryResults runs the condensed analysis over the most recent lookback
// period at day granularity. A zero lookback means the default month. It
// returns the summary plus the adjusted config used for it.
func GetSummaryResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger, lookback time.Duration) (schema.FlowSummary, *contract.Config, error) {
	if lookback <= 0 {
		lookback = summaryLookback
	}
	now := time.Now()
	cfgRun := cfg.CloneWithTimeWindow(now.Add(-lookback), now)
	cfgRun.Granularity = schema.DayGranularity

	output, err := GetGenerateResults(ctx, cfgRun, mgr, logger)
	if err != nil {
		return schema.FlowSummary{}, cfgRun, err
	}
	return summarizeFlow(output.Result, output.Data.Statuses), cfgRun, nil
}

// runGenerateCore performs the common Collection, Aggregation and Recording steps.
func runGenerateCore(ctx context.Context, cfg *contract.Config, client contract.ProjectClient, mgr contract.CacheManager, logger *logrus.Logger) (*schema.GenerateOutput, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogGenerateHeader(cfg)
	}

	// --- 1. Collection Phase (with caching) ---
	data, err := cachedProjectData(ctx, cfg, client, mgr, logger)
	if err != nil {
		return nil, err
	}

	// --- 2. Aggregation Phase ---
	states := cfg.States
	if len(states) == 0 {
		states = schema.StateNames(data.Statuses)
	}
	rows, err := cfd.Compute(data.Events, states, cfg.GetWindowStartTime(), cfg.GetWindowEndTime(), cfg.Granularity)
	if err != nil {
		return nil, err
	}

	result := &schema.CFDResult{
		Project:     data.Project.Name,
		Start:       cfg.GetWindowStartTime(),
		End:         cfg.GetWindowEndTime(),
		Granularity: cfg.Granularity,
		States:      states,
		Rows:        rows,
		ItemCount:   data.StoryCount,
		GeneratedAt: time.Now(),
	}

	// --- 3. Run Recording (if configured) ---
	recordRun(cfg, mgr, result)

	return &schema.GenerateOutput{Result: result, Data: data}, nil
}

// recordRun persists the dataset to the snapshot store. Failures are logged
// and never fail the generation itself.
func recordRun(cfg *contract.Config, mgr contract.CacheManager, result *schema.CFDResult) {
	store := mgr.GetSnapshotStore()
	if store == nil {
		return
	}

	configParams := map[string]any{
		"project":     cfg.ProjectSlug,
		"granularity": string(cfg.Granularity),
		"workers":     cfg.Workers,
		"page_size":   cfg.PageSize,
		"max_pages":   cfg.MaxPages,
	}
	runID, err := store.BeginRun(time.Now(), cfg.ProjectSlug, result.Granularity, result.Start, result.End, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}
	if err := store.RecordRows(runID, result.States, result.Rows); err != nil {
		contract.LogWarn("Run row recording failed", err)
		return
	}
	if err := store.EndRun(runID, time.Now(), len(result.Rows)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
