package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/taigaflow/taigaflow/core"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	logger  *logrus.Logger
}

func (h *toolHandler) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("project", ""); p != "" {
		cfg.ProjectSlug = p
	}
	if cfg.ProjectSlug == "" {
		return mcp.NewToolResultError("project slug is required"), nil
	}
	if g := request.GetString("granularity", ""); g != "" {
		granularity, ok := schema.NormalizeGranularity(g)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid granularity: %s (expected day, week or month)", g)), nil
		}
		cfg.Granularity = granularity
	}
	if states := request.GetString("states", ""); states != "" {
		cfg.States = contract.SplitStateList(states)
		if len(cfg.States) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid states list: %s", states)), nil
		}
	}
	if s := request.GetString("start", ""); s != "" {
		start, err := time.Parse(contract.DateFormat, s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start date: %v", err)), nil
		}
		cfg.StartTime = start
	}
	if e := request.GetString("end", ""); e != "" {
		end, err := time.Parse(contract.DateFormat, e)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end date: %v", err)), nil
		}
		cfg.EndTime = end
	}
	// Equality is allowed: a single-boundary window yields one bucket.
	if cfg.GetWindowStartTime().After(cfg.GetWindowEndTime()) {
		return mcp.NewToolResultError("start date must not be after end date"), nil
	}

	output, err := core.GetGenerateResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output.Result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleStatuses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("project", ""); p != "" {
		cfg.ProjectSlug = p
	}
	if cfg.ProjectSlug == "" {
		return mcp.NewToolResultError("project slug is required"), nil
	}

	project, statuses, err := core.GetWorkflowResults(core.WithSuppressHeader(ctx), cfg, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status lookup failed: %v", err)), nil
	}

	payload := map[string]any{
		"project":  project,
		"statuses": statuses,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("project", ""); p != "" {
		cfg.ProjectSlug = p
	}
	if cfg.ProjectSlug == "" {
		return mcp.NewToolResultError("project slug is required"), nil
	}

	var lookback time.Duration
	if l := request.GetString("lookback", ""); l != "" {
		parsed, err := contract.ParseLookbackDuration(l)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid lookback: %v", err)), nil
		}
		lookback = parsed
	}

	summary, _, err := core.GetSummaryResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.logger, lookback)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
