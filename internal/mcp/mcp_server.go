// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/taigaflow/taigaflow/internal/contract"
)

// NewMCPServer initializes and configures the Taigaflow MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Taigaflow CFD Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
	}

	// --- 1. Tool: taigaflow_generate ---
	s.AddTool(mcp.NewTool("taigaflow_generate",
		mcp.WithDescription("Generate a cumulative flow diagram dataset for a Taiga project: per-period counts of work items in each workflow state."),
		mcp.WithString("project", mcp.Description("Taiga project slug (defaults to the configured project).")),
		mcp.WithString("start", mcp.Description("Window start date in YYYY-MM-DD format.")),
		mcp.WithString("end", mcp.Description("Window end date in YYYY-MM-DD format.")),
		mcp.WithString("granularity", mcp.Description("Bucket size (day, week, month). Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		mcp.WithString("states", mcp.Description("Comma-separated state names overriding the project's board order.")),
	), h.handleGenerate)

	// --- 2. Tool: taigaflow_statuses ---
	s.AddTool(mcp.NewTool("taigaflow_statuses",
		mcp.WithDescription("List a Taiga project's workflow states in board order."),
		mcp.WithString("project", mcp.Description("Taiga project slug (defaults to the configured project).")),
	), h.handleStatuses)

	// --- 3. Tool: taigaflow_summary ---
	s.AddTool(mcp.NewTool("taigaflow_summary",
		mcp.WithDescription("Summarize recent flow for a Taiga project: arrivals, busiest state and per-state movement."),
		mcp.WithString("project", mcp.Description("Taiga project slug (defaults to the configured project).")),
		mcp.WithString("lookback", mcp.Description("Summary window, e.g. '2 weeks' or '720h'. Defaults to one month.")),
	), h.handleSummary)

	return s
}

// StartMCPServer starts the Taigaflow MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, logger *logrus.Logger) error {
	s := NewMCPServer(baseCfg, mgr, logger)
	return server.ServeStdio(s)
}
