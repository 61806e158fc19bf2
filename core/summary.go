package core

import (
	"github.com/taigaflow/taigaflow/schema"
)

// summarizeFlow condenses a computed dataset into headline numbers: per-state
// movement across the window, the busiest state at the end, and the share of
// items sitting in closed states.
func summarizeFlow(result *schema.CFDResult, statuses []schema.ProjectStatus) schema.FlowSummary {
	summary := schema.FlowSummary{
		Project:     result.Project,
		Start:       result.Start,
		End:         result.End,
		Granularity: result.Granularity,
	}
	if len(result.Rows) == 0 {
		return summary
	}

	first := result.Rows[0]
	last := result.Rows[len(result.Rows)-1]

	busiest := ""
	busiestCount := -1
	flows := make([]schema.StateFlow, 0, len(result.States))
	for _, state := range result.States {
		flow := schema.StateFlow{
			State:      state,
			StartCount: first.Counts[state],
			EndCount:   last.Counts[state],
			Net:        last.Counts[state] - first.Counts[state],
		}
		flows = append(flows, flow)
		if flow.EndCount > busiestCount {
			busiest = state
			busiestCount = flow.EndCount
		}
	}

	closed := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		if status.IsClosed {
			closed[status.Name] = true
		}
	}
	closedCount := 0
	for state, count := range last.Counts {
		if closed[state] {
			closedCount += count
		}
	}

	summary.TotalItems = last.Total
	summary.ItemsEntered = last.Total - first.Total
	summary.BusiestState = busiest
	summary.States = flows
	if last.Total > 0 {
		summary.ClosedShare = float64(closedCount) / float64(last.Total)
	}
	return summary
}
