package schema

import "time"

// StateFlow captures how a single workflow state moved over the window.
type StateFlow struct {
	State      string `json:"state"`
	StartCount int    `json:"start_count"`
	EndCount   int    `json:"end_count"`
	Net        int    `json:"net"`
}

// FlowSummary condenses a CFD dataset into headline numbers for quick review.
type FlowSummary struct {
	Project      string      `json:"project"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	Granularity  Granularity `json:"granularity"`
	TotalItems   int         `json:"total_items"`
	ItemsEntered int         `json:"items_entered"` // new arrivals within the window
	BusiestState string      `json:"busiest_state"` // largest state at window end
	ClosedShare  float64     `json:"closed_share"`  // fraction of items in closed states at window end
	States       []StateFlow `json:"states"`
}
