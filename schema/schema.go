// Package schema has configs, models and shared vocabulary for all parts of taigaflow.
package schema

import "time"

// StatusChangeEvent represents one observed transition of a work item between
// workflow states. Events are immutable once recorded. The client emits one
// synthetic creation event per story (empty FromStatus, targeting the story's
// initial status) followed by one event per status change in its history.
type StatusChangeEvent struct {
	ItemID     int       `json:"item_id"`
	Timestamp  time.Time `json:"timestamp"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
}

// CFDRow is one period of the cumulative flow dataset: how many items sit in
// each workflow state as of the period's start boundary. Counts carries every
// configured state, zero included; Total is the sum across states.
type CFDRow struct {
	PeriodStart time.Time      `json:"period_start"`
	Counts      map[string]int `json:"counts"`
	Total       int            `json:"total"`
}

// CFDResult holds the computed rows plus the metadata the writers need.
type CFDResult struct {
	Project     string      `json:"project"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
	States      []string    `json:"states"` // workflow order, drives column order
	Rows        []CFDRow    `json:"rows"`
	ItemCount   int         `json:"item_count"`
	GeneratedAt time.Time   `json:"generated_at"`
}
