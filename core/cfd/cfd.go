// Package cfd has cumulative flow aggregation logic for status change events.
package cfd

import (
	"fmt"
	"sort"
	"time"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// Compute replays status change events into one cumulative flow row per period.
// Each row counts, for every workflow state, the items whose latest event at or
// before the period start moved them into that state. Items without any event
// at or before a boundary are not counted for that boundary, so totals grow as
// items enter the window and never shrink.
//
// The function is pure: it never mutates its inputs and the same inputs always
// produce the same rows.
func Compute(events []schema.StatusChangeEvent, states []string, start, end time.Time, granularity schema.Granularity) ([]schema.CFDRow, error) {
	// 1. Reject impossible requests before any row is produced
	if err := validateInputs(events, states, start, end, granularity); err != nil {
		return nil, err
	}

	// 2. Build the contiguous period boundaries, inclusive of start and end
	boundaries := buildBoundaries(start, end, granularity)

	// 3. Group events per item and order each timeline once
	itemEvents := groupAndSortEvents(events)

	// 4. Count the authoritative state of every item at each boundary
	rows := make([]schema.CFDRow, 0, len(boundaries))
	for _, boundary := range boundaries {
		row := schema.CFDRow{
			PeriodStart: boundary,
			Counts:      make(map[string]int, len(states)),
		}
		for _, state := range states {
			row.Counts[state] = 0
		}
		for _, timeline := range itemEvents {
			if state, ok := statusAtBoundary(timeline, boundary); ok {
				row.Counts[state]++
				row.Total++
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// validateInputs checks the request shape and the event payloads. A request
// that can never succeed yields a ValidationError; event data that cannot be
// placed on a timeline yields a DataIntegrityError.
func validateInputs(events []schema.StatusChangeEvent, states []string, start, end time.Time, granularity schema.Granularity) error {
	if _, ok := schema.ValidGranularities[granularity]; !ok {
		return contract.ValidationError{Field: "granularity", Reason: fmt.Sprintf("unknown granularity %q. must be day, week, month", granularity)}
	}
	if start.IsZero() || end.IsZero() {
		return contract.ValidationError{Field: "time range", Reason: "start and end are required"}
	}
	if start.After(end) {
		return contract.ValidationError{Field: "time range", Reason: fmt.Sprintf("start %s is after end %s", start.Format(contract.DateTimeFormat), end.Format(contract.DateTimeFormat))}
	}
	if len(states) == 0 {
		return contract.ValidationError{Field: "states", Reason: "at least one workflow state is required"}
	}

	stateSet := make(map[string]struct{}, len(states))
	for _, state := range states {
		if _, dup := stateSet[state]; dup {
			return contract.ValidationError{Field: "states", Reason: fmt.Sprintf("workflow state %q appears more than once", state)}
		}
		stateSet[state] = struct{}{}
	}

	for _, ev := range events {
		if ev.ItemID <= 0 {
			return contract.DataIntegrityError{Reason: "event references no item"}
		}
		if ev.Timestamp.IsZero() {
			return contract.DataIntegrityError{ItemID: ev.ItemID, Reason: "event has no timestamp"}
		}
		if _, ok := stateSet[ev.ToStatus]; !ok {
			return contract.ValidationError{Field: "to_status", Reason: fmt.Sprintf("status %q on item %d is not a workflow state", ev.ToStatus, ev.ItemID)}
		}
	}

	return nil
}

// buildBoundaries returns every period start from start through end. A window
// where start equals end still yields a single boundary.
func buildBoundaries(start, end time.Time, granularity schema.Granularity) []time.Time {
	var boundaries []time.Time
	for b := start; !b.After(end); b = granularity.Next(b) {
		boundaries = append(boundaries, b)
	}
	return boundaries
}

// groupAndSortEvents buckets events per item and sorts each timeline by
// timestamp. The sort is stable so events sharing a timestamp keep their
// input order, which makes the most recently appended event win the tie.
func groupAndSortEvents(events []schema.StatusChangeEvent) map[int][]schema.StatusChangeEvent {
	itemEvents := make(map[int][]schema.StatusChangeEvent)
	for _, ev := range events {
		itemEvents[ev.ItemID] = append(itemEvents[ev.ItemID], ev)
	}
	for _, timeline := range itemEvents {
		sort.SliceStable(timeline, func(i, j int) bool {
			return timeline[i].Timestamp.Before(timeline[j].Timestamp)
		})
	}
	return itemEvents
}

// statusAtBoundary returns the authoritative state of an item at a boundary:
// the to_status of its latest event with timestamp at or before the boundary.
// The second return value is false when the item has no such event yet.
func statusAtBoundary(timeline []schema.StatusChangeEvent, boundary time.Time) (string, bool) {
	// Binary search for the first event strictly after the boundary. An event
	// landing exactly on the boundary counts within that period.
	idx := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].Timestamp.After(boundary)
	})
	if idx == 0 {
		return "", false
	}
	return timeline[idx-1].ToStatus, true
}
