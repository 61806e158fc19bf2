package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigaflow/taigaflow/schema"
)

func sampleCFDResult() *schema.CFDResult {
	return &schema.CFDResult{
		Project:     "Acme Board",
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Granularity: schema.DayGranularity,
		States:      []string{"New", "In progress", "Done"},
		Rows: []schema.CFDRow{
			{
				PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Counts:      map[string]int{"New": 3, "In progress": 1, "Done": 0},
				Total:       4,
			},
			{
				PeriodStart: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Counts:      map[string]int{"New": 2, "In progress": 1, "Done": 1},
				Total:       4,
			},
		},
		ItemCount:   4,
		GeneratedAt: time.Now(),
	}
}

func TestWriteCSVResultsForCFD(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVResultsForCFD(&buf, sampleCFDResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	// Header carries date, total, then states in workflow order
	assert.Equal(t, "date,total,New,In progress,Done", lines[0])
	assert.Equal(t, "2024-01-01,4,3,1,0", lines[1])
	assert.Equal(t, "2024-01-02,4,2,1,1", lines[2])
}

func TestWriteJSONResultsForCFD(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONResultsForCFD(&buf, sampleCFDResult())
	require.NoError(t, err)

	var decoded schema.CFDResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Acme Board", decoded.Project)
	assert.Equal(t, []string{"New", "In progress", "Done"}, decoded.States)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, 3, decoded.Rows[0].Counts["New"])
	assert.Equal(t, 4, decoded.Rows[0].Total)
}

func TestWriteCSVResultsForStatuses(t *testing.T) {
	statuses := []schema.ProjectStatus{
		{ID: 1, Name: "New", Slug: "new", Order: 1, IsClosed: false, Color: "#999999"},
		{ID: 2, Name: "Done", Slug: "done", Order: 2, IsClosed: true, Color: "#00ff00"},
	}

	var buf bytes.Buffer
	err := writeCSVResultsForStatuses(&buf, statuses)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "order,name,slug,is_closed,color", lines[0])
	assert.Equal(t, "1,New,new,false,#999999", lines[1])
	assert.Equal(t, "2,Done,done,true,#00ff00", lines[2])
}

func TestWriteCSVResultsForSummary(t *testing.T) {
	summary := schema.FlowSummary{
		Project: "acme-board",
		States: []schema.StateFlow{
			{State: "New", StartCount: 3, EndCount: 2, Net: -1},
			{State: "Done", StartCount: 0, EndCount: 1, Net: 1},
			{State: "Blocked", StartCount: 1, EndCount: 1, Net: 0},
		},
	}

	var buf bytes.Buffer
	err := writeCSVResultsForSummary(&buf, summary)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "state,start_count,end_count,net,trend", lines[0])
	assert.Equal(t, "New,3,2,-1,Shrinking", lines[1])
	assert.Equal(t, "Done,0,1,1,Growing", lines[2])
	assert.Equal(t, "Blocked,1,1,0,Steady", lines[3])
}

func TestWriteCSVResultsForCFD_ZeroCountsKept(t *testing.T) {
	result := sampleCFDResult()
	// Remove a state from the counts map entirely; the column must still render as 0
	delete(result.Rows[0].Counts, "Done")

	var buf bytes.Buffer
	err := writeCSVResultsForCFD(&buf, result)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "2024-01-01,4,3,1,0", lines[1])
}
