// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/taigaflow/taigaflow/schema"
)

// ProjectClient defines the necessary operations against a Taiga project API.
// This allows the core flow logic to be tested without needing a live server.
type ProjectClient interface {
	// --- Generic / Low-Level ---

	// Get executes a raw GET request against an API path and returns the response body.
	// Its use should be minimized in favor of the explicit methods below.
	Get(ctx context.Context, path string, query map[string]string) ([]byte, error)

	// --- Project / Workflow Resolution ---

	// ProjectBySlug resolves a project slug (e.g. "acme/backlog") to its project record.
	ProjectBySlug(ctx context.Context, slug string) (schema.Project, error)

	// Statuses returns the project's workflow states in board order.
	Statuses(ctx context.Context, projectID int) ([]schema.ProjectStatus, error)

	// --- History / Event Collection ---

	// UserStories returns every user story in the project, walking the
	// paginated listing up to the configured page cap.
	UserStories(ctx context.Context, projectID int) ([]schema.UserStory, error)

	// StoryHistory returns the status-change events recorded for one story,
	// oldest first. Entries that did not change the status are skipped.
	StoryHistory(ctx context.Context, storyID int) ([]schema.StatusChangeEvent, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetEventStore() CacheStore
	GetSnapshotStore() SnapshotStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// SnapshotStore defines the interface for tracking generation runs and storing flow rows.
type SnapshotStore interface {
	// BeginRun creates a new generation run and returns its unique ID
	BeginRun(startTime time.Time, project string, granularity schema.Granularity, windowStart, windowEnd time.Time, configParams map[string]any) (string, error)

	// EndRun updates the generation run with completion data
	EndRun(runID string, endTime time.Time, totalRows int) error

	// RecordRows stores the computed per-period state counts for a run
	RecordRows(runID string, states []string, rows []schema.CFDRow) error

	// ListRuns returns the most recent runs, newest first
	ListRuns(limit int) ([]schema.RunRecord, error)

	// GetRunRows returns the stored rows for a run in period order
	GetRunRows(runID string) ([]schema.RunRowRecord, error)

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.SnapshotStatus, error)

	// Close closes the underlying connection
	Close() error
}
