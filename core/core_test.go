package core

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/internal/iocache"
	"github.com/taigaflow/taigaflow/schema"
)

// quietLogger returns a logger that swallows output during tests.
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// boardStatuses is a minimal three-state workflow used across core tests.
func boardStatuses() []schema.ProjectStatus {
	return []schema.ProjectStatus{
		{ID: 1, Name: "New", Order: 1},
		{ID: 2, Name: "In progress", Order: 2},
		{ID: 3, Name: "Done", Order: 3, IsClosed: true},
	}
}

func generateConfig() *contract.Config {
	return &contract.Config{
		ProjectSlug: "acme-board",
		StartTime:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		Granularity: schema.DayGranularity,
		Workers:     2,
	}
}

func TestRunGenerateCore_Success(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}

	// Setup mock expectations
	mockMgr.On("GetEventStore").Return(nil)     // No event caching for test
	mockMgr.On("GetSnapshotStore").Return(nil)  // No run tracking for test
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Name: "Acme Board", Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{
		{ID: 101, Ref: 1, StatusID: 3, CreatedDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)
	mockClient.On("StoryHistory", ctx, 101).Return([]schema.StatusChangeEvent{
		{ItemID: 101, Timestamp: time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC), FromStatus: "New", ToStatus: "Done"},
	}, nil)

	cfg := generateConfig()
	output, err := runGenerateCore(ctx, cfg, mockClient, mockMgr, quietLogger())

	require.NoError(t, err)
	require.NotNil(t, output)
	result := output.Result
	assert.Equal(t, "Acme Board", result.Project)
	assert.Equal(t, []string{"New", "In progress", "Done"}, result.States)
	assert.Equal(t, 1, result.ItemCount)
	require.Len(t, result.Rows, 5)

	// The story sits in New until its Jan 3 move to Done; the on-boundary
	// move counts within the Jan 3 row.
	assert.Equal(t, 1, result.Rows[0].Counts["New"])
	assert.Equal(t, 0, result.Rows[0].Counts["Done"])
	assert.Equal(t, 1, result.Rows[1].Counts["New"])
	assert.Equal(t, 1, result.Rows[2].Counts["Done"])
	assert.Equal(t, 1, result.Rows[4].Counts["Done"])
	assert.Equal(t, 1, result.Rows[4].Total)

	mockClient.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_IntraDayEventCountsNextBoundary(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}

	mockMgr.On("GetEventStore").Return(nil)
	mockMgr.On("GetSnapshotStore").Return(nil)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Name: "Acme Board", Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	// Created mid-morning: boundaries sit at UTC midnight, so the story is
	// not yet visible at the Jan 1 boundary and first counts on Jan 2.
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{
		{ID: 101, Ref: 1, StatusID: 1, CreatedDate: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)},
	}, nil)
	mockClient.On("StoryHistory", ctx, 101).Return([]schema.StatusChangeEvent{}, nil)

	output, err := runGenerateCore(ctx, generateConfig(), mockClient, mockMgr, quietLogger())

	require.NoError(t, err)
	rows := output.Result.Rows
	require.Len(t, rows, 5)
	assert.Equal(t, 0, rows[0].Total)
	assert.Equal(t, 1, rows[1].Total)
	assert.Equal(t, 1, rows[1].Counts["New"])

	mockClient.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_ExplicitStatesOverride(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}

	mockMgr.On("GetEventStore").Return(nil)
	mockMgr.On("GetSnapshotStore").Return(nil)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Name: "Acme Board", Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{
		{ID: 101, Ref: 1, StatusID: 3, CreatedDate: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)
	mockClient.On("StoryHistory", ctx, 101).Return([]schema.StatusChangeEvent{
		{ItemID: 101, Timestamp: time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC), FromStatus: "New", ToStatus: "Done"},
	}, nil)

	cfg := generateConfig()
	cfg.States = []string{"Done", "In progress", "New"}

	output, err := runGenerateCore(ctx, cfg, mockClient, mockMgr, quietLogger())

	require.NoError(t, err)
	assert.Equal(t, []string{"Done", "In progress", "New"}, output.Result.States,
		"configured order wins over the board order")

	mockClient.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_ProjectError(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}

	mockMgr.On("GetEventStore").Return(nil)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{}, contract.AuthError{Status: 401})

	output, err := runGenerateCore(ctx, generateConfig(), mockClient, mockMgr, quietLogger())

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, contract.IsAuth(err))

	mockClient.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_InvalidWindow(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}

	mockMgr.On("GetEventStore").Return(nil)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{}, nil)

	cfg := generateConfig()
	cfg.StartTime = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndTime = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	output, err := runGenerateCore(ctx, cfg, mockClient, mockMgr, quietLogger())

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, contract.IsValidation(err))

	mockClient.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_RecordsRun(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}
	mockSnap := &iocache.MockSnapshotStore{}

	mockMgr.On("GetEventStore").Return(nil)
	mockMgr.On("GetSnapshotStore").Return(mockSnap)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Name: "Acme Board", Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{}, nil)

	runID := "0b6f1c3e-5a77-4b42-9a36-2f9a4f1d8c10"
	mockSnap.On("BeginRun",
		mock.AnythingOfType("time.Time"), "acme-board", schema.DayGranularity,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("map[string]interface {}"),
	).Return(runID, nil)
	mockSnap.On("RecordRows", runID, []string{"New", "In progress", "Done"}, mock.AnythingOfType("[]schema.CFDRow")).Return(nil)
	mockSnap.On("EndRun", runID, mock.AnythingOfType("time.Time"), 5).Return(nil)

	output, err := runGenerateCore(ctx, generateConfig(), mockClient, mockMgr, quietLogger())

	require.NoError(t, err)
	require.NotNil(t, output)

	mockSnap.AssertExpectations(t)
	mockMgr.AssertExpectations(t)
}

func TestRunGenerateCore_RecordFailureIsNonFatal(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	mockClient := &contract.MockProjectClient{}
	mockMgr := &iocache.MockCacheManager{}
	mockSnap := &iocache.MockSnapshotStore{}

	mockMgr.On("GetEventStore").Return(nil)
	mockMgr.On("GetSnapshotStore").Return(mockSnap)
	mockClient.On("ProjectBySlug", ctx, "acme-board").Return(schema.Project{ID: 42, Name: "Acme Board", Slug: "acme-board"}, nil)
	mockClient.On("Statuses", ctx, 42).Return(boardStatuses(), nil)
	mockClient.On("UserStories", ctx, 42).Return([]schema.UserStory{}, nil)
	mockSnap.On("BeginRun",
		mock.AnythingOfType("time.Time"), "acme-board", schema.DayGranularity,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("map[string]interface {}"),
	).Return("", assert.AnError)

	output, err := runGenerateCore(ctx, generateConfig(), mockClient, mockMgr, quietLogger())

	assert.NoError(t, err)
	assert.NotNil(t, output)

	mockSnap.AssertExpectations(t)
}
