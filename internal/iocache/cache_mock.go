package iocache

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// MockCacheManager is a mock implementation of contract.CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

func (m *MockCacheManager) GetEventStore() contract.CacheStore {
	args := m.Called()
	if store := args.Get(0); store != nil {
		return store.(contract.CacheStore)
	}
	return nil
}

func (m *MockCacheManager) GetSnapshotStore() contract.SnapshotStore {
	args := m.Called()
	if store := args.Get(0); store != nil {
		return store.(contract.SnapshotStore)
	}
	return nil
}

// MockCacheStore is a mock implementation of contract.CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	var value []byte
	if v := args.Get(0); v != nil {
		value = v.([]byte)
	}
	return value, args.Int(1), args.Get(2).(int64), args.Error(3)
}

func (m *MockCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	args := m.Called(key, value, version, timestamp)
	return args.Error(0)
}

func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSnapshotStore is a mock implementation of contract.SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) BeginRun(startTime time.Time, project string, granularity schema.Granularity, windowStart, windowEnd time.Time, configParams map[string]any) (string, error) {
	args := m.Called(startTime, project, granularity, windowStart, windowEnd, configParams)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshotStore) EndRun(runID string, endTime time.Time, totalRows int) error {
	args := m.Called(runID, endTime, totalRows)
	return args.Error(0)
}

func (m *MockSnapshotStore) RecordRows(runID string, states []string, rows []schema.CFDRow) error {
	args := m.Called(runID, states, rows)
	return args.Error(0)
}

func (m *MockSnapshotStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	var runs []schema.RunRecord
	if v := args.Get(0); v != nil {
		runs = v.([]schema.RunRecord)
	}
	return runs, args.Error(1)
}

func (m *MockSnapshotStore) GetRunRows(runID string) ([]schema.RunRowRecord, error) {
	args := m.Called(runID)
	var rows []schema.RunRowRecord
	if v := args.Get(0); v != nil {
		rows = v.([]schema.RunRowRecord)
	}
	return rows, args.Error(1)
}

func (m *MockSnapshotStore) GetStatus() (schema.SnapshotStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.SnapshotStatus), args.Error(1)
}

func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
