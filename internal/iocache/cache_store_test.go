package iocache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigaflow/taigaflow/schema"
)

func TestCacheStore_SQLiteRoundTrip(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	key := "project-data-key"
	payload := []byte(`{"story_count":12}`)
	ts := time.Now().Unix()

	require.NoError(t, store.Set(key, payload, 1, ts))

	got, version, gotTs, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, version)
	assert.Equal(t, ts, gotTs)
}

func TestCacheStore_Upsert(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	key := "project-data-key"
	require.NoError(t, store.Set(key, []byte("old"), 1, 100))
	require.NoError(t, store.Set(key, []byte("new"), 2, 200))

	got, version, ts, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)
}

func TestCacheStore_GetMissingKey(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("does-not-exist")
	assert.Error(t, err)
}

func TestCacheStore_GetStatus(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("x"), 1, time.Now().Unix()))
	require.NoError(t, store.Set("b", []byte("y"), 1, time.Now().Unix()))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.False(t, status.LastEntryTime.IsZero())
}

func TestCacheStore_InvalidTableName(t *testing.T) {
	_, err := NewCacheStore("bad-name; DROP TABLE", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("taigaflow_cache"))
	assert.NoError(t, validateTableName("_private"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("1starts_with_digit"))
	assert.Error(t, validateTableName("has space"))
}
