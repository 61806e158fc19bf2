package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// eventCacheMaxAge bounds how long a cached project snapshot stays usable.
// Boards keep moving, so the window is much shorter than the run cadence
// of a typical report.
const eventCacheMaxAge = 12 * time.Hour

// cachedProjectData consults the event store before collecting from the API.
func cachedProjectData(ctx context.Context, cfg *contract.Config, client contract.ProjectClient, mgr contract.CacheManager, logger *logrus.Logger) (*schema.ProjectData, error) {
	store := mgr.GetEventStore()
	if store == nil {
		// Fallback to direct collection
		return fetchProjectData(ctx, cfg, client, logger)
	}

	key := generateCacheKey(cfg)

	// Check for cache hit
	if data := checkCacheHit(store, key); data != nil {
		logger.WithField("project", cfg.ProjectSlug).Info("Event cache hit")
		return data, nil
	}

	// Cache miss: collect and store
	return collectAndStore(ctx, cfg, client, store, key, logger)
}

// checkCacheHit attempts to retrieve and validate a cached project snapshot
func checkCacheHit(store contract.CacheStore, key string) *schema.ProjectData {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= eventCacheMaxAge {
			var result schema.ProjectData
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// collectAndStore collects the project data and stores it in cache
func collectAndStore(ctx context.Context, cfg *contract.Config, client contract.ProjectClient, store contract.CacheStore, key string, logger *logrus.Logger) (*schema.ProjectData, error) {
	result, err := fetchProjectData(ctx, cfg, client, logger)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(result); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return result, nil
}

// generateCacheKey creates a unique key based on the fetch parameters.
// The analysis window is not part of the key: events are window-independent
// and the aggregation filters by boundary.
func generateCacheKey(cfg *contract.Config) string {
	key := fmt.Sprintf("%s:%s:%d:%d",
		cfg.BaseURL,
		cfg.ProjectSlug,
		cfg.PageSize,
		cfg.MaxPages,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
