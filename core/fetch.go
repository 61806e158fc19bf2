package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// fetchWorkflow resolves the project slug and lists its workflow states.
func fetchWorkflow(ctx context.Context, cfg *contract.Config, client contract.ProjectClient) (schema.Project, []schema.ProjectStatus, error) {
	project, err := client.ProjectBySlug(ctx, cfg.ProjectSlug)
	if err != nil {
		return schema.Project{}, nil, err
	}

	statuses, err := client.Statuses(ctx, project.ID)
	if err != nil {
		return schema.Project{}, nil, err
	}
	if len(statuses) == 0 {
		return schema.Project{}, nil, fmt.Errorf("project %s has no user story statuses", cfg.ProjectSlug)
	}
	return project, statuses, nil
}

// fetchProjectData performs the uncached collection: resolve the slug, list
// the workflow states, then walk every story's history.
func fetchProjectData(ctx context.Context, cfg *contract.Config, client contract.ProjectClient, logger *logrus.Logger) (*schema.ProjectData, error) {
	// --- 1. Project and Workflow Resolution ---
	project, statuses, err := fetchWorkflow(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	// --- 2. Story Listing ---
	stories, err := client.UserStories(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	// --- 3. History Collection ---
	events := fetchStoryEvents(ctx, cfg, client, logger, stories, statusNameByID(statuses))

	logger.WithFields(logrus.Fields{
		"project": project.Slug,
		"stories": len(stories),
		"events":  len(events),
	}).Info("Collected project history")

	return &schema.ProjectData{
		Project:    project,
		Statuses:   statuses,
		Events:     events,
		StoryCount: len(stories),
	}, nil
}

// statusNameByID maps status ids to names for creation-event synthesis.
func statusNameByID(statuses []schema.ProjectStatus) map[int]string {
	names := make(map[int]string, len(statuses))
	for _, s := range statuses {
		names[s.ID] = s.Name
	}
	return names
}

// fetchStoryEvents walks every story's history in parallel using a worker pool.
// It spawns cfg.Workers number of goroutines and aggregates their results into
// a single event slice. Each story's events stay contiguous and in order.
func fetchStoryEvents(ctx context.Context, cfg *contract.Config, client contract.ProjectClient, logger *logrus.Logger, stories []schema.UserStory, statusNames map[int]string) []schema.StatusChangeEvent {
	storyCh := make(chan schema.UserStory, len(stories))
	eventsCh := make(chan []schema.StatusChangeEvent, len(stories))
	var wg sync.WaitGroup

	// Start worker pool
	for range cfg.Workers {
		wg.Go(func() {
			for story := range storyCh {
				eventsCh <- storyEvents(ctx, client, logger, story, statusNames)
			}
		})
	}

	// Send stories to worker channel
	for _, story := range stories {
		storyCh <- story
	}
	close(storyCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(eventsCh)

	events := make([]schema.StatusChangeEvent, 0, len(stories))
	for batch := range eventsCh {
		events = append(events, batch...)
	}
	return events
}

// storyEvents returns the full event log for one story: a synthetic creation
// event followed by its recorded status changes. A failed history fetch is
// logged and the story falls back to its current status.
func storyEvents(ctx context.Context, client contract.ProjectClient, logger *logrus.Logger, story schema.UserStory, statusNames map[int]string) []schema.StatusChangeEvent {
	history, err := client.StoryHistory(ctx, story.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"story": story.ID,
			"ref":   story.Ref,
		}).WithError(err).Warn("History fetch failed, using current status only")
		history = nil
	}

	// The story entered the board in its first known state: the from side of
	// its earliest recorded change, or its current status when the history
	// carries no status changes at all.
	initial := ""
	if len(history) > 0 {
		initial = history[0].FromStatus
	}
	if initial == "" {
		initial = statusNames[story.StatusID]
	}

	if initial == "" || story.CreatedDate.IsZero() {
		return history
	}
	events := make([]schema.StatusChangeEvent, 0, len(history)+1)
	events = append(events, schema.StatusChangeEvent{
		ItemID:    story.ID,
		Timestamp: story.CreatedDate,
		ToStatus:  initial,
	})
	return append(events, history...)
}
