package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/taigaflow/taigaflow/schema"
)

// MockProjectClient is a mock implementation of ProjectClient for testing.
type MockProjectClient struct {
	mock.Mock
}

var _ ProjectClient = &MockProjectClient{} // Compile-time check

// Get implements the ProjectClient interface.
func (m *MockProjectClient) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	ret := m.Called(ctx, path, query)
	body, _ := ret.Get(0).([]byte)
	return body, ret.Error(1)
}

// ProjectBySlug implements the ProjectClient interface.
func (m *MockProjectClient) ProjectBySlug(ctx context.Context, slug string) (schema.Project, error) {
	ret := m.Called(ctx, slug)
	project, _ := ret.Get(0).(schema.Project)
	return project, ret.Error(1)
}

// Statuses implements the ProjectClient interface.
func (m *MockProjectClient) Statuses(ctx context.Context, projectID int) ([]schema.ProjectStatus, error) {
	ret := m.Called(ctx, projectID)
	statuses, _ := ret.Get(0).([]schema.ProjectStatus)
	return statuses, ret.Error(1)
}

// UserStories implements the ProjectClient interface.
func (m *MockProjectClient) UserStories(ctx context.Context, projectID int) ([]schema.UserStory, error) {
	ret := m.Called(ctx, projectID)
	stories, _ := ret.Get(0).([]schema.UserStory)
	return stories, ret.Error(1)
}

// StoryHistory implements the ProjectClient interface.
func (m *MockProjectClient) StoryHistory(ctx context.Context, storyID int) ([]schema.StatusChangeEvent, error) {
	ret := m.Called(ctx, storyID)
	events, _ := ret.Get(0).([]schema.StatusChangeEvent)
	return events, ret.Error(1)
}
