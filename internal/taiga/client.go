// Package taiga implements the REST client for the Taiga project API.
package taiga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// Client talks to a Taiga instance over its v1 REST API.
type Client struct {
	baseURL  string
	username string
	password string
	pageSize int
	maxPages int
	http     *http.Client
	logger   *logrus.Logger

	mu    sync.Mutex // guards token
	token string
}

var _ contract.ProjectClient = &Client{} // Compile-time check

// NewClient creates a Taiga client from a validated configuration.
func NewClient(cfg *contract.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		logger:   logger,
		token:    cfg.AuthToken,
	}
}

// ensureAuth exchanges the configured credentials for a bearer token.
// It is a no-op when a token is already present or when the client
// was configured without a username.
func (c *Client) ensureAuth(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" || c.username == "" {
		return nil
	}

	payload, err := json.Marshal(authRequest{Type: "normal", Username: c.username, Password: c.password})
	if err != nil {
		return fmt.Errorf("error encoding login payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return contract.NetworkError{Op: "POST /api/v1/auth", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contract.NetworkError{Op: "POST /api/v1/auth", Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return contract.AuthError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		return contract.NetworkError{
			Op:  "POST /api/v1/auth",
			Err: fmt.Errorf("login failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("error parsing login response: %w", err)
	}
	if auth.AuthToken == "" {
		return contract.AuthError{Status: resp.StatusCode, Detail: "login response carried no token"}
	}
	c.token = auth.AuthToken
	c.logger.WithField("username", c.username).Info("Authenticated against Taiga")
	return nil
}

// bearerToken returns the current token under the same lock that
// ensureAuth writes it with.
func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Get implements the ProjectClient interface.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if err := c.ensureAuth(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if len(query) > 0 {
		values := req.URL.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		req.URL.RawQuery = values.Encode()
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, contract.NetworkError{Op: "GET " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contract.NetworkError{Op: "GET " + path, Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("Taiga request complete")

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, contract.AuthError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, contract.NetworkError{
			Op:  "GET " + path,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return body, nil
}

// ProjectBySlug implements the ProjectClient interface.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (schema.Project, error) {
	body, err := c.Get(ctx, "/api/v1/projects/by_slug", map[string]string{"slug": slug})
	if err != nil {
		return schema.Project{}, err
	}
	var project schema.Project
	if err := json.Unmarshal(body, &project); err != nil {
		return schema.Project{}, fmt.Errorf("error parsing project response: %w", err)
	}
	return project, nil
}

// Statuses implements the ProjectClient interface.
func (c *Client) Statuses(ctx context.Context, projectID int) ([]schema.ProjectStatus, error) {
	body, err := c.Get(ctx, "/api/v1/userstory-statuses", map[string]string{"project": strconv.Itoa(projectID)})
	if err != nil {
		return nil, err
	}
	var statuses []schema.ProjectStatus
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("error parsing status response: %w", err)
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Order < statuses[j].Order
	})
	return statuses, nil
}

// UserStories implements the ProjectClient interface.
func (c *Client) UserStories(ctx context.Context, projectID int) ([]schema.UserStory, error) {
	var stories []schema.UserStory
	for page := 1; ; page++ {
		if page > c.maxPages {
			c.logger.WithFields(logrus.Fields{
				"project": projectID,
				"pages":   c.maxPages,
			}).Warn("Reached page limit, story listing may be incomplete")
			break
		}
		query := map[string]string{
			"project":   strconv.Itoa(projectID),
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(c.pageSize),
		}
		body, err := c.Get(ctx, "/api/v1/userstories", query)
		if err != nil {
			return nil, fmt.Errorf("error fetching user stories page %d: %w", page, err)
		}
		var pageStories []schema.UserStory
		if err := json.Unmarshal(body, &pageStories); err != nil {
			return nil, fmt.Errorf("error parsing user stories page %d: %w", page, err)
		}
		stories = append(stories, pageStories...)
		if len(pageStories) < c.pageSize {
			break
		}
	}
	return stories, nil
}

// StoryHistory implements the ProjectClient interface.
func (c *Client) StoryHistory(ctx context.Context, storyID int) ([]schema.StatusChangeEvent, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/api/v1/history/userstory/%d", storyID), nil)
	if err != nil {
		return nil, err
	}
	var entries []historyEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("error parsing history for story %d: %w", storyID, err)
	}

	events := make([]schema.StatusChangeEvent, 0, len(entries))
	for _, entry := range entries {
		pair := entry.ValuesDiff.Status
		if len(pair) != 2 {
			continue // entry did not change the status
		}
		events = append(events, schema.StatusChangeEvent{
			ItemID:     storyID,
			Timestamp:  entry.CreatedAt,
			FromStatus: pair[0],
			ToStatus:   pair[1],
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
