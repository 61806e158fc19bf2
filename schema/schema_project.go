package schema

import "time"

// Project identifies a Taiga project resolved from its slug.
type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UserStory is the slice of a Taiga user story the flow pipeline needs:
// identity, current status and creation time.
type UserStory struct {
	ID          int       `json:"id"`
	Ref         int       `json:"ref"`
	Subject     string    `json:"subject"`
	StatusID    int       `json:"status"`
	CreatedDate time.Time `json:"created_date"`
}

// ProjectStatus is one user-story status in a project's workflow. Order is
// the service-side position of the status and drives CFD column order.
type ProjectStatus struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Order    int    `json:"order"`
	IsClosed bool   `json:"is_closed"`
	Color    string `json:"color"`
}

// StateNames extracts the status names in workflow order. The input is
// expected to be sorted by Order already (the client guarantees it).
func StateNames(statuses []ProjectStatus) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	return names
}

// ProjectData bundles everything one generation run collects from Taiga:
// the project record, its workflow states in board order, and the assembled
// status-change event log.
type ProjectData struct {
	Project    Project             `json:"project"`
	Statuses   []ProjectStatus     `json:"statuses"`
	Events     []StatusChangeEvent `json:"events"`
	StoryCount int                 `json:"story_count"`
}

// GenerateOutput holds the structured output of a single generation run.
type GenerateOutput struct {
	Result *CFDResult
	Data   *ProjectData
}
