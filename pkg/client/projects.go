package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProjectsClient accesses the project discovery endpoints.
type ProjectsClient struct {
	client *Client
}

// Scale is a per-variable display bound.  A nil side means "unset".
type Scale struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Project is the effective view of one project as served by the API.
type Project struct {
	Name           string            `json:"name"`
	Directory      string            `json:"directory"`
	Scenarios      []string          `json:"scenarios"`
	Units          map[string]string `json:"units"`
	Titles         map[string]string `json:"titles,omitempty"`
	Scales         map[string]Scale  `json:"scales,omitempty"`
	CapacityColumn string            `json:"capacity_column,omitempty"`
}

// projectListResponse mirrors the server's list payload.
type projectListResponse struct {
	Projects []string `json:"projects"`
	Count    int      `json:"count"`
}

// List returns the names of all loaded projects, sorted.
func (pc *ProjectsClient) List(ctx context.Context) ([]string, error) {
	var resp projectListResponse
	if err := pc.client.get(ctx, "/api/v1/projects", &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Get returns one project's configuration view.  Project names match
// case-insensitively.
func (pc *ProjectsClient) Get(ctx context.Context, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("review: project name is required")
	}
	var project Project
	path := "/api/v1/projects/" + url.PathEscape(name)
	if err := pc.client.get(ctx, path, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
