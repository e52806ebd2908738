package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListProjects returns one page of projects
func (c *Client) ListProjects(ctx context.Context, page Page) ([]Project, error) {
	var projects []Project
	if err := c.Do(ctx, http.MethodGet, "/projects/", nil, &projects, Query(page.Values())); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project; the caller becomes its maintainer
func (c *Client) CreateProject(ctx context.Context, req ProjectCreate) (*Project, error) {
	var project Project
	if err := c.Do(ctx, http.MethodPost, "/projects/", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject returns a project by ID
func (c *Client) GetProject(ctx context.Context, id int64) (*Project, error) {
	var project Project
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// MyMembership returns the caller's role in a project
func (c *Client) MyMembership(ctx context.Context, projectID int64) (*Membership, error) {
	var m Membership
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/my-membership", projectID), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
