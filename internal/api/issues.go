package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// IssueFilter selects a page of issues. Zero values are not sent.
type IssueFilter struct {
	Page
	ProjectID  int64
	AssigneeID int64
	Status     IssueStatus
	Priority   IssuePriority
}

// Values encodes the filter as query parameters
func (f IssueFilter) Values() url.Values {
	v := f.Page.Values()
	if f.ProjectID != 0 {
		v.Set("project_id", strconv.FormatInt(f.ProjectID, 10))
	}
	if f.AssigneeID != 0 {
		v.Set("assignee_id", strconv.FormatInt(f.AssigneeID, 10))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		v.Set("priority", string(f.Priority))
	}
	return v
}

// ListIssues returns one page of issues matching the filter
func (c *Client) ListIssues(ctx context.Context, filter IssueFilter) (*IssueList, error) {
	var list IssueList
	if err := c.Do(ctx, http.MethodGet, "/issues/", nil, &list, Query(filter.Values())); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateIssue creates an issue reported by the caller
func (c *Client) CreateIssue(ctx context.Context, req IssueCreate) (*Issue, error) {
	var issue Issue
	if err := c.Do(ctx, http.MethodPost, "/issues/", req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// GetIssue returns an issue by ID
func (c *Client) GetIssue(ctx context.Context, id int64) (*Issue, error) {
	var issue Issue
	if err := c.Do(ctx, http.MethodGet, issuePath(id), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue sends a partial update and returns the stored issue
func (c *Client) UpdateIssue(ctx context.Context, id int64, update IssueUpdate) (*Issue, error) {
	var issue Issue
	if err := c.Do(ctx, http.MethodPatch, issuePath(id), update, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func issuePath(id int64) string {
	return fmt.Sprintf("/issues/%d", id)
}
