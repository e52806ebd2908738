// Package view keeps the state behind the issue detail screen. Local state
// only changes after the server confirmed a change.
package view

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/errors"
)

// IssueUpdater sends partial issue updates
type IssueUpdater interface {
	UpdateIssue(ctx context.Context, id int64, update api.IssueUpdate) (*api.Issue, error)
}

// CommentPoster adds comments to an issue
type CommentPoster interface {
	AddComment(ctx context.Context, issueID int64, body string) (*api.Comment, error)
}

// IssueSource loads everything the detail screen shows
type IssueSource interface {
	GetIssue(ctx context.Context, id int64) (*api.Issue, error)
	ListComments(ctx context.Context, issueID int64, page api.Page) ([]api.Comment, error)
	MyMembership(ctx context.Context, projectID int64) (*api.Membership, error)
}

// IssueView is the last confirmed state of one issue
type IssueView struct {
	Issue    api.Issue     `json:"issue" yaml:"issue"`
	Comments []api.Comment `json:"comments" yaml:"comments"`

	// Role is the caller's role in the issue's project, empty when unknown
	Role api.Role `json:"role,omitempty" yaml:"role,omitempty"`
}

// NewIssueView wraps an issue fetched from the server
func NewIssueView(issue api.Issue) *IssueView {
	return &IssueView{Issue: issue}
}

// Load fetches an issue, its comments and the caller's project role. A
// failed membership lookup leaves Role empty; the server still enforces
// permissions.
func Load(ctx context.Context, src IssueSource, id int64) (*IssueView, error) {
	issue, err := src.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := src.ListComments(ctx, id, api.Page{})
	if err != nil {
		return nil, err
	}

	v := &IssueView{Issue: *issue, Comments: comments}
	if m, err := src.MyMembership(ctx, issue.ProjectID); err == nil {
		v.Role = m.Role
	} else if api.IsUnauthorized(err) {
		return nil, err
	}
	return v, nil
}

// ApplyUpdate adopts the server's record of the issue as is.
func (v *IssueView) ApplyUpdate(resp *api.Issue) {
	if resp == nil {
		return
	}
	v.Issue = *resp
}

// Update sends update and applies the response. On error nothing changes.
func (v *IssueView) Update(ctx context.Context, u IssueUpdater, update api.IssueUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	resp, err := u.UpdateIssue(ctx, v.Issue.ID, update)
	if err != nil {
		return err
	}
	v.ApplyUpdate(resp)
	return nil
}

// SetStatus moves the issue to status
func (v *IssueView) SetStatus(ctx context.Context, u IssueUpdater, status api.IssueStatus) error {
	if !status.Valid() {
		return errors.NewInvalidInputError("status", status, "open, in_progress, resolved, closed")
	}
	return v.Update(ctx, u, api.IssueUpdate{Status: &status})
}

// SetDescription replaces the description; an empty string clears it
func (v *IssueView) SetDescription(ctx context.Context, u IssueUpdater, description string) error {
	return v.Update(ctx, u, api.IssueUpdate{Description: &description})
}

// SetAssignee assigns or unassigns the issue
func (v *IssueView) SetAssignee(ctx context.Context, u IssueUpdater, assignee api.Assignee) error {
	return v.Update(ctx, u, api.IssueUpdate{AssigneeID: assignee})
}

// AddComment posts body and appends the stored comment
func (v *IssueView) AddComment(ctx context.Context, p CommentPoster, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return errors.NewInvalidInputError("comment", `""`, "")
	}
	c, err := p.AddComment(ctx, v.Issue.ID, body)
	if err != nil {
		return err
	}
	v.Comments = append(v.Comments, *c)
	return nil
}

// CanEdit reports whether the edit controls should be offered to user:
// maintainers of the project and the reporter may edit. It is advisory.
func CanEdit(user *api.User, issue api.Issue, role api.Role) bool {
	if user == nil {
		return false
	}
	return role == api.RoleMaintainer || user.ID == issue.ReporterID
}

// CanEdit applies the package-level CanEdit to the view
func (v *IssueView) CanEdit(user *api.User) bool {
	return CanEdit(user, v.Issue, v.Role)
}
