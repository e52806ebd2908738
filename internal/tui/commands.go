package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/view"
)

// Boundary is the name the dashboard's requests run under
const Boundary = "dashboard"

// projectPageSize bounds the project list; the dashboard shows one page
const projectPageSize = 100

// UnauthenticatedMsg tells the dashboard the server rejected the session
type UnauthenticatedMsg struct{}

type projectsLoadedMsg struct {
	Projects []api.Project
}

type issuesLoadedMsg struct {
	List *api.IssueList
}

type issueLoadedMsg struct {
	View *view.IssueView
}

type issueUpdatedMsg struct {
	Issue api.Issue
}

type errMsg struct {
	Err error
}

func (e errMsg) Error() string {
	return e.Err.Error()
}

func loadProjects(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		projects, err := b.ListProjects(ctx, api.Page{Limit: projectPageSize})
		if err != nil {
			return errMsg{err}
		}
		return projectsLoadedMsg{Projects: projects}
	}
}

func loadIssues(ctx context.Context, b Backend, filter api.IssueFilter) tea.Cmd {
	return func() tea.Msg {
		list, err := b.ListIssues(ctx, filter)
		if err != nil {
			return errMsg{err}
		}
		return issuesLoadedMsg{List: list}
	}
}

func loadIssue(ctx context.Context, b Backend, id int64) tea.Cmd {
	return func() tea.Msg {
		v, err := view.Load(ctx, b, id)
		if err != nil {
			return errMsg{err}
		}
		return issueLoadedMsg{View: v}
	}
}

// setStatus works on a copy of the view; the model adopts the result
// when the message arrives.
func setStatus(ctx context.Context, b Backend, v view.IssueView, status api.IssueStatus) tea.Cmd {
	return func() tea.Msg {
		if err := v.SetStatus(ctx, b, status); err != nil {
			return errMsg{err}
		}
		return issueUpdatedMsg{Issue: v.Issue}
	}
}
