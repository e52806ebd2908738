package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/view"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewProjects lists the projects
	ViewProjects ViewType = iota
	// ViewIssues is the paginated issue list of one project
	ViewIssues
	// ViewIssue is the issue detail screen
	ViewIssue
	// ViewSignedOut is shown once the server rejected the session
	ViewSignedOut
	// ViewHelp is the help screen
	ViewHelp
)

// Backend is the part of the API client the dashboard talks to
type Backend interface {
	ListProjects(ctx context.Context, page api.Page) ([]api.Project, error)
	ListIssues(ctx context.Context, filter api.IssueFilter) (*api.IssueList, error)
	view.IssueSource
	view.IssueUpdater
}

// Model represents the dashboard state
type Model struct {
	ctx     context.Context
	backend Backend
	user    *api.User

	// Data
	projects []api.Project
	project  *api.Project
	issues   *api.IssueList
	detail   *view.IssueView
	pageSize int

	// UI state
	currentView ViewType
	previous    ViewType
	cursor      int
	issueCursor int
	width       int
	height      int
	ready       bool
	quitting    bool
	loading     bool
	lastError   error

	pages   paginator.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// Styles
	styles Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

// Option configures a Model
type Option func(*Model)

// WithUser sets the signed-in user used for the edit hint
func WithUser(u *api.User) Option {
	return func(m *Model) {
		m.user = u
	}
}

// WithPageSize sets the issue page size
func WithPageSize(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// NewModel creates a dashboard backed by b. Requests run under ctx.
func NewModel(ctx context.Context, b Backend, opts ...Option) Model {
	styles := DefaultStyles()

	pages := paginator.New()
	pages.Type = paginator.Dots
	pages.ActiveDot = styles.Key.Render("•")
	pages.InactiveDot = styles.Muted.Render("•")

	m := Model{
		ctx:         ctx,
		backend:     b,
		pageSize:    api.DefaultPageSize,
		currentView: ViewProjects,
		loading:     true,
		pages:       pages,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Status)),
		help:        help.New(),
		keys:        defaultKeyMap(),
		styles:      styles,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.pages.PerPage = m.pageSize
	return m
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).  // Purple
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
	}
}

// Init starts the spinner and loads the project list
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadProjects(m.ctx, m.backend))
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case projectsLoadedMsg:
		m.loading = false
		m.lastError = nil
		m.projects = msg.Projects
		if m.cursor >= len(m.projects) {
			m.cursor = 0
		}
		return m, nil

	case issuesLoadedMsg:
		m.loading = false
		m.lastError = nil
		m.issues = msg.List
		m.issueCursor = 0
		m.pages.PerPage = m.pageSize
		m.pages.TotalPages = msg.List.Pages()
		m.pages.Page = msg.List.Page().Number() - 1
		m.currentView = ViewIssues
		return m, nil

	case issueLoadedMsg:
		m.loading = false
		m.lastError = nil
		m.detail = msg.View
		m.currentView = ViewIssue
		return m, nil

	case issueUpdatedMsg:
		m.loading = false
		m.lastError = nil
		if m.detail != nil && m.detail.Issue.ID == msg.Issue.ID {
			m.detail.ApplyUpdate(&msg.Issue)
		}
		return m, nil

	case errMsg:
		m.loading = false
		if api.IsUnauthorized(msg.Err) {
			return m.signOut(), nil
		}
		m.lastError = msg.Err
		return m, nil

	case UnauthenticatedMsg:
		return m.signOut(), nil
	}

	return m, nil
}

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.quitting {
		return ""
	}

	switch m.currentView {
	case ViewProjects:
		return m.renderProjects()
	case ViewIssues:
		return m.renderIssues()
	case ViewIssue:
		return m.renderIssue()
	case ViewSignedOut:
		return m.renderSignedOut()
	case ViewHelp:
		return m.renderHelp()
	default:
		return "Unknown view"
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previous
		} else if m.currentView != ViewSignedOut {
			m.previous = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil
	}

	// The signed-out screen only accepts quit
	if m.currentView == ViewSignedOut || m.currentView == ViewHelp || m.loading {
		return m, nil
	}

	switch m.currentView {
	case ViewProjects:
		return m.handleProjectKeys(msg)
	case ViewIssues:
		return m.handleIssueListKeys(msg)
	case ViewIssue:
		return m.handleIssueKeys(msg)
	}
	return m, nil
}

func (m Model) handleProjectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m.startLoading(loadProjects(m.ctx, m.backend))
	case key.Matches(msg, m.keys.Open):
		if len(m.projects) == 0 {
			return m, nil
		}
		p := m.projects[m.cursor]
		m.project = &p
		return m.startLoading(loadIssues(m.ctx, m.backend, m.filter(1)))
	}
	return m, nil
}

func (m Model) handleIssueListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.currentView = ViewProjects
		m.issues = nil
	case key.Matches(msg, m.keys.Up):
		if m.issueCursor > 0 {
			m.issueCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.issues != nil && m.issueCursor < len(m.issues.Items)-1 {
			m.issueCursor++
		}
	case key.Matches(msg, m.keys.NextPage):
		if m.pages.Page+1 < m.pages.TotalPages {
			return m.startLoading(loadIssues(m.ctx, m.backend, m.filter(m.pages.Page+2)))
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.pages.Page > 0 {
			return m.startLoading(loadIssues(m.ctx, m.backend, m.filter(m.pages.Page)))
		}
	case key.Matches(msg, m.keys.Refresh):
		return m.startLoading(loadIssues(m.ctx, m.backend, m.filter(m.pages.Page+1)))
	case key.Matches(msg, m.keys.Open):
		if m.issues == nil || len(m.issues.Items) == 0 {
			return m, nil
		}
		return m.startLoading(loadIssue(m.ctx, m.backend, m.issues.Items[m.issueCursor].ID))
	}
	return m, nil
}

func (m Model) handleIssueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.currentView = ViewIssues
		m.detail = nil
	case key.Matches(msg, m.keys.Refresh):
		if m.detail != nil {
			return m.startLoading(loadIssue(m.ctx, m.backend, m.detail.Issue.ID))
		}
	case key.Matches(msg, m.keys.Status):
		if m.detail != nil {
			next := NextStatus(m.detail.Issue.Status)
			return m.startLoading(setStatus(m.ctx, m.backend, *m.detail, next))
		}
	}
	return m, nil
}

func (m Model) startLoading(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.loading = true
	m.lastError = nil
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) signOut() Model {
	m.currentView = ViewSignedOut
	m.loading = false
	m.lastError = nil
	m.user = nil
	m.detail = nil
	return m
}

// filter returns the issue filter for 1-based page n of the open project
func (m Model) filter(n int) api.IssueFilter {
	f := api.IssueFilter{Page: api.PageNumber(n, m.pageSize)}
	if m.project != nil {
		f.ProjectID = m.project.ID
	}
	return f
}

// CurrentView returns the active screen
func (m Model) CurrentView() ViewType {
	return m.currentView
}

// Err returns the last error shown in the status line
func (m Model) Err() error {
	return m.lastError
}

// NextStatus cycles open, in_progress, resolved, closed and back to open
func NextStatus(s api.IssueStatus) api.IssueStatus {
	statuses := api.IssueStatuses
	for i, st := range statuses {
		if st == s {
			return statuses[(i+1)%len(statuses)]
		}
	}
	return api.StatusOpen
}
