package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderProjects renders the project list
func (m Model) renderProjects() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("IssueHub"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(m.signedInAs()))
	b.WriteString("\n")

	switch {
	case m.loading && len(m.projects) == 0:
		b.WriteString(m.spinner.View() + " Loading projects...")
	case len(m.projects) == 0:
		b.WriteString(m.styles.Muted.Render("No projects yet. Create one with 'issuehub project create'."))
	default:
		for i, p := range m.projects {
			line := fmt.Sprintf("%-8s %s", p.Key, p.Name)
			b.WriteString(m.row(i == m.cursor, line))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderIssues renders one page of issues
func (m Model) renderIssues() string {
	var b strings.Builder

	title := "Issues"
	if m.project != nil {
		title = fmt.Sprintf("%s · %s", m.project.Key, m.project.Name)
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	if m.issues == nil || len(m.issues.Items) == 0 {
		b.WriteString(m.styles.Muted.Render("No issues."))
		b.WriteString("\n")
	} else {
		for i, is := range m.issues.Items {
			line := fmt.Sprintf("#%-5d %-12s %-9s %s", is.ID, is.Status, is.Priority, is.Title)
			b.WriteString(m.row(i == m.issueCursor, line))
			b.WriteString("\n")
		}
		from, to := m.issues.Range()
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Showing %d to %d of %d", from, to, m.issues.Total)))
		if m.pages.TotalPages > 1 {
			b.WriteString("  ")
			b.WriteString(m.pages.View())
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderIssue renders the detail screen
func (m Model) renderIssue() string {
	if m.detail == nil {
		return m.renderFooter()
	}

	var b strings.Builder
	is := m.detail.Issue

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("#%d %s", is.ID, is.Title)))
	b.WriteString("\n")

	fields := []string{
		m.field("Status", m.styles.Status.Render(string(is.Status))),
		m.field("Priority", string(is.Priority)),
		m.field("Reporter", fmt.Sprintf("user %d", is.ReporterID)),
		m.field("Assignee", assigneeLabel(is.AssigneeID)),
	}
	if m.detail.Role != "" {
		fields = append(fields, m.field("Your role", string(m.detail.Role)))
	}
	b.WriteString(strings.Join(fields, "\n"))
	b.WriteString("\n\n")

	description := "No description."
	if is.Description != nil && *is.Description != "" {
		description = *is.Description
	}
	width := m.width - 6
	if width < 20 {
		width = 20
	}
	b.WriteString(m.styles.Border.Width(width).Render(description))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Comments (%d)", len(m.detail.Comments))))
	b.WriteString("\n")
	for _, c := range m.detail.Comments {
		header := m.styles.Muted.Render(fmt.Sprintf("user %d · %s", c.AuthorID, c.CreatedAt.Format("2006-01-02 15:04")))
		b.WriteString(header + "\n" + c.Body + "\n\n")
	}

	if !m.detail.CanEdit(m.user) {
		b.WriteString(m.styles.Warning.Render("Read only: only the reporter or a maintainer can edit this issue."))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderSignedOut is shown after the server rejected the token
func (m Model) renderSignedOut() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Error.Render("Signed out"),
		"",
		"Session expired or invalid.",
		"Run 'issuehub auth login' and start the dashboard again.",
		"",
		m.styles.Muted.Render("Press q to quit."),
	)
	return m.styles.Border.BorderForeground(lipgloss.Color("196")).Render(content)
}

// renderHelp renders the full key reference
func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Keyboard shortcuts"))
	b.WriteString("\n")

	for _, group := range m.keys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.styles.Key.Render(fmt.Sprintf("%-8s", h.Key)),
				m.styles.KeyDesc.Render(h.Desc)))
		}
	}

	b.WriteString(m.styles.Help.Render("Press ? to go back"))
	return b.String()
}

// renderFooter renders the status line and the short help
func (m Model) renderFooter() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " Loading...\n")
	}
	if m.lastError != nil {
		b.WriteString(m.styles.Error.Render("Error: ") + firstLine(m.lastError.Error()) + "\n")
	}
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) row(selected bool, line string) string {
	if selected {
		return m.styles.Highlighted.Render("> " + line)
	}
	return "  " + line
}

func (m Model) field(label, value string) string {
	return m.styles.Muted.Render(fmt.Sprintf("%-10s", label+":")) + " " + value
}

func (m Model) signedInAs() string {
	if m.user == nil {
		return "Projects"
	}
	return "Projects · signed in as " + m.user.DisplayName()
}

func assigneeLabel(id *int64) string {
	if id == nil {
		return "unassigned"
	}
	return fmt.Sprintf("user %d", *id)
}

// firstLine drops suggestion blocks from coded errors
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
