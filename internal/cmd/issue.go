package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/tui"
	"github.com/felixgeelhaar/issuehub/internal/ux"
	"github.com/felixgeelhaar/issuehub/internal/view"
)

var issueCmd = &cobra.Command{
	Use:     "issue",
	Aliases: []string{"issues"},
	Short:   "List, create and edit issues",
	Long: `Work with issues.

Only the reporter and project maintainers may edit an issue. The server
decides; the client shows the result it returns.

Examples:
  issuehub issue list --project 1 --status open --page 2
  issuehub issue create --project 1 --title "Login button misaligned" --priority high
  issuehub issue show 42
  issuehub issue status 42 in_progress
  issuehub issue describe 42 --description "Steps to reproduce: ..."
  issuehub issue assign 42 7
  issuehub issue assign 42 none`,
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, one page at a time",
	Args:  cobra.NoArgs,
	RunE:  runIssueList,
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	Args:  cobra.NoArgs,
	RunE:  runIssueCreate,
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show an issue with its comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueShow,
}

var issueStatusCmd = &cobra.Command{
	Use:       "status <issue-id> <status>",
	Short:     "Change the status of an issue",
	Long:      `Change the status of an issue. Valid statuses: open, in_progress, resolved, closed.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"open", "in_progress", "resolved", "closed"},
	RunE:      runIssueStatus,
}

var issueDescribeCmd = &cobra.Command{
	Use:   "describe <issue-id>",
	Short: "Replace the description of an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueDescribe,
}

var issueAssignCmd = &cobra.Command{
	Use:   "assign <issue-id> [user-id|none]",
	Short: "Assign or unassign an issue",
	Long: `Assign an issue to a user, or pass "none" to unassign it.

Without a user argument an interactive picker lists users page by page.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIssueAssign,
}

var issueOpts struct {
	page        int
	limit       int
	project     int64
	assignee    int64
	status      string
	priority    string
	mine        bool
	title       string
	description string
	clear       bool
}

func init() {
	lf := issueListCmd.Flags()
	lf.IntVar(&issueOpts.page, "page", 1, "page number")
	lf.IntVar(&issueOpts.limit, "limit", 0, "issues per page (default defaults.page_size)")
	lf.Int64Var(&issueOpts.project, "project", 0, "only issues of this project id")
	lf.Int64Var(&issueOpts.assignee, "assignee", 0, "only issues assigned to this user id")
	lf.StringVar(&issueOpts.status, "status", "", "only issues with this status")
	lf.StringVar(&issueOpts.priority, "priority", "", "only issues with this priority")
	lf.BoolVar(&issueOpts.mine, "mine", false, "only issues assigned to you")

	cf := issueCreateCmd.Flags()
	cf.Int64Var(&issueOpts.project, "project", 0, "project id")
	cf.StringVar(&issueOpts.title, "title", "", "issue title")
	cf.StringVar(&issueOpts.description, "description", "", "issue description")
	cf.StringVar(&issueOpts.priority, "priority", "", "low, medium, high or critical")
	cf.StringVar(&issueOpts.status, "status", "", "initial status")
	cf.Int64Var(&issueOpts.assignee, "assignee", 0, "assignee user id")
	_ = issueCreateCmd.MarkFlagRequired("project")
	_ = issueCreateCmd.MarkFlagRequired("title")

	df := issueDescribeCmd.Flags()
	df.StringVar(&issueOpts.description, "description", "", "new description")
	df.BoolVar(&issueOpts.clear, "clear", false, "remove the description")
	issueDescribeCmd.MarkFlagsMutuallyExclusive("description", "clear")
	issueDescribeCmd.MarkFlagsOneRequired("description", "clear")

	issueCmd.AddCommand(issueListCmd, issueCreateCmd, issueShowCmd, issueStatusCmd, issueDescribeCmd, issueAssignCmd)
	rootCmd.AddCommand(issueCmd)
}

func runIssueList(cmd *cobra.Command, _ []string) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}

	filter := api.IssueFilter{
		Page:       api.PageNumber(issueOpts.page, pageSize(issueOpts.limit)),
		ProjectID:  issueOpts.project,
		AssigneeID: issueOpts.assignee,
	}
	if issueOpts.mine {
		filter.AssigneeID = user.ID
	}
	if issueOpts.status != "" {
		if filter.Status, err = api.ParseIssueStatus(issueOpts.status); err != nil {
			return err
		}
	}
	if issueOpts.priority != "" {
		if filter.Priority, err = api.ParseIssuePriority(issueOpts.priority); err != nil {
			return err
		}
	}

	list, err := app.Client.ListIssues(cmd.Context(), filter)
	if err != nil {
		return app.Fail(err, "list issues")
	}

	t := &ux.Table{
		Headers: []string{"ID", "STATUS", "PRIORITY", "ASSIGNEE", "TITLE"},
		Footer:  pageFooter(list),
		Empty:   "No issues match.",
	}
	for _, is := range list.Items {
		t.AddRow(formatID(is.ID), string(is.Status), string(is.Priority), userRef(is.AssigneeID), truncate(is.Title, 60))
	}
	return app.Render(t, list)
}

func runIssueCreate(cmd *cobra.Command, _ []string) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	req := api.IssueCreate{
		Title:     strings.TrimSpace(issueOpts.title),
		ProjectID: issueOpts.project,
	}
	if req.Title == "" {
		return ierrors.NewInvalidInputError("title", `""`, "")
	}
	if issueOpts.description != "" {
		req.Description = api.Ptr(issueOpts.description)
	}
	if issueOpts.assignee != 0 {
		req.AssigneeID = api.Ptr(issueOpts.assignee)
	}
	var err error
	if issueOpts.priority != "" {
		if req.Priority, err = api.ParseIssuePriority(issueOpts.priority); err != nil {
			return err
		}
	}
	if issueOpts.status != "" {
		if req.Status, err = api.ParseIssueStatus(issueOpts.status); err != nil {
			return err
		}
	}

	is, err := app.Client.CreateIssue(cmd.Context(), req)
	if err != nil {
		return app.Fail(err, "create issue")
	}
	return app.Render(issueText(is), is)
}

func runIssueShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	user, err := app.RequireUser()
	if err != nil {
		return err
	}

	v, err := view.Load(cmd.Context(), app.Client, id)
	if err != nil {
		if api.IsNotFound(err) {
			return ierrors.NewNotFoundError("issue", id)
		}
		return app.Fail(err, "show issue "+args[0])
	}
	return app.Render(issueDetail{v: v, canEdit: v.CanEdit(user)}, v)
}

func runIssueStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	status, err := api.ParseIssueStatus(args[1])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	v := view.NewIssueView(api.Issue{ID: id})
	if err := v.SetStatus(cmd.Context(), app.Client, status); err != nil {
		return app.Fail(err, "update issue "+args[0])
	}
	return app.Render(issueText(&v.Issue), v.Issue)
}

func runIssueDescribe(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	description := issueOpts.description
	if issueOpts.clear {
		description = ""
	}

	v := view.NewIssueView(api.Issue{ID: id})
	if err := v.SetDescription(cmd.Context(), app.Client, description); err != nil {
		return app.Fail(err, "update issue "+args[0])
	}
	return app.Render(issueText(&v.Issue), v.Issue)
}

func runIssueAssign(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	var assignee api.Assignee
	if len(args) == 2 {
		assignee, err = parseAssignee(args[1])
	} else {
		assignee, err = pickAssignee(cmd)
	}
	if err != nil {
		return err
	}

	v := view.NewIssueView(api.Issue{ID: id})
	if err := v.SetAssignee(cmd.Context(), app.Client, assignee); err != nil {
		return app.Fail(err, "update issue "+args[0])
	}
	return app.Render(issueText(&v.Issue), v.Issue)
}

func parseAssignee(s string) (api.Assignee, error) {
	if strings.EqualFold(s, "none") {
		return api.Unassign, nil
	}
	uid, err := parseID("user-id", s)
	if err != nil {
		return api.Assignee{}, ierrors.NewInvalidInputError("user-id", s, "a user id or none")
	}
	return api.AssignTo(uid), nil
}

const (
	pickNone = "Unassigned"
	pickMore = "Load more users…"
)

// pickAssignee offers users page by page until one is chosen
func pickAssignee(cmd *cobra.Command) (api.Assignee, error) {
	if !tui.ShouldPrompt() {
		return api.Assignee{}, ierrors.NewInvalidInputError("user-id", "", "a user id or none").
			WithSuggestion("Pass the user id when not running in a terminal")
	}

	opts := view.NewAssigneeOptions()
	for {
		if err := opts.LoadMore(cmd.Context(), app.Client); err != nil {
			return api.Assignee{}, app.Fail(err, "list users")
		}

		choices := []string{pickNone}
		byLabel := map[string]int64{}
		for _, u := range opts.Users {
			label := fmt.Sprintf("%s <%s> #%d", u.DisplayName(), u.Email, u.ID)
			choices = append(choices, label)
			byLabel[label] = u.ID
		}
		if opts.HasMore() {
			choices = append(choices, pickMore)
		}

		choice, err := tui.PromptForSelect("Assign to", choices)
		if err != nil {
			return api.Assignee{}, err
		}
		switch choice {
		case pickNone:
			return api.Unassign, nil
		case pickMore:
			continue
		}
		return api.AssignTo(byLabel[choice]), nil
	}
}

func issueText(is *api.Issue) textFunc {
	return fields(
		"ID", formatID(is.ID),
		"Title", is.Title,
		"Project", formatID(is.ProjectID),
		"Status", string(is.Status),
		"Priority", string(is.Priority),
		"Reporter", "user "+formatID(is.ReporterID),
		"Assignee", userRef(is.AssigneeID),
		"Description", optional(is.Description),
	)
}

// issueDetail is the text layout of 'issue show'
type issueDetail struct {
	v       *view.IssueView
	canEdit bool
}

func (d issueDetail) RenderText(w io.Writer, noColor bool) error {
	is := d.v.Issue
	if err := issueText(&is).RenderText(w, noColor); err != nil {
		return err
	}
	if d.v.Role != "" {
		fmt.Fprintf(w, "Your role:    %s\n", d.v.Role)
	}
	fmt.Fprintf(w, "Created:      %s\n", formatTime(is.CreatedAt))

	fmt.Fprintf(w, "\nComments (%d)\n", len(d.v.Comments))
	for _, c := range d.v.Comments {
		fmt.Fprintf(w, "\n  user %d, %s\n", c.AuthorID, formatTime(c.CreatedAt))
		for _, line := range strings.Split(c.Body, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if !d.canEdit {
		_, err := fmt.Fprintln(w, "\nRead only: only the reporter or a project maintainer can edit this issue.")
		return err
	}
	return nil
}
