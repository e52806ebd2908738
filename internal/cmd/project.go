package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/ux"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "List, create and inspect projects",
	Long: `Projects group issues under a short key.

Examples:
  issuehub project list
  issuehub project create --name "Website" --key WEB
  issuehub project show 1
  issuehub project membership 1`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Args:  cobra.NoArgs,
	RunE:  runProjectCreate,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectMembershipCmd = &cobra.Command{
	Use:   "membership <project-id>",
	Short: "Show your role in a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectMembership,
}

var projectOpts struct {
	page        int
	limit       int
	name        string
	key         string
	description string
}

func init() {
	projectListCmd.Flags().IntVar(&projectOpts.page, "page", 1, "page number")
	projectListCmd.Flags().IntVar(&projectOpts.limit, "limit", 0, "projects per page (default defaults.page_size)")

	projectCreateCmd.Flags().StringVar(&projectOpts.name, "name", "", "project name")
	projectCreateCmd.Flags().StringVar(&projectOpts.key, "key", "", "short project key, e.g. WEB")
	projectCreateCmd.Flags().StringVar(&projectOpts.description, "description", "", "project description")
	_ = projectCreateCmd.MarkFlagRequired("name")
	_ = projectCreateCmd.MarkFlagRequired("key")

	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectShowCmd, projectMembershipCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	page := api.PageNumber(projectOpts.page, pageSize(projectOpts.limit))
	projects, err := app.Client.ListProjects(cmd.Context(), page)
	if err != nil {
		return app.Fail(err, "list projects")
	}

	t := &ux.Table{
		Headers: []string{"ID", "KEY", "NAME", "CREATED"},
		Empty:   "No projects. Create one with 'issuehub project create'.",
	}
	for _, p := range projects {
		t.AddRow(formatID(p.ID), p.Key, p.Name, formatTime(p.CreatedAt))
	}
	if api.HasMore(len(projects), page.Limit) {
		t.Footer = "More projects: --page " + strconv.Itoa(page.Next().Number())
	}
	return app.Render(t, projects)
}

func runProjectCreate(cmd *cobra.Command, _ []string) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	req := api.ProjectCreate{Name: projectOpts.name, Key: projectOpts.key}
	if projectOpts.description != "" {
		req.Description = api.Ptr(projectOpts.description)
	}

	p, err := app.Client.CreateProject(cmd.Context(), req)
	if err != nil {
		return app.Fail(err, "create project")
	}
	return app.Render(projectText(p), p)
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("project-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	p, err := app.Client.GetProject(cmd.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return ierrors.NewNotFoundError("project", id)
		}
		return app.Fail(err, "show project "+args[0])
	}
	return app.Render(projectText(p), p)
}

func runProjectMembership(cmd *cobra.Command, args []string) error {
	id, err := parseID("project-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	m, err := app.Client.MyMembership(cmd.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return app.Render(lines("You are not a member of project "+args[0]+"."), map[string]interface{}{"project_id": id, "role": nil})
		}
		return app.Fail(err, "show membership for project "+args[0])
	}
	return app.Render(lines("Role in project "+args[0]+": "+string(m.Role)), m)
}

func projectText(p *api.Project) textFunc {
	return fields(
		"ID", formatID(p.ID),
		"Key", p.Key,
		"Name", p.Name,
		"Description", optional(p.Description),
		"Created", formatTime(p.CreatedAt),
	)
}

// parseID parses a positive numeric identifier argument
func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, ierrors.NewInvalidInputError(name, s, "a positive number")
	}
	return id, nil
}

// pageSize returns limit, or the configured default when limit is unset
func pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	return app.Config.Defaults.PageSize
}
