package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse projects and issues in an interactive terminal UI",
	Long: `Open the interactive dashboard.

Pick a project, page through its issues, open one to read the comments
and press s to move it to the next status. If the server rejects your
session, the dashboard switches to a signed-out screen.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	user, err := app.RequireUser()
	if err != nil {
		return err
	}

	ctx := api.WithBoundary(cmd.Context(), tui.Boundary)
	model := tui.NewModel(ctx, app.Client,
		tui.WithUser(user),
		tui.WithPageSize(app.Config.Defaults.PageSize),
	)

	// The dashboard owns the screen; the stderr notice would corrupt it
	app.Navigator.Detach()

	adapter := tui.NewAdapter(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	adapter.Attach(app.Bus)
	return adapter.Run()
}
