package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/ux"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "List users",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, e.g. to find an assignee id",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userOpts struct {
	page  int
	limit int
}

func init() {
	userListCmd.Flags().IntVar(&userOpts.page, "page", 1, "page number")
	userListCmd.Flags().IntVar(&userOpts.limit, "limit", 0, "users per page (default defaults.page_size)")

	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserList(cmd *cobra.Command, _ []string) error {
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	page := api.PageNumber(userOpts.page, pageSize(userOpts.limit))
	users, err := app.Client.ListUsers(cmd.Context(), page)
	if err != nil {
		return app.Fail(err, "list users")
	}

	t := &ux.Table{
		Headers: []string{"ID", "NAME", "EMAIL"},
		Empty:   "No users on this page.",
	}
	for _, u := range users {
		t.AddRow(formatID(u.ID), u.DisplayName(), u.Email)
	}
	if api.HasMore(len(users), page.Limit) {
		t.Footer = "More users: --page " + strconv.Itoa(page.Next().Number())
	}
	return app.Render(t, users)
}
