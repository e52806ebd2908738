package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/ux"
	"github.com/felixgeelhaar/issuehub/internal/view"
)

var commentCmd = &cobra.Command{
	Use:     "comment",
	Aliases: []string{"comments"},
	Short:   "List and add issue comments",
	Long: `Read and write comments on an issue.

Examples:
  issuehub comment list 42
  issuehub comment add 42 "Reproduced on Firefox too"`,
}

var commentListCmd = &cobra.Command{
	Use:   "list <issue-id>",
	Short: "List the comments of an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

var commentAddCmd = &cobra.Command{
	Use:   "add <issue-id> <body>",
	Short: "Add a comment to an issue",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentAdd,
}

func init() {
	commentCmd.AddCommand(commentListCmd, commentAddCmd)
	rootCmd.AddCommand(commentCmd)
}

func runCommentList(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	comments, err := app.Client.ListComments(cmd.Context(), id, api.Page{})
	if err != nil {
		return app.Fail(err, "list comments of issue "+args[0])
	}

	t := &ux.Table{
		Headers: []string{"ID", "AUTHOR", "CREATED", "BODY"},
		Empty:   "No comments yet.",
	}
	for _, c := range comments {
		t.AddRow(formatID(c.ID), "user "+formatID(c.AuthorID), formatTime(c.CreatedAt), truncate(firstLine(c.Body), 60))
	}
	return app.Render(t, comments)
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	id, err := parseID("issue-id", args[0])
	if err != nil {
		return err
	}
	if _, err := app.RequireUser(); err != nil {
		return err
	}

	v := view.NewIssueView(api.Issue{ID: id})
	if err := v.AddComment(cmd.Context(), app.Client, strings.Join(args[1:], " ")); err != nil {
		return app.Fail(err, "comment on issue "+args[0])
	}

	c := v.Comments[len(v.Comments)-1]
	return app.Render(lines("Comment "+formatID(c.ID)+" added to issue "+args[0]+"."), c)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
