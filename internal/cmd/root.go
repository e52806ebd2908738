package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
)

// Command annotations read by setup
const (
	// annotationStandalone marks commands that run without an App
	annotationStandalone = "issuehub/standalone"
	// annotationNoRestore marks commands that must not resolve the stored token
	annotationNoRestore = "issuehub/no-restore"
)

var rootCmd = &cobra.Command{
	Use:   "issuehub",
	Short: "Command-line client for the IssueHub issue tracker",
	Long: `issuehub talks to an IssueHub API server. It signs you in, lists and
creates projects and issues, changes issue status, description and
assignee, and manages comments.

The session token is stored in ~/.issuehub/credentials.json. When the
server rejects it, the token is removed and you are asked to sign in
again.

Examples:
  issuehub auth login --email ada@example.com
  issuehub issue list --project 1 --status open
  issuehub issue status 42 resolved
  issuehub dashboard`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// globalFlags holds the persistent flag values
type globalFlags struct {
	apiURL         string
	home           string
	format         string
	logLevel       string
	noColor        bool
	strictContract bool
	metrics        bool
}

var flags globalFlags

// app is the composition root of the running command
var app *App

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command under ctx
func ExecuteContext(ctx context.Context) error {
	defer finish()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "IssueHub API base URL (env ISSUEHUB_API_URL)")
	pf.StringVar(&flags.home, "home", "", "directory for config and credentials (env ISSUEHUB_HOME, default ~/.issuehub)")
	pf.StringVarP(&flags.format, "format", "o", "", "output format: text, json or yaml (env ISSUEHUB_FORMAT)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error (env ISSUEHUB_LOG_LEVEL)")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&flags.strictContract, "strict-contract", false, "validate requests against the bundled OpenAPI contract")
	pf.BoolVar(&flags.metrics, "metrics", false, "print client metrics to stderr on exit")
}

// setup builds the App for the command about to run
func setup(cmd *cobra.Command, _ []string) error {
	// a subcommand keeps the context of its first run, so every run starts
	// from the one handed to ExecuteContext
	ctx := api.WithBoundary(cmd.Root().Context(), boundaryOf(cmd))
	cmd.SetContext(ctx)

	if hasAnnotation(cmd, annotationStandalone) {
		return nil
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	app = a

	if !hasAnnotation(cmd, annotationNoRestore) {
		app.Session.Restore(ctx)
	}
	return nil
}

// finish releases the App and dumps metrics when asked to
func finish() {
	if app == nil {
		return
	}
	if flags.metrics {
		app.DumpMetrics()
	}
	app.Close()
	app = nil
}

// boundaryOf names the command for the 401 listener. "auth login" and
// "auth signup" map to the login and signup boundaries.
func boundaryOf(cmd *cobra.Command) string {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	path = strings.TrimSpace(path)
	switch path {
	case "auth login":
		return api.BoundaryLogin
	case "auth signup":
		return api.BoundarySignup
	}
	return path
}

func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[key] != "" {
			return true
		}
	}
	return false
}
