package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/config"
	"github.com/felixgeelhaar/issuehub/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit IssueHub configuration",
	Long: `Manage IssueHub configuration stored at ~/.issuehub/config.yaml

Values are resolved from, lowest to highest precedence: built-in
defaults, the config file, ISSUEHUB_* environment variables (also read
from .env files) and command-line flags.

Examples:
  # View the effective configuration
  issuehub config view

  # Get a specific value
  issuehub config get api.url

  # Set a specific value
  issuehub config set api.url https://issues.example.com/api/v1

  # Show configuration file path
  issuehub config path
`,
	Annotations: map[string]string{annotationStandalone: "true"},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Get a specific configuration value",
	Long:      `Retrieve the effective value of a configuration key using dot notation (e.g., api.url).`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Long:  `Set the value of a configuration key in the config file using dot notation (e.g., defaults.page_size 20).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigView(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := ux.NewFormatter(outputFormat(cfg), &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	if outputFormat(cfg) != "text" {
		return f.Format(cfg)
	}

	t := &ux.Table{Headers: []string{"KEY", "VALUE"}}
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		t.AddRow(key, value)
	}
	return f.Format(t)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

// runConfigSet edits the file only; environment and flag overrides are
// not written back.
func runConfigSet(cmd *cobra.Command, args []string) error {
	home, err := config.ResolveHome(flags.home)
	if err != nil {
		return err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.Save(home); err != nil {
		return ux.EnhanceError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	home, err := config.ResolveHome(flags.home)
	if err != nil {
		return err
	}

	path := config.Path(home)
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "(file does not exist yet; built-in defaults are in use)")
	}
	return nil
}

func outputFormat(cfg *config.Config) string {
	if cfg.Defaults.Format == "" {
		return "text"
	}
	return cfg.Defaults.Format
}
