package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(issuehub completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ issuehub completion bash > /etc/bash_completion.d/issuehub
  # macOS:
  $ issuehub completion bash > $(brew --prefix)/etc/bash_completion.d/issuehub

Zsh:
  $ issuehub completion zsh > "${fpath[1]}/_issuehub"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ issuehub completion fish | source

PowerShell:
  PS> issuehub completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Annotations:           map[string]string{annotationStandalone: "true"},
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	root := cmd.Root()
	switch args[0] {
	case "bash":
		return root.GenBashCompletion(out)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}
