package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for the BlackRoad CLI.

To load completions:

Bash:
  $ source <(blackroad completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ blackroad completion bash > /etc/bash_completion.d/blackroad
  # macOS:
  $ blackroad completion bash > $(brew --prefix)/etc/bash_completion.d/blackroad

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ blackroad completion zsh > "${fpath[1]}/_blackroad"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ blackroad completion fish | source

  # To load completions for each session, execute once:
  $ blackroad completion fish > ~/.config/fish/completions/blackroad.fish

PowerShell:
  PS> blackroad completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Completion needs no settings or state.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:               runCompletion,
}

// completionGenerators writes the completion script for each supported shell.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

func runCompletion(cmd *cobra.Command, args []string) error {
	gen, ok := completionGenerators[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q", args[0])
	}
	return gen(cmd.Root(), cmd.OutOrStdout())
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
