package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for gopano.

To load completions:

Bash:

  $ source <(gopano completion bash)

  To load completions for each session, execute once:
  Linux:
    $ gopano completion bash > /etc/bash_completion.d/gopano
  macOS:
    $ gopano completion bash > /usr/local/etc/bash_completion.d/gopano

Zsh:

  $ gopano completion zsh > "${fpath[1]}/_gopano"

  You will need to start a new shell for this setup to take effect.

Fish:

  $ gopano completion fish | source

PowerShell:

  PS> gopano completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// logging is not needed and must not touch the config file
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return fmt.Errorf("unsupported shell %q", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
