package cli

import (
	"os"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/serialmon"
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for idfrun.

Examples:
  # Bash
  idfrun completion bash > /etc/bash_completion.d/idfrun

  # Zsh
  idfrun completion zsh > "${fpath[1]}/_idfrun"

  # Fish
  idfrun completion fish > ~/.config/fish/completions/idfrun.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.ValidArgsFunction = completePorts
}

// completePorts offers the detected serial devices for a [port] argument.
func completePorts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return serialmon.DetectPorts(), cobra.ShellCompDirectiveNoFileComp
}
