package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/taxon"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for taxonscope.

Bash:
  $ source <(taxonscope completion bash)

Zsh:
  $ taxonscope completion zsh > "${fpath[1]}/_taxonscope"

Fish:
  $ taxonscope completion fish | source

PowerShell:
  PS> taxonscope completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeRanks offers the principal ranks in lower case.
func completeRanks(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	ranks := taxon.Ranks()
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = strings.ToLower(r.String())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeValues offers a fixed set of flag values.
func completeValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
