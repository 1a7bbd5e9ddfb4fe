package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/runtime/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{env: &commands.Env{Output: opts.Output}}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger-atlas",
		Short: "Trial balance analysis tool",
	}

	cmd.PersistentFlags().StringVarP(&cli.env.ConfigPath, "config", "c", "", "Path to the config file")
	cmd.PersistentFlags().BoolVarP(&cli.env.Verbose, "verbose", "v", false, "Log debug detail to stderr")

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.env))
	cmd.AddCommand(commands.NewUploadCmd(cli.env))
	cmd.AddCommand(commands.NewDashboardCmd(cli.env))
	cmd.AddCommand(commands.NewWatchCmd(cli.env))
	cmd.AddCommand(commands.NewHistoryCmd(cli.env))
	cmd.AddCommand(commands.NewBridgeCmd(cli.env))

	return cmd
}
