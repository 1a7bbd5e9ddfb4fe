package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/client"
	"github.com/de-tools/ledger-atlas/pkg/runtime/dashboard"
	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

type DashboardCmd struct {
	env    *Env
	server string
}

func NewDashboardCmd(env *Env) *cobra.Command {
	dc := &DashboardCmd{env: env}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive upload dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.server, "server", DefaultServerURL, "Base URL of the ledger-atlas server")

	return cmd
}

func (dc *DashboardCmd) run(cmd *cobra.Command, _ []string) error {
	controller := session.NewController(session.Options{Uploader: client.New(dc.server)})
	return dashboard.Run(controller)
}
