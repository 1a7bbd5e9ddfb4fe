package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/client"
	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

type UploadCmd struct {
	env    *Env
	server string
	format string
}

func NewUploadCmd(env *Env) *cobra.Command {
	uc := &UploadCmd{env: env}
	cmd := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload a trial balance to a running server",
		Args:  cobra.ExactArgs(1),
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.server, "server", DefaultServerURL, "Base URL of the ledger-atlas server")
	cmd.Flags().StringVar(&uc.format, "format", FormatTable, "Output format: table, text, or json")

	return cmd
}

func (uc *UploadCmd) run(cmd *cobra.Command, args []string) error {
	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	controller := session.NewController(session.Options{Uploader: client.New(uc.server)})
	controller.SubmitFile(cmd.Context(), path, file)

	s := controller.Session()
	if s.Status != session.StatusSucceeded {
		return errors.New(s.Error)
	}
	return renderResult(uc.env.Output, uc.format, path, s.Result)
}
