package commands

import (
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/bridge"
	ledgerhandlers "github.com/de-tools/ledger-atlas/pkg/handlers/ledger"
	ledgeratlasmiddleware "github.com/de-tools/ledger-atlas/pkg/server/middleware"
)

type BridgeCmd struct {
	env *Env
}

func NewBridgeCmd(env *Env) *cobra.Command {
	bc := &BridgeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve one analysis request over stdin/stdout envelopes",
		Long: "Reads a single JSON request envelope from standard input, runs the " +
			"analysis in process, and writes the response envelope to standard " +
			"output. Lets this binary stand in as the external analyzer behind " +
			"a server configured with analyzer.command.",
		Args: cobra.NoArgs,
		RunE: bc.run,
	}

	return cmd
}

func (bc *BridgeCmd) run(cmd *cobra.Command, _ []string) error {
	settings, err := bc.env.Settings()
	if err != nil {
		return err
	}

	logger := bc.env.Logger()
	ctx := logger.WithContext(cmd.Context())

	engine, err := newEngine(ctx, settings)
	if err != nil {
		return err
	}

	handler := ledgerhandlers.NewHandler(engine, nil, nil)
	router := chi.NewRouter()
	router.Use(ledgeratlasmiddleware.Logger(&logger))
	router.Post("/upload-csv", handler.UploadCSV)

	// Stdout carries the response envelope; diagnostics stay on stderr.
	return bridge.ServeOnce(router, cmd.InOrStdin(), bc.env.Output)
}
