package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/client"
)

type HistoryCmd struct {
	env    *Env
	server string
	limit  int
	format string
}

func NewHistoryCmd(env *Env) *cobra.Command {
	hc := &HistoryCmd{env: env}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyses stored on the server",
		Args:  cobra.NoArgs,
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.server, "server", DefaultServerURL, "Base URL of the ledger-atlas server")
	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Most recent analyses to fetch")
	cmd.Flags().StringVar(&hc.format, "format", FormatTable, "Output format: table or json")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	if hc.format != FormatTable && hc.format != FormatJSON {
		return fmt.Errorf("unsupported format %q (want %s or %s)", hc.format, FormatTable, FormatJSON)
	}

	records, err := client.New(hc.server).History(cmd.Context(), hc.limit)
	if err != nil {
		return err
	}

	if hc.format == FormatJSON {
		enc := json.NewEncoder(hc.env.Output)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(hc.env.Output, "No analyses recorded yet.")
		return nil
	}

	fmt.Fprintf(hc.env.Output, "%-36s  %-28s  %-19s  %9s  %8s\n", "ID", "FILE", "CREATED", "VARIANCE", "RISK")
	for _, rec := range records {
		fmt.Fprintf(hc.env.Output, "%-36s  %-28s  %-19s  %8.1f%%  %4d/100\n",
			rec.Id, rec.FileName, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.VariancePct, rec.RiskScore)
	}
	return nil
}
