package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/ledger-atlas/pkg/adapters"
	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

type AnalyzeCmd struct {
	env      *Env
	format   string
	parallel int
}

func NewAnalyzeCmd(env *Env) *cobra.Command {
	ac := &AnalyzeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "analyze <file.csv> [file.csv ...]",
		Short: "Analyze trial balance files locally",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.format, "format", FormatTable, "Output format: table, text, or json")
	cmd.Flags().IntVar(&ac.parallel, "parallel", 4, "How many files to analyze at once")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	settings, err := ac.env.Settings()
	if err != nil {
		return err
	}

	logger := ac.env.Logger()
	ctx := logger.WithContext(cmd.Context())

	engine, err := newEngine(ctx, settings)
	if err != nil {
		return err
	}

	results := make([]*api.AnalysisResult, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ac.parallel)
	for i, path := range args {
		g.Go(func() error {
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer file.Close()

			result, err := engine.Analyze(gctx, file)
			if err != nil {
				return fmt.Errorf("failed to analyze %s: %w", path, err)
			}

			payload := adapters.MapAnalysisDomainToApi(result)
			results[i] = &payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Render in argument order regardless of completion order.
	for i, path := range args {
		if err := renderResult(ac.env.Output, ac.format, path, results[i]); err != nil {
			return err
		}
	}
	return nil
}
