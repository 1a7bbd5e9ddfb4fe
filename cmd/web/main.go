package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/bridge"
	"github.com/de-tools/ledger-atlas/pkg/server"
	"github.com/de-tools/ledger-atlas/pkg/services/advisor"
	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
	"github.com/de-tools/ledger-atlas/pkg/services/config"
	"github.com/de-tools/ledger-atlas/pkg/services/record"
	"github.com/de-tools/ledger-atlas/pkg/store/archive"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite/history"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Ledger Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (defaults plus LEDGER_ATLAS_* env vars apply without one)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: settings.DbPath})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	historyStore, err := history.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create history store: %w", err)
	}

	recorderOpts := record.Options{
		DB:        db,
		History:   historyStore,
		Retention: settings.Retention,
	}
	if settings.Archive.Bucket != "" {
		s3Archive, err := archive.NewS3Archive(ctx, archive.S3Settings{
			Bucket:  settings.Archive.Bucket,
			Prefix:  settings.Archive.Prefix,
			Profile: settings.Archive.Profile,
		})
		if err != nil {
			return fmt.Errorf("failed to init ledger archive: %w", err)
		}
		recorderOpts.Archive = s3Archive
		logger.Info().Str("bucket", settings.Archive.Bucket).Msg("ledger archive enabled")
	}

	recorder, err := record.NewRecorder(recorderOpts)
	if err != nil {
		return fmt.Errorf("failed to create recorder: %w", err)
	}

	adv, err := buildAdvisor(ctx, settings)
	if err != nil {
		return err
	}
	engine := analysis.NewEngine(analysis.NewDetector(analysis.DefaultDetectorSettings()), adv)

	deps := server.Dependencies{
		Engine:   engine,
		History:  historyStore,
		Recorder: recorder,
	}
	if len(settings.Analyzer.Command) > 0 {
		deps.ExternalAnalyzer = bridge.NewHandler(settings.Analyzer.Command[0], settings.Analyzer.Command[1:]...)
		logger.Info().Strs("command", settings.Analyzer.Command).Msg("uploads delegated to external analyzer")
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:           settings.Addr,
		AllowedOrigins: settings.AllowedOrigins,
		Dependencies:   deps,
	})

	return api.Start()
}

func buildAdvisor(ctx context.Context, settings *config.Settings) (advisor.Advisor, error) {
	logger := zerolog.Ctx(ctx)

	creds, err := settings.AdvisorCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve advisor credentials: %w", err)
	}
	if creds.APIKey == "" {
		logger.Warn().Msg("no advisor API key configured, using rule-based recommendations")
		return advisor.NewRules(advisor.DefaultRuleSettings()), nil
	}

	gemini, err := advisor.NewGemini(ctx, advisor.GeminiSettings{APIKey: creds.APIKey, Model: creds.Model})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini advisor: %w", err)
	}
	logger.Info().Str("advisor", gemini.Name()).Msg("advisor configured")
	return gemini, nil
}
