package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the application configuration shared by the web server and the
// CLI. Values come from an optional config file with LEDGER_ATLAS_* env
// overrides on top.
type Settings struct {
	Addr           string           `mapstructure:"addr"`
	DbPath         string           `mapstructure:"db_path"`
	AllowedOrigins []string         `mapstructure:"allowed_origins"`
	Retention      int              `mapstructure:"retention"`
	Advisor        AdvisorSettings  `mapstructure:"advisor"`
	Archive        ArchiveSettings  `mapstructure:"archive"`
	Analyzer       AnalyzerSettings `mapstructure:"analyzer"`
}

type AdvisorSettings struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// Profile selects a section of the credentials file when no key is set
	// directly.
	Profile string `mapstructure:"profile"`
}

type ArchiveSettings struct {
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Profile string `mapstructure:"profile"`
}

// AnalyzerSettings configures the optional external analyzer. An empty
// command keeps analysis in-process.
type AnalyzerSettings struct {
	Command []string `mapstructure:"command"`
}

// Load reads settings from the given config file path. An empty path loads
// defaults and environment overrides only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "ledger-atlas.db")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("retention", 0)
	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.model", "")
	v.SetDefault("advisor.profile", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "")
	v.SetDefault("archive.profile", "")
	v.SetDefault("analyzer.command", []string{})

	v.SetEnvPrefix("LEDGER_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// The analysis backend reads GEMINI_API_KEY directly; it beats any
	// file-sourced key so a bare `GEMINI_API_KEY=... ledger-atlas` works.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		settings.Advisor.APIKey = key
	}
	return &settings, nil
}
