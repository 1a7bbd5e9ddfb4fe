package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-atlas/pkg/services/config"
)

// DefaultServerURL is where the remote commands point when --server is not
// given.
const DefaultServerURL = "http://localhost:8080"

// Env is the environment commands run in: where report output goes and
// which config file to load. The root command binds its persistent flags to
// ConfigPath and Verbose before any RunE fires.
type Env struct {
	Output     io.Writer
	ConfigPath string
	Verbose    bool
}

func (e *Env) Settings() (*config.Settings, error) {
	return config.Load(e.ConfigPath)
}

// Logger builds the CLI logger: console format on stderr, warnings only
// unless verbose is set. Reports go to Output, diagnostics never do.
func (e *Env) Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if e.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
