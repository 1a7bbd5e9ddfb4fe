package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
)

type WatchCmd struct {
	env *Env
}

func NewWatchCmd(env *Env) *cobra.Command {
	wc := &WatchCmd{env: env}
	cmd := &cobra.Command{
		Use:   "watch <file.csv>",
		Short: "Re-analyze a trial balance whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  wc.run,
	}

	return cmd
}

func (wc *WatchCmd) run(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}

	settings, err := wc.env.Settings()
	if err != nil {
		return err
	}

	logger := wc.env.Logger()
	ctx, stop := signal.NotifyContext(logger.WithContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, settings)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	prev := wc.analyzeOnce(ctx, engine, path, nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			prev = wc.analyzeOnce(ctx, engine, path, prev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

type watchSnapshot struct {
	anomalies int
}

// analyzeOnce runs one analysis pass and prints a compact line for it. On
// failure the line carries the error and the previous snapshot stands so
// the next delta stays meaningful.
func (wc *WatchCmd) analyzeOnce(ctx context.Context, engine *analysis.Engine, path string, prev *watchSnapshot) *watchSnapshot {
	stamp := time.Now().Format("15:04:05")
	name := filepath.Base(path)

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(wc.env.Output, "%s %s: %v\n", stamp, name, err)
		return prev
	}
	defer file.Close()

	result, err := engine.Analyze(ctx, file)
	if err != nil {
		fmt.Fprintf(wc.env.Output, "%s %s: %v\n", stamp, name, err)
		return prev
	}

	snap := &watchSnapshot{anomalies: len(result.Anomalies)}
	line := fmt.Sprintf("%s %s: %s; %d anomalies", stamp, name, result.Balance.StatusLine(), snap.anomalies)
	if prev != nil && snap.anomalies != prev.anomalies {
		line += fmt.Sprintf(" (%+d)", snap.anomalies-prev.anomalies)
	}
	fmt.Fprintln(wc.env.Output, line)

	zerolog.Ctx(ctx).Debug().
		Str("file", path).
		Int("anomalies", snap.anomalies).
		Bool("balanced", result.Balance.Balanced).
		Msg("watch pass complete")
	return snap
}
