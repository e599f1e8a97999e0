// Package cli implements the sing command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/sing/internal/app"
	"github.com/llehouerou/sing/internal/config"
	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/notify"
	"github.com/llehouerou/sing/internal/report"
	"github.com/llehouerou/sing/internal/state"
)

type globalFlags struct {
	configFile string
	database   string
	logLevel   string
}

// env is what every subcommand runs against. It is built before the
// subcommand runs and closed after.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	state *state.Manager
	app   *app.App
}

// Close waits for background work and closes the database. It is safe to
// call when the environment was never opened.
func (e *env) Close() error {
	if e.app != nil {
		e.app.Close()
		e.app = nil
	}
	if e.state == nil {
		return nil
	}
	err := e.state.Close()
	e.state = nil
	return err
}

// NewRootCommand builds the sing command tree. Logs go to stderr. The
// returned closer releases what the executed subcommand opened.
func NewRootCommand(stderr io.Writer) (*cobra.Command, io.Closer) {
	var flags globalFlags
	e := &env{}

	root := &cobra.Command{
		Use:           "sing",
		Short:         "Manage a music library, its playlists and a play queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.open(flags, stderr)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "extra config file, read last")
	pf.StringVar(&flags.database, "db", "", "database file (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newTrackCommand(e),
		newPlaylistCommand(e),
		newLibraryCommand(e),
		newQueueCommand(e),
	)
	return root, e
}

func (e *env) open(flags globalFlags, stderr io.Writer) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.database != "" {
		cfg.Database = flags.database
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	e.cfg = cfg

	e.log, err = newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	e.state, err = state.Open(cfg.Database)
	if err != nil {
		return errmsg.Persistence(errmsg.OpInitialize, err)
	}

	e.app = app.New(app.Deps{
		DB:       e.state.DB(),
		Config:   cfg,
		Log:      e.log,
		Sink:     e.sink(),
		Registry: prometheus.NewRegistry(),
	})
	return nil
}

// sink forwards alerts and notifications to the desktop when enabled, and
// always logs them.
func (e *env) sink() report.Sink {
	logSink := report.SinkFunc(func(ev report.Event) {
		if ev.Label != "" {
			e.log.Info().Str("event", ev.Name).Msg(ev.Label)
		}
	})
	if !e.cfg.NotificationsEnabled() {
		return logSink
	}
	n, err := notify.New()
	if err != nil {
		e.log.Warn().Err(err).Msg("desktop notifications unavailable")
		return logSink
	}
	return report.Sinks{logSink, notify.NewForwarder(n, e.log)}
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", level)
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root, closer := NewRootCommand(os.Stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := closer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errmsg.Message(err))
		return 1
	}
	return 0
}
