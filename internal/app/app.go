// Package app wires the library, playlists, covers and play queue into the
// backend used by the command line.
package app

import (
	"context"
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/llehouerou/sing/internal/config"
	"github.com/llehouerou/sing/internal/covers"
	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/playlists"
	"github.com/llehouerou/sing/internal/queue"
	"github.com/llehouerou/sing/internal/report"
)

// Deps holds what New needs from the outside.
type Deps struct {
	DB     *sql.DB
	Config *config.Config
	Log    zerolog.Logger
	// Sink receives the events forwarded to the user. Nil drops them.
	Sink report.Sink
	// Registry registers the operation counters. Nil skips registration.
	Registry prometheus.Registerer
}

// App is the backend. Mutations go through its services, which report
// their outcome and emit change events on Bus.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	Bus       *report.Bus
	Reporter  *report.Reporter
	Library   *library.Library
	Playlists *playlists.Service
	Covers    *covers.Deriver
	Session   *queue.Session

	// ctx outlives single calls; background cover refreshes run on it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the backend on an open database.
func New(d Deps) *App {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}

	bus := report.NewBus(d.Sink)
	rep := report.New(d.Log, bus, report.NewMetrics(d.Registry), report.Options{
		NotifySuccess: cfg.Notifications.Success,
	})
	store := playlists.NewSQLStore(d.DB)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		log:      d.Log,
		Bus:      bus,
		Reporter: rep,
		Library:  library.New(d.DB),
		Playlists: playlists.NewService(store, rep, playlists.Options{
			DefaultName: cfg.Playlists.DefaultName,
			MaxCovers:   cfg.Covers.Max,
		}),
		Covers:  covers.NewDeriver(store, rep, cfg.Covers.Max),
		Session: queue.NewSession(d.Log, 0),
		ctx:     ctx,
		cancel:  cancel,
	}

	bus.On(report.EventPlaylistChanged, a.onPlaylistChanged)
	return a
}

// onPlaylistChanged re-derives the covers of the changed playlist, inline
// or in the background depending on the covers mode.
func (a *App) onPlaylistChanged(e report.Event) {
	if a.cfg.SyncCovers() {
		_, _ = a.Covers.Refresh(a.ctx, e.PlaylistID)
		return
	}
	a.wg.Go(func() {
		_, _ = a.Covers.Refresh(a.ctx, e.PlaylistID)
	})
}

// Wait blocks until background cover refreshes are done.
func (a *App) Wait() {
	a.wg.Wait()
}

// Close waits for background work and ends the queue session.
func (a *App) Close() {
	a.wg.Wait()
	a.cancel()
	a.Session.Close()
}
