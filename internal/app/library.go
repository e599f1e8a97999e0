package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize/english"

	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/queue"
	"github.com/llehouerou/sing/internal/report"
)

// AddTrack indexes t, or updates the track stored at the same path.
func (a *App) AddTrack(ctx context.Context, t library.Track) (library.Track, error) {
	stored, err := a.Library.Upsert(ctx, t)
	if err := a.Reporter.Report(errmsg.OpLibraryAdd, err, "Added "+stored.Title+" to library"); err != nil {
		return library.Track{}, err
	}
	return stored, nil
}

// SyncResult describes what SyncLibrary changed.
type SyncResult struct {
	Pruned    library.PruneResult
	Compacted []int64 // playlists whose positions were renumbered
	Current   int     // queue cursor after reconciliation
}

// SyncLibrary prunes the tracks whose path is not in keep, then brings the
// playlists and the play queue in line with the remaining library.
func (a *App) SyncLibrary(ctx context.Context, keep []string) (SyncResult, error) {
	var res SyncResult

	pruned, tracks, err := a.prune(ctx, keep)
	label := fmt.Sprintf("Removed %s from library", english.Plural(int(pruned.Tracks), "track", ""))
	if err := a.Reporter.Report(errmsg.OpLibrarySync, err, label); err != nil {
		return res, err
	}
	res.Pruned = pruned

	res.Compacted, err = a.Playlists.Compact(ctx)
	if err != nil {
		return res, err
	}
	if err := a.refreshCovers(ctx, res.Compacted); err != nil {
		return res, err
	}

	q := a.updateQueue("reconcile", func(q queue.Queue) queue.Queue {
		q, _ = q.Reconcile(tracks)
		return q
	})
	res.Current = q.CurrentIndex()

	a.log.Info().
		Int64("tracks", pruned.Tracks).
		Int64("albums", pruned.Albums).
		Int64("artists", pruned.Artists).
		Int("compacted", len(res.Compacted)).
		Int("queue_current", res.Current).
		Msg("library synced")
	return res, nil
}

func (a *App) prune(ctx context.Context, keep []string) (library.PruneResult, []library.Track, error) {
	pruned, err := a.Library.Prune(ctx, keep)
	if err != nil {
		return pruned, nil, err
	}
	tracks, err := a.Library.AllTracks(ctx)
	if err != nil {
		return pruned, nil, err
	}
	return pruned, tracks, nil
}

// refreshCovers signals a change for every playlist not in done. Pruning
// the last items of a playlist leaves no gap for Compact to find.
func (a *App) refreshCovers(ctx context.Context, done []int64) error {
	all, err := a.Playlists.List(ctx)
	if err != nil {
		a.Reporter.Failure(errmsg.OpPlaylistList, err)
		return err
	}
	seen := make(map[int64]struct{}, len(done))
	for _, id := range done {
		seen[id] = struct{}{}
	}
	for _, p := range all {
		if _, ok := seen[p.ID]; !ok {
			a.Reporter.Internal(report.EventPlaylistChanged, p.ID)
		}
	}
	return nil
}
