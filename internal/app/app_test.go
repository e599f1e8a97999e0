//nolint:goconst // test files commonly repeat strings for test data
package app

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sing/internal/config"
	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/playlists"
	"github.com/llehouerou/sing/internal/queue"
	"github.com/llehouerou/sing/internal/report"
	"github.com/llehouerou/sing/internal/source"
	"github.com/llehouerou/sing/internal/state"
)

type recorder struct {
	mu     sync.Mutex
	events []report.Event
}

func (r *recorder) Forward(e report.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) labels(kind report.Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var labels []string
	for _, e := range r.events {
		if e.Kind == kind {
			labels = append(labels, e.Label)
		}
	}
	return labels
}

type fixture struct {
	app    *App
	db     *sql.DB
	sink   *recorder
	reg    *prometheus.Registry
	tracks []library.Track
}

func (f *fixture) ids(idx ...int) []int64 {
	ids := make([]int64, len(idx))
	for i, n := range idx {
		ids[i] = f.tracks[n].ID
	}
	return ids
}

func (f *fixture) paths(idx ...int) []string {
	paths := make([]string, len(idx))
	for i, n := range idx {
		paths[i] = f.tracks[n].Path
	}
	return paths
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()

	m, err := state.OpenMemory()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Covers.Mode = mode
	cfg.Notifications.Success = true

	f := &fixture{sink: &recorder{}, reg: prometheus.NewRegistry(), db: m.DB()}
	f.app = New(Deps{
		DB:       m.DB(),
		Config:   cfg,
		Log:      zerolog.New(io.Discard),
		Sink:     f.sink,
		Registry: f.reg,
	})
	t.Cleanup(func() {
		f.app.Close()
		m.Close()
	})

	for _, tr := range []library.Track{
		{Path: "/m/1.flac", Title: "T1", Artist: "X", Album: "A", TrackNumber: 1, CoverPath: "/c/a.jpg"},
		{Path: "/m/2.flac", Title: "T2", Artist: "X", Album: "A", TrackNumber: 2, CoverPath: "/c/a.jpg"},
		{Path: "/m/3.flac", Title: "T3", Artist: "X", Album: "B", TrackNumber: 1, CoverPath: "/c/b.jpg"},
		{Path: "/m/4.flac", Title: "T4", Artist: "Y", Album: "C", TrackNumber: 1},
		{Path: "/m/5.flac", Title: "T5", Artist: "Y", Album: "D", TrackNumber: 1, CoverPath: "/c/d.jpg"},
	} {
		stored, err := f.app.Library.Upsert(context.Background(), tr)
		require.NoError(t, err)
		f.tracks = append(f.tracks, stored)
	}
	return f
}

func entryTrackIDs(q queue.Queue) []int64 {
	entries := q.Entries()
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.Track.ID
	}
	return ids
}

func TestAddToPlaylist_AppendThenInsert(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "Mix")
	require.NoError(t, err)

	items, err := f.app.AddToPlaylist(ctx, p.ID, nil, source.Tracks{IDs: f.ids(0, 1)})
	require.NoError(t, err)
	assert.Equal(t, f.ids(0, 1), playlists.TrackIDs(items))

	at := 1
	items, err = f.app.AddToPlaylist(ctx, p.ID, &at, source.Album("C"))
	require.NoError(t, err)
	assert.Equal(t, f.ids(0, 3, 1), playlists.TrackIDs(items))

	got, err := f.app.Playlists.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/a.jpg"}, got.Covers)
}

func TestAddToPlaylist_AsyncCovers(t *testing.T) {
	f := newFixture(t, config.CoversAsync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Playlist", p.Name)

	_, err = f.app.AddToPlaylist(ctx, p.ID, nil, source.Artist("X"))
	require.NoError(t, err)
	f.app.Wait()

	got, err := f.app.Playlists.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/a.jpg", "/c/b.jpg"}, got.Covers)
}

func TestAddToPlaylist_AsyncCoversFollowLatestChange(t *testing.T) {
	f := newFixture(t, config.CoversAsync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "Mix")
	require.NoError(t, err)

	_, err = f.app.AddToPlaylist(ctx, p.ID, nil, source.Tracks{IDs: f.ids(0, 3)})
	require.NoError(t, err)
	at := 0
	_, err = f.app.AddToPlaylist(ctx, p.ID, &at, source.Tracks{IDs: f.ids(4, 2)})
	require.NoError(t, err)
	f.app.Wait()

	got, err := f.app.Playlists.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/d.jpg", "/c/b.jpg", "/c/a.jpg"}, got.Covers)
}

func TestAddToPlaylist_ResolveFailureAlerts(t *testing.T) {
	f := newFixture(t, config.CoversSync)

	p, err := f.app.CreatePlaylist(context.Background(), "Mix")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.app.AddToPlaylist(ctx, p.ID, nil, source.Tracks{IDs: f.ids(0)})

	require.Error(t, err)
	assert.Equal(t, []string{"Failed to get tracks from source"}, f.sink.labels(report.KindAlert))
	n, err := testutil.GatherAndCount(f.reg, "sing_operations_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestCreatePlaylist_FromSource(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "Road trip", source.Albums{Names: []string{"B", "D"}})
	require.NoError(t, err)

	assert.Equal(t, f.ids(2, 4), playlists.TrackIDs(p.Items))
	assert.Equal(t, []string{"/c/b.jpg", "/c/d.jpg"}, p.Covers)
	assert.Contains(t, f.sink.labels(report.KindNotification), "Created playlist Road trip")
}

func TestCreatePlaylist_SeveralSourcesKeepSourceOrder(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "Both", source.Album("C"), source.Artist("X"), source.Track(f.tracks[0].ID))
	require.NoError(t, err)

	assert.Equal(t, f.ids(3, 0, 1, 2, 0), playlists.TrackIDs(p.Items))
}

func TestRemoveFromPlaylist(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	p, err := f.app.CreatePlaylist(ctx, "Mix", source.Tracks{IDs: f.ids(0, 2, 0, 4)})
	require.NoError(t, err)

	require.NoError(t, f.app.RemoveFromPlaylist(ctx, p.ID, source.Track(f.tracks[0].ID)))

	items, err := f.app.Playlists.Items(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ids(2, 4), playlists.TrackIDs(items))

	got, err := f.app.Playlists.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/b.jpg", "/c/d.jpg"}, got.Covers)
}

func TestPlaySource_KeepsManualEntries(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	q, err := f.app.PlaySource(ctx, 0, source.Tracks{IDs: f.ids(0, 1)})
	require.NoError(t, err)
	assert.Equal(t, f.ids(0, 1), entryTrackIDs(q))
	assert.Equal(t, 0, q.CurrentIndex())

	q, err = f.app.EnqueueSource(ctx, true, source.Track(f.tracks[4].ID))
	require.NoError(t, err)
	assert.Equal(t, f.ids(0, 4, 1), entryTrackIDs(q))

	q, err = f.app.PlaySource(ctx, 0, source.Artist("Y"))
	require.NoError(t, err)

	// T1 played, T4 current, manual T5 kept, rest of artist Y appended.
	assert.Equal(t, f.ids(0, 3, 4, 4), entryTrackIDs(q))
	assert.Equal(t, 1, q.CurrentIndex())
	assert.True(t, q.Entries()[2].Manual)
	assert.False(t, q.Entries()[3].Manual)
}

func TestPlaySource_FromIndex(t *testing.T) {
	f := newFixture(t, config.CoversSync)

	q, err := f.app.PlaySource(context.Background(), 1, source.Tracks{IDs: f.ids(0, 1, 2)})
	require.NoError(t, err)

	assert.Equal(t, f.ids(1, 2), entryTrackIDs(q))
	assert.Equal(t, 0, q.CurrentIndex())
}

func TestPlaySource_PlaylistMarkedUsed(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()
	p, err := f.app.CreatePlaylist(ctx, "Mix", source.Tracks{IDs: f.ids(2, 0)})
	require.NoError(t, err)
	_, err = f.db.ExecContext(ctx, `UPDATE playlists SET last_used_at = 0 WHERE id = ?`, p.ID)
	require.NoError(t, err)

	q, err := f.app.PlaySource(ctx, 0, source.Playlist(p.ID))
	require.NoError(t, err)
	assert.Equal(t, f.ids(2, 0), entryTrackIDs(q))

	got, err := f.app.Playlists.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Positive(t, got.LastUsedAt.Unix())
}

func TestQueueNavigation(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()
	_, err := f.app.PlaySource(ctx, 0, source.Tracks{IDs: f.ids(0, 1, 2)})
	require.NoError(t, err)

	assert.Equal(t, 1, f.app.AdvanceQueue().CurrentIndex())
	assert.Equal(t, 0, f.app.RetreatQueue().CurrentIndex())
	assert.Equal(t, 2, f.app.RetreatQueue().CurrentIndex(), "retreat wraps to the last entry")

	q, err := f.app.JumpQueue(1)
	require.NoError(t, err)
	assert.Equal(t, 1, q.CurrentIndex())

	_, err = f.app.JumpQueue(3)
	require.Error(t, err)
	assert.Equal(t, errmsg.KindValidation, errmsg.KindOf(err))
	assert.Equal(t, 1, f.app.Session.Queue().CurrentIndex())
	assert.Equal(t, []string{"Failed to jump in queue"}, f.sink.labels(report.KindAlert))

	q = f.app.ResetQueue(1)
	assert.Equal(t, f.ids(0, 1), entryTrackIDs(q))
}

func TestQueueUndoRedo(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()
	_, err := f.app.PlaySource(ctx, 0, source.Tracks{IDs: f.ids(0, 1)})
	require.NoError(t, err)
	f.app.ClearQueue()

	require.True(t, f.app.UndoQueue())
	assert.Equal(t, f.ids(0, 1), entryTrackIDs(f.app.Session.Queue()))

	require.True(t, f.app.UndoQueue())
	assert.Equal(t, queue.StateEmpty, f.app.Session.Queue().State())
	assert.False(t, f.app.UndoQueue())

	require.True(t, f.app.RedoQueue())
	assert.Equal(t, f.ids(0, 1), entryTrackIDs(f.app.Session.Queue()))
}

func TestRemoveFromQueue_CurrentMovesToPrevious(t *testing.T) {
	f := newFixture(t, config.CoversSync)

	_, err := f.app.PlaySource(context.Background(), 0, source.Tracks{IDs: f.ids(0, 1, 2)})
	require.NoError(t, err)
	f.app.Session.Update("jump", func(q queue.Queue) queue.Queue {
		q, _ = q.JumpTo(1)
		return q
	})

	q := f.app.RemoveFromQueue(1)

	assert.Equal(t, f.ids(0, 2), entryTrackIDs(q))
	assert.Equal(t, 0, q.CurrentIndex())
}

func TestQueueChanges_ReachSubscribers(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	sub := f.app.Session.Subscribe()

	var internal []string
	f.app.Bus.On(report.EventQueueChanged, func(e report.Event) { internal = append(internal, e.Name) })

	f.app.ClearQueue()

	change := <-sub.Changes
	assert.Equal(t, "clear", change.Op)
	assert.Equal(t, queue.StateEmpty, change.Queue.State())
	assert.Equal(t, []string{report.EventQueueChanged}, internal)
	assert.Empty(t, f.sink.labels(report.KindNotification), "queue operations are silent")
}

func TestSyncLibrary(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	mix, err := f.app.CreatePlaylist(ctx, "Mix", source.Tracks{IDs: f.ids(0, 2)})
	require.NoError(t, err)
	tail, err := f.app.CreatePlaylist(ctx, "Tail", source.Tracks{IDs: f.ids(2, 0)})
	require.NoError(t, err)

	_, err = f.app.PlaySource(ctx, 0, source.Tracks{IDs: f.ids(0, 1, 2, 3, 4)})
	require.NoError(t, err)
	f.app.Session.Update("jump", func(q queue.Queue) queue.Queue {
		q, _ = q.JumpTo(2)
		return q
	})

	res, err := f.app.SyncLibrary(ctx, f.paths(1, 2, 3, 4))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Pruned.Tracks)
	assert.Equal(t, []int64{mix.ID}, res.Compacted)
	assert.Equal(t, 1, res.Current)

	q := f.app.Session.Queue()
	assert.Equal(t, f.ids(1, 2, 3, 4), entryTrackIDs(q))
	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, f.tracks[2].ID, cur.Track.ID)

	got, err := f.app.Playlists.Get(ctx, mix.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/b.jpg"}, got.Covers)

	got, err = f.app.Playlists.Get(ctx, tail.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/c/b.jpg"}, got.Covers, "covers of a playlist without gaps are refreshed too")

	assert.Contains(t, f.sink.labels(report.KindNotification), "Removed 1 track from library")
}

func TestSyncLibrary_DropsCurrent(t *testing.T) {
	f := newFixture(t, config.CoversSync)
	ctx := context.Background()

	_, err := f.app.PlaySource(ctx, 0, source.Tracks{IDs: f.ids(0, 1, 2, 3, 4)})
	require.NoError(t, err)
	f.app.Session.Update("jump", func(q queue.Queue) queue.Queue {
		q, _ = q.JumpTo(2)
		return q
	})

	res, err := f.app.SyncLibrary(ctx, f.paths(1, 3, 4))
	require.NoError(t, err)

	assert.Equal(t, queue.NoCurrent, res.Current)
	assert.Equal(t, queue.StateNoCurrent, f.app.Session.Queue().State())
}
