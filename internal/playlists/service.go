package playlists

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"

	"github.com/llehouerou/sing/internal/covers"
	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/ordered"
	"github.com/llehouerou/sing/internal/report"
)

// Options configures a Service.
type Options struct {
	DefaultName string // base for generated names
	MaxCovers   int    // derived thumbnails per playlist
}

// Service applies ordered edits to stored playlists. Every mutation is
// reported, and a successful one emits an internal "playlist changed" event
// and a forwarded "playlists updated" event.
//
// Calls on the same playlist are expected one at a time.
type Service struct {
	store Store
	rep   *report.Reporter
	opts  Options
}

func NewService(store Store, rep *report.Reporter, opts Options) *Service {
	if opts.DefaultName == "" {
		opts.DefaultName = "Playlist"
	}
	if opts.MaxCovers <= 0 || opts.MaxCovers > covers.Max {
		opts.MaxCovers = covers.Max
	}
	return &Service{store: store, rep: rep, opts: opts}
}

func (s *Service) changed(playlistID int64) {
	s.rep.Internal(report.EventPlaylistChanged, playlistID)
	s.rep.Changed(report.EventPlaylistsUpdated, playlistID)
}

// AppendTracks adds tracks after the last item of a playlist and returns
// the new items.
func (s *Service) AppendTracks(ctx context.Context, playlistID int64, trackIDs []int64) ([]Item, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	items, err := s.appendTracks(ctx, playlistID, trackIDs)
	label := fmt.Sprintf("Added %s to playlist", english.Plural(len(trackIDs), "track", ""))
	if err := s.rep.Report(errmsg.OpPlaylistAddTrack, err, label); err != nil {
		return nil, err
	}
	s.changed(playlistID)
	return items, nil
}

func (s *Service) appendTracks(ctx context.Context, playlistID int64, trackIDs []int64) ([]Item, error) {
	count, err := s.store.CountItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	items := ordered.Continue(count, newItems(playlistID, trackIDs)...)
	if err := s.store.InsertItems(ctx, playlistID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// InsertTracksAt splices tracks in before index, clamped to the playlist
// length, and persists the whole reordered item set at once. The returned
// playlist carries the new items.
func (s *Service) InsertTracksAt(ctx context.Context, playlistID int64, index int, trackIDs []int64) (Playlist, error) {
	p, err := s.insertTracksAt(ctx, playlistID, index, trackIDs)
	label := fmt.Sprintf("Added %s to playlist %s", english.Plural(len(trackIDs), "track", ""), p.Name)
	if err := s.rep.Report(errmsg.OpPlaylistInsert, err, label); err != nil {
		return Playlist{}, err
	}
	s.changed(playlistID)
	return p, nil
}

func (s *Service) insertTracksAt(ctx context.Context, playlistID int64, index int, trackIDs []int64) (Playlist, error) {
	current, err := s.store.Items(ctx, playlistID)
	if err != nil {
		return Playlist{}, err
	}
	// Item IDs do not survive a reorder.
	for i := range current {
		current[i].ID = 0
	}

	items := ordered.InsertAt(current, index, newItems(playlistID, trackIDs)...)
	if err := s.store.ReplaceItems(ctx, playlistID, items); err != nil {
		return Playlist{}, err
	}

	p, err := s.store.Get(ctx, playlistID)
	if err != nil {
		return Playlist{}, err
	}
	p.Items = items
	return p, nil
}

// RemoveTracks deletes every item of the playlist that holds one of trackIDs.
func (s *Service) RemoveTracks(ctx context.Context, playlistID int64, trackIDs []int64) error {
	if len(trackIDs) == 0 {
		return nil
	}
	err := s.store.DeleteItems(ctx, playlistID, trackIDs)
	if err := s.rep.Report(errmsg.OpPlaylistRemove, err, ""); err != nil {
		return err
	}
	s.changed(playlistID)
	return nil
}

// MoveTracks shifts the items at positions by delta as a block. It returns
// the new positions of the moved items, or the given ones if the move was
// out of bounds.
func (s *Service) MoveTracks(ctx context.Context, playlistID int64, positions []int, delta int) ([]int, error) {
	moved, newPositions, err := s.moveTracks(ctx, playlistID, positions, delta)
	if err := s.rep.Report(errmsg.OpPlaylistMove, err, ""); err != nil {
		return nil, err
	}
	if moved {
		s.changed(playlistID)
	}
	return newPositions, nil
}

func (s *Service) moveTracks(ctx context.Context, playlistID int64, positions []int, delta int) (bool, []int, error) {
	current, err := s.store.Items(ctx, playlistID)
	if err != nil {
		return false, nil, err
	}
	items, newPositions, ok := ordered.Move(current, positions, delta)
	if !ok {
		return false, positions, nil
	}
	if err := s.store.ReplaceItems(ctx, playlistID, items); err != nil {
		return false, nil, err
	}
	return true, newPositions, nil
}

// Create makes an empty playlist. An empty name is replaced by a generated one.
func (s *Service) Create(ctx context.Context, name string) (Playlist, error) {
	p, err := s.create(ctx, name, nil)
	if err := s.rep.Report(errmsg.OpPlaylistCreate, err, ""); err != nil {
		return Playlist{}, err
	}
	s.rep.Changed(report.EventPlaylistsUpdated, p.ID)
	return p, nil
}

// CreateFrom makes a playlist holding trackIDs in order, with covers
// derived from those tracks.
func (s *Service) CreateFrom(ctx context.Context, name string, trackIDs []int64) (Playlist, error) {
	p, err := s.create(ctx, name, trackIDs)
	if err := s.rep.Report(errmsg.OpPlaylistCreate, err, "Created playlist "+p.Name); err != nil {
		return Playlist{}, err
	}
	s.rep.Changed(report.EventPlaylistsUpdated, p.ID)
	return p, nil
}

func (s *Service) create(ctx context.Context, name string, trackIDs []int64) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		existing, err := s.store.Names(ctx)
		if err != nil {
			return Playlist{}, err
		}
		name = DefaultName(s.opts.DefaultName, existing)
	}

	var (
		id  int64
		err error
	)
	if len(trackIDs) == 0 {
		id, err = s.store.Create(ctx, name)
	} else {
		items := ordered.Continue(0, newItems(0, trackIDs)...)
		id, err = s.store.CreateWithItems(ctx, name, items, func(trackCovers []string) []string {
			return covers.Derive(covers.Thumbnails{}, trackCovers, s.opts.MaxCovers)
		})
	}
	if err != nil {
		return Playlist{}, err
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	p.Items, err = s.store.Items(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// Rename changes the name of a playlist.
func (s *Service) Rename(ctx context.Context, playlistID int64, name string) error {
	name = strings.TrimSpace(name)
	var err error
	if name == "" {
		err = errmsg.Validation(errmsg.OpPlaylistRename, "playlist name is empty")
	} else {
		err = s.store.Rename(ctx, playlistID, name)
	}
	if err := s.rep.Report(errmsg.OpPlaylistRename, err, ""); err != nil {
		return err
	}
	s.rep.Changed(report.EventPlaylistsUpdated, playlistID)
	return nil
}

// Delete removes a playlist with its items and covers.
func (s *Service) Delete(ctx context.Context, playlistID int64) error {
	p, err := s.store.Get(ctx, playlistID)
	if err == nil {
		err = s.store.Delete(ctx, playlistID)
	}
	if err := s.rep.Report(errmsg.OpPlaylistDelete, err, "Deleted playlist "+p.Name); err != nil {
		return err
	}
	s.rep.Changed(report.EventPlaylistsUpdated, playlistID)
	return nil
}

// Get returns a playlist without its items.
func (s *Service) Get(ctx context.Context, playlistID int64) (Playlist, error) {
	return s.store.Get(ctx, playlistID)
}

// List returns every playlist sorted by name.
func (s *Service) List(ctx context.Context) ([]Playlist, error) {
	return s.store.List(ctx)
}

// Items returns the items of a playlist in order.
func (s *Service) Items(ctx context.Context, playlistID int64) ([]Item, error) {
	if _, err := s.store.Get(ctx, playlistID); err != nil {
		return nil, err
	}
	return s.store.Items(ctx, playlistID)
}

// PinCovers sets a manual cover set that derivation never overwrites.
func (s *Service) PinCovers(ctx context.Context, playlistID int64, paths []string) error {
	var err error
	switch {
	case len(paths) == 0:
		err = errmsg.Validation(errmsg.OpCoverPin, "no covers given")
	case len(paths) > covers.Max:
		err = errmsg.Validation(errmsg.OpCoverPin, fmt.Sprintf("at most %d covers", covers.Max))
	default:
		err = s.store.SetManualCovers(ctx, playlistID, paths, true)
	}
	if err := s.rep.Report(errmsg.OpCoverPin, err, ""); err != nil {
		return err
	}
	s.rep.Changed(report.EventPlaylistUpdated, playlistID)
	return nil
}

// UnpinCovers returns a playlist to derived covers.
func (s *Service) UnpinCovers(ctx context.Context, playlistID int64) error {
	err := s.store.SetManualCovers(ctx, playlistID, nil, false)
	if err := s.rep.Report(errmsg.OpCoverPin, err, ""); err != nil {
		return err
	}
	s.rep.Internal(report.EventPlaylistChanged, playlistID)
	return nil
}

// MarkUsed records that the playlists were just played. Playlists deleted
// in the meantime are skipped; other failures are logged only.
func (s *Service) MarkUsed(ctx context.Context, playlistIDs ...int64) {
	for _, id := range playlistIDs {
		if err := s.store.Touch(ctx, id); err != nil && !errmsg.IsNotFound(err) {
			s.rep.Logger().Warn().Err(err).Int64("playlist", id).Msg("mark playlist used")
		}
	}
}

// Compact renumbers playlists left with gaps, e.g. after tracks were
// deleted from the library, and returns their IDs.
func (s *Service) Compact(ctx context.Context) ([]int64, error) {
	ids, err := s.store.Compact(ctx)
	if err := s.rep.Report(errmsg.OpPlaylistCompact, err, ""); err != nil {
		return nil, err
	}
	for _, id := range ids {
		s.changed(id)
	}
	return ids, nil
}
