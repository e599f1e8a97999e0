// Package playlists stores playlists and keeps their items densely ordered.
package playlists

import (
	"context"
	"time"
)

// Playlist is a named, ordered collection of tracks.
type Playlist struct {
	ID           int64
	Name         string
	Covers       []string // at most covers.Max
	CoversManual bool
	ItemCount    int
	CreatedAt    time.Time
	LastUsedAt   time.Time
	Items        []Item // only filled by operations that return the new order
}

// Item places one track at one position of a playlist. The same track may
// appear at several positions.
type Item struct {
	ID         int64
	PlaylistID int64
	TrackID    int64
	Pos        int
}

func (i Item) Position() int { return i.Pos }

func (i Item) WithPosition(pos int) Item {
	i.Pos = pos
	return i
}

// TrackIDs returns the track of each item in order.
func TrackIDs(items []Item) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.TrackID
	}
	return ids
}

func newItems(playlistID int64, trackIDs []int64) []Item {
	items := make([]Item, len(trackIDs))
	for i, id := range trackIDs {
		items[i] = Item{PlaylistID: playlistID, TrackID: id}
	}
	return items
}

// Store persists playlists, their items and their covers.
type Store interface {
	// Items returns the items of a playlist ordered by position.
	Items(ctx context.Context, playlistID int64) ([]Item, error)
	CountItems(ctx context.Context, playlistID int64) (int, error)
	// InsertItems adds items at the positions they carry.
	InsertItems(ctx context.Context, playlistID int64, items []Item) error
	// ReplaceItems atomically swaps the whole item set of a playlist.
	ReplaceItems(ctx context.Context, playlistID int64, items []Item) error
	// DeleteItems removes every item holding one of trackIDs and renumbers
	// the survivors.
	DeleteItems(ctx context.Context, playlistID int64, trackIDs []int64) error
	// Compact renumbers playlists whose positions have gaps and returns their IDs.
	Compact(ctx context.Context) ([]int64, error)

	Names(ctx context.Context) ([]string, error)
	Create(ctx context.Context, name string) (int64, error)
	// CreateWithItems creates a playlist holding items and stores the covers
	// derive picks from their track covers, all or nothing.
	CreateWithItems(ctx context.Context, name string, items []Item, derive func(trackCovers []string) []string) (int64, error)
	Get(ctx context.Context, playlistID int64) (Playlist, error)
	List(ctx context.Context) ([]Playlist, error)
	Rename(ctx context.Context, playlistID int64, name string) error
	Delete(ctx context.Context, playlistID int64) error
	// Touch sets the last used time of a playlist to now.
	Touch(ctx context.Context, playlistID int64) error

	TrackCovers(ctx context.Context, playlistID int64) ([]string, error)
	UpdateCovers(ctx context.Context, playlistID int64, paths []string) error
	SetManualCovers(ctx context.Context, playlistID int64, paths []string, manual bool) error
}
