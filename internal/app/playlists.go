package app

import (
	"context"

	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/playlists"
	"github.com/llehouerou/sing/internal/source"
)

// resolve returns the tracks of srcs one source after the other, reporting
// a failure.
func (a *App) resolve(ctx context.Context, srcs ...source.Source) ([]library.Track, error) {
	tracks, err := source.ResolveAll(ctx, a.Library, srcs...)
	if err != nil {
		a.Reporter.Failure(errmsg.OpSourceResolve, err)
		return nil, err
	}
	return tracks, nil
}

// AddToPlaylist adds the tracks of srcs to a playlist, at the end when at
// is nil and before position *at otherwise. It returns the playlist's items.
func (a *App) AddToPlaylist(ctx context.Context, playlistID int64, at *int, srcs ...source.Source) ([]playlists.Item, error) {
	tracks, err := a.resolve(ctx, srcs...)
	if err != nil {
		return nil, err
	}
	ids := source.IDs(tracks)

	if at == nil {
		if _, err := a.Playlists.AppendTracks(ctx, playlistID, ids); err != nil {
			return nil, err
		}
		return a.Playlists.Items(ctx, playlistID)
	}

	p, err := a.Playlists.InsertTracksAt(ctx, playlistID, *at, ids)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// RemoveFromPlaylist deletes the items of a playlist that hold a track of srcs.
func (a *App) RemoveFromPlaylist(ctx context.Context, playlistID int64, srcs ...source.Source) error {
	tracks, err := a.resolve(ctx, srcs...)
	if err != nil {
		return err
	}
	return a.Playlists.RemoveTracks(ctx, playlistID, source.IDs(tracks))
}

// CreatePlaylist makes a playlist named name, filled with the tracks of
// srcs if any are given.
func (a *App) CreatePlaylist(ctx context.Context, name string, srcs ...source.Source) (playlists.Playlist, error) {
	if len(srcs) == 0 {
		return a.Playlists.Create(ctx, name)
	}
	tracks, err := a.resolve(ctx, srcs...)
	if err != nil {
		return playlists.Playlist{}, err
	}
	return a.Playlists.CreateFrom(ctx, name, source.IDs(tracks))
}
