package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/library"
)

// Library is the track lookup a source resolves against.
type Library interface {
	ArtistTracks(ctx context.Context, artist string) ([]library.Track, error)
	ArtistsTracks(ctx context.Context, artists []string) ([]library.Track, error)
	AlbumTracks(ctx context.Context, album string) ([]library.Track, error)
	AlbumsTracks(ctx context.Context, albums []string) ([]library.Track, error)
	TracksByIDs(ctx context.Context, ids []int64) ([]library.Track, error)
	PlaylistTracks(ctx context.Context, playlistIDs []int64) ([]library.Track, error)
}

// Resolve returns the tracks selected by src, in playing order.
func Resolve(ctx context.Context, lib Library, src Source) ([]library.Track, error) {
	var (
		tracks []library.Track
		err    error
	)
	switch s := src.(type) {
	case Artists:
		tracks, err = resolveArtists(ctx, lib, s)
	case Albums:
		tracks, err = resolveAlbums(ctx, lib, s)
	case Tracks:
		tracks, err = resolveTracks(ctx, lib, s)
	case Playlists:
		tracks, err = resolvePlaylists(ctx, lib, s)
	default:
		err = errmsg.Validation(errmsg.OpSourceResolve, fmt.Sprintf("unsupported source %T", src))
	}
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

func resolveArtists(ctx context.Context, lib Library, s Artists) ([]library.Track, error) {
	if len(s.Names) == 1 {
		return lib.ArtistTracks(ctx, s.Names[0])
	}
	return lib.ArtistsTracks(ctx, s.Names)
}

func resolveAlbums(ctx context.Context, lib Library, s Albums) ([]library.Track, error) {
	if len(s.Names) == 1 {
		return lib.AlbumTracks(ctx, s.Names[0])
	}
	return lib.AlbumsTracks(ctx, s.Names)
}

func resolveTracks(ctx context.Context, lib Library, s Tracks) ([]library.Track, error) {
	return lib.TracksByIDs(ctx, s.IDs)
}

func resolvePlaylists(ctx context.Context, lib Library, s Playlists) ([]library.Track, error) {
	return lib.PlaylistTracks(ctx, s.IDs)
}

// ResolveAll resolves several sources concurrently and concatenates the
// results in the order the sources were given.
func ResolveAll(ctx context.Context, lib Library, srcs ...Source) ([]library.Track, error) {
	results := make([][]library.Track, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			tracks, err := Resolve(ctx, lib, src)
			if err != nil {
				return err
			}
			results[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []library.Track
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// IDs returns the ID of each track.
func IDs(tracks []library.Track) []int64 {
	ids := make([]int64, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}
