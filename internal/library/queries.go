package library

import (
	"context"

	dbutil "github.com/llehouerou/sing/internal/db"
	"github.com/llehouerou/sing/internal/errmsg"
)

// TrackByID returns a track by its ID.
func (l *Library) TrackByID(ctx context.Context, id int64) (Track, error) {
	if t, ok := l.cache.Get(id); ok {
		return t, nil
	}

	row := l.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if err != nil {
		return Track{}, errmsg.Persistence(errmsg.OpLibraryLoad, err)
	}
	l.cache.Add(id, t)
	return t, nil
}

// TracksByIDs returns the tracks with the given IDs in the order the IDs
// were given. IDs without a track are skipped.
func (l *Library) TracksByIDs(ctx context.Context, ids []int64) ([]Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks WHERE id IN (`+dbutil.Placeholders(len(ids))+`)
	`, dbutil.Args(ids)...)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}

	byID := make(map[int64]Track, len(found))
	for _, t := range found {
		byID[t.ID] = t
		l.cache.Add(t.ID, t)
	}

	tracks := make([]Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// AllTracks returns every track sorted by title.
func (l *Library) AllTracks(ctx context.Context) ([]Track, error) {
	tracks, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks ORDER BY title COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpLibraryLoad, err)
	}
	return tracks, nil
}

// ArtistTracks returns the tracks of one artist ordered by album then track number.
func (l *Library) ArtistTracks(ctx context.Context, artist string) ([]Track, error) {
	tracks, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE artist = ?
		ORDER BY album COLLATE NOCASE, disc_number, track_number, title COLLATE NOCASE
	`, artist)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

// ArtistsTracks returns the tracks of several artists.
func (l *Library) ArtistsTracks(ctx context.Context, artists []string) ([]Track, error) {
	if len(artists) == 0 {
		return nil, nil
	}
	tracks, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE artist IN (`+dbutil.Placeholders(len(artists))+`)
		ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, disc_number, track_number
	`, dbutil.Args(artists)...)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

// AlbumTracks returns the tracks of one album ordered by disc and track number.
func (l *Library) AlbumTracks(ctx context.Context, album string) ([]Track, error) {
	tracks, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE album = ?
		ORDER BY disc_number, track_number, title COLLATE NOCASE
	`, album)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

// AlbumsTracks returns the tracks of several albums.
func (l *Library) AlbumsTracks(ctx context.Context, albums []string) ([]Track, error) {
	if len(albums) == 0 {
		return nil, nil
	}
	tracks, err := l.queryTracks(ctx, `
		SELECT `+trackColumns+` FROM tracks
		WHERE album IN (`+dbutil.Placeholders(len(albums))+`)
		ORDER BY album COLLATE NOCASE, disc_number, track_number
	`, dbutil.Args(albums)...)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

// PlaylistTracks returns the tracks of the given playlists, each playlist in
// item order.
func (l *Library) PlaylistTracks(ctx context.Context, playlistIDs []int64) ([]Track, error) {
	if len(playlistIDs) == 0 {
		return nil, nil
	}
	tracks, err := l.queryTracks(ctx, `
		SELECT t.id, t.path, t.title, t.artist, t.album, t.track_number, t.disc_number, t.duration_ms, t.cover_path
		FROM playlist_items pi
		JOIN tracks t ON t.id = pi.track_id
		WHERE pi.playlist_id IN (`+dbutil.Placeholders(len(playlistIDs))+`)
		ORDER BY pi.playlist_id, pi.position
	`, dbutil.Args(playlistIDs)...)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpSourceResolve, err)
	}
	return tracks, nil
}

// Artists returns all artist names.
func (l *Library) Artists(ctx context.Context) ([]string, error) {
	return l.names(ctx, `SELECT name FROM artists ORDER BY name COLLATE NOCASE`)
}

// Albums returns all album names.
func (l *Library) Albums(ctx context.Context) ([]string, error) {
	return l.names(ctx, `SELECT name FROM albums ORDER BY name COLLATE NOCASE`)
}

func (l *Library) names(ctx context.Context, query string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpLibraryLoad, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errmsg.Persistence(errmsg.OpLibraryLoad, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errmsg.Persistence(errmsg.OpLibraryLoad, err)
	}
	return names, nil
}
