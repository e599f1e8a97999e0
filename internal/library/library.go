package library

import (
	"context"
	"database/sql"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	dbutil "github.com/llehouerou/sing/internal/db"
	"github.com/llehouerou/sing/internal/errmsg"
)

const trackCacheSize = 512

// Track is an indexed audio file. Its ID is stable and never reused.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	DiscNumber  int
	Duration    time.Duration
	CoverPath   string // empty if the track has no cover
}

// Library provides database operations for tracks, albums, artists and covers.
type Library struct {
	db    *sql.DB
	cache *lru.Cache[int64, Track]
}

func New(db *sql.DB) *Library {
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[int64, Track](trackCacheSize)
	return &Library{db: db, cache: cache}
}

const trackColumns = `id, path, title, artist, album, track_number, disc_number, duration_ms, cover_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(s scanner) (Track, error) {
	var t Track
	var trackNum, discNum sql.NullInt64
	var durationMS int64
	var cover sql.NullString
	if err := s.Scan(&t.ID, &t.Path, &t.Title, &t.Artist, &t.Album,
		&trackNum, &discNum, &durationMS, &cover); err != nil {
		return Track{}, err
	}
	t.TrackNumber = int(dbutil.NullInt64Value(trackNum))
	t.DiscNumber = int(dbutil.NullInt64Value(discNum))
	t.Duration = time.Duration(durationMS) * time.Millisecond
	t.CoverPath = dbutil.NullStringValue(cover)
	return t, nil
}

func (l *Library) queryTracks(ctx context.Context, query string, args ...any) ([]Track, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Upsert inserts a track or updates the one with the same path, registering
// its artist, album and cover. Returns the stored track with its ID.
func (l *Library) Upsert(ctx context.Context, t Track) (Track, error) {
	if t.Path == "" {
		return Track{}, errmsg.Validation(errmsg.OpLibraryAdd, "track path is empty")
	}
	if t.Title == "" {
		t.Title = t.Path
	}

	now := time.Now().Unix()
	err := dbutil.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		if t.Artist != "" {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO artists (name) VALUES (?)`, t.Artist); err != nil {
				return err
			}
		}
		if t.CoverPath != "" {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO covers (path) VALUES (?)`, t.CoverPath); err != nil {
				return err
			}
		}
		if t.Album != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO albums (name, artist, cover_path) VALUES (?, ?, ?)
				ON CONFLICT(name) DO UPDATE SET cover_path = COALESCE(albums.cover_path, excluded.cover_path)
			`, t.Album, dbutil.StringOrNull(t.Artist), dbutil.StringOrNull(t.CoverPath)); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tracks (path, title, artist, album, track_number, disc_number, duration_ms, cover_path, added_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				title = excluded.title,
				artist = excluded.artist,
				album = excluded.album,
				track_number = excluded.track_number,
				disc_number = excluded.disc_number,
				duration_ms = excluded.duration_ms,
				cover_path = excluded.cover_path,
				updated_at = excluded.updated_at
		`, t.Path, t.Title, t.Artist, t.Album, t.TrackNumber, t.DiscNumber,
			t.Duration.Milliseconds(), dbutil.StringOrNull(t.CoverPath), now, now); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `SELECT id FROM tracks WHERE path = ?`, t.Path).Scan(&t.ID)
	})
	if err != nil {
		return Track{}, errmsg.Persistence(errmsg.OpLibraryAdd, err)
	}

	l.cache.Remove(t.ID)
	return t, nil
}

// TrackCount returns the number of tracks in the library.
func (l *Library) TrackCount(ctx context.Context) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&count)
	if err != nil {
		return 0, errmsg.Persistence(errmsg.OpLibraryLoad, err)
	}
	return count, nil
}
