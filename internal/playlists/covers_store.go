package playlists

import (
	"context"
	"database/sql"
	"errors"

	"github.com/llehouerou/sing/internal/covers"
	dbutil "github.com/llehouerou/sing/internal/db"
	"github.com/llehouerou/sing/internal/errmsg"
)

func (s *SQLStore) Thumbnails(ctx context.Context, playlistID int64) (covers.Thumbnails, error) {
	var manual int
	err := s.db.QueryRowContext(ctx, `SELECT covers_manual FROM playlists WHERE id = ?`, playlistID).Scan(&manual)
	if errors.Is(err, sql.ErrNoRows) {
		return covers.Thumbnails{}, errmsg.NotFound(errmsg.OpCoverLoad, "playlist")
	}
	if err != nil {
		return covers.Thumbnails{}, errmsg.Persistence(errmsg.OpCoverLoad, err)
	}

	byPlaylist, err := s.coverPaths(ctx, []int64{playlistID})
	if err != nil {
		return covers.Thumbnails{}, errmsg.Persistence(errmsg.OpCoverLoad, err)
	}
	return covers.Thumbnails{Paths: byPlaylist[playlistID], Manual: manual != 0}, nil
}

func (s *SQLStore) TrackCovers(ctx context.Context, playlistID int64) ([]string, error) {
	paths, err := queryTrackCovers(ctx, s.db, playlistID)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpCoverLoad, err)
	}
	return paths, nil
}

func queryTrackCovers(ctx context.Context, q queryer, playlistID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT COALESCE(t.cover_path, '')
		FROM playlist_items pi
		JOIN tracks t ON t.id = pi.track_id
		WHERE pi.playlist_id = ?
		ORDER BY pi.position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *SQLStore) UpdateCovers(ctx context.Context, playlistID int64, paths []string) error {
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return replaceCovers(ctx, tx, playlistID, paths)
	})
	return errmsg.Persistence(errmsg.OpCoverUpdate, err)
}

func (s *SQLStore) SetManualCovers(ctx context.Context, playlistID int64, paths []string, manual bool) error {
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		flag := 0
		if manual {
			flag = 1
		}
		result, err := tx.ExecContext(ctx, `UPDATE playlists SET covers_manual = ? WHERE id = ?`, flag, playlistID)
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errmsg.NotFound(errmsg.OpCoverPin, "playlist")
		}
		if !manual {
			return nil
		}
		return replaceCovers(ctx, tx, playlistID, paths)
	})
	return errmsg.Persistence(errmsg.OpCoverPin, err)
}

func replaceCovers(ctx context.Context, tx *sql.Tx, playlistID int64, paths []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_covers WHERE playlist_id = ?`, playlistID); err != nil {
		return err
	}
	for i, p := range paths {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO covers (path) VALUES (?)`, p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_covers (playlist_id, position, cover_path) VALUES (?, ?, ?)
		`, playlistID, i, p); err != nil {
			return err
		}
	}
	return nil
}
