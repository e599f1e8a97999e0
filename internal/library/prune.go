package library

import (
	"context"
	"database/sql"

	dbutil "github.com/llehouerou/sing/internal/db"
	"github.com/llehouerou/sing/internal/errmsg"
)

// PruneResult counts the rows removed by Prune.
type PruneResult struct {
	Tracks  int64
	Albums  int64
	Artists int64
	Covers  int64
}

// Prune deletes every track whose path is not in keep, then the albums and
// artists left without tracks and the covers nothing refers to anymore.
// Playlist items of deleted tracks are removed by cascade, which can leave
// gaps in playlist positions; callers compact playlists afterwards.
func (l *Library) Prune(ctx context.Context, keep []string) (PruneResult, error) {
	var res PruneResult
	err := dbutil.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_paths (path TEXT PRIMARY KEY)`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM keep_paths`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO keep_paths (path) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range keep {
			if _, err := stmt.ExecContext(ctx, p); err != nil {
				return err
			}
		}

		steps := []struct {
			count *int64
			query string
		}{
			{&res.Tracks, `DELETE FROM tracks WHERE path NOT IN (SELECT path FROM keep_paths)`},
			{&res.Albums, `DELETE FROM albums WHERE name NOT IN (SELECT album FROM tracks)`},
			{&res.Artists, `
				DELETE FROM artists
				WHERE name NOT IN (SELECT artist FROM tracks)
				AND name NOT IN (SELECT artist FROM albums WHERE artist IS NOT NULL)
			`},
			{&res.Covers, `
				DELETE FROM covers
				WHERE path NOT IN (SELECT cover_path FROM tracks WHERE cover_path IS NOT NULL)
				AND path NOT IN (SELECT cover_path FROM albums WHERE cover_path IS NOT NULL)
				AND path NOT IN (SELECT cover_path FROM playlist_covers)
			`},
		}
		for _, s := range steps {
			result, err := tx.ExecContext(ctx, s.query)
			if err != nil {
				return err
			}
			if *s.count, err = result.RowsAffected(); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM keep_paths`)
		return err
	})
	if err != nil {
		return PruneResult{}, errmsg.Persistence(errmsg.OpLibraryPrune, err)
	}

	l.cache.Purge()
	return res, nil
}
