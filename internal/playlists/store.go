package playlists

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/sing/internal/covers"
	dbutil "github.com/llehouerou/sing/internal/db"
	"github.com/llehouerou/sing/internal/errmsg"
)

// SQLStore is the sqlite Store. It also serves covers.Store.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store on an open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

var _ covers.Store = (*SQLStore)(nil)

func (s *SQLStore) Items(ctx context.Context, playlistID int64) ([]Item, error) {
	items, err := queryItems(ctx, s.db, playlistID)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistLoad, err)
	}
	return items, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryItems(ctx context.Context, q queryer, playlistID int64) ([]Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, playlist_id, track_id, position
		FROM playlist_items
		WHERE playlist_id = ?
		ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PlaylistID, &it.TrackID, &it.Pos); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLStore) CountItems(ctx context.Context, playlistID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM playlist_items WHERE playlist_id = ?
	`, playlistID).Scan(&count)
	if err != nil {
		return 0, errmsg.Persistence(errmsg.OpPlaylistLoad, err)
	}
	return count, nil
}

func (s *SQLStore) InsertItems(ctx context.Context, playlistID int64, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requirePlaylist(ctx, tx, playlistID, errmsg.OpPlaylistAddTrack); err != nil {
			return err
		}
		return insertItems(ctx, tx, playlistID, items)
	})
	return errmsg.Persistence(errmsg.OpPlaylistAddTrack, err)
}

func (s *SQLStore) ReplaceItems(ctx context.Context, playlistID int64, items []Item) error {
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requirePlaylist(ctx, tx, playlistID, errmsg.OpPlaylistInsert); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_items WHERE playlist_id = ?`, playlistID); err != nil {
			return err
		}
		return insertItems(ctx, tx, playlistID, items)
	})
	return errmsg.Persistence(errmsg.OpPlaylistInsert, err)
}

func insertItems(ctx context.Context, tx *sql.Tx, playlistID int64, items []Item) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_items (playlist_id, track_id, position)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, playlistID, it.TrackID, it.Pos); err != nil {
			return err
		}
	}
	return nil
}

func requirePlaylist(ctx context.Context, tx *sql.Tx, playlistID int64, op errmsg.Op) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, playlistID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errmsg.NotFound(op, "playlist")
	}
	return err
}

func (s *SQLStore) DeleteItems(ctx context.Context, playlistID int64, trackIDs []int64) error {
	if len(trackIDs) == 0 {
		return nil
	}
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		args := append([]any{playlistID}, dbutil.Args(trackIDs)...)
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_items
			WHERE playlist_id = ? AND track_id IN (`+dbutil.Placeholders(len(trackIDs))+`)
		`, args...); err != nil {
			return err
		}
		return renumber(ctx, tx, playlistID)
	})
	return errmsg.Persistence(errmsg.OpPlaylistRemove, err)
}

func (s *SQLStore) Compact(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// With unique positions, MIN = 0 and MAX = COUNT - 1 means dense.
		rows, err := tx.QueryContext(ctx, `
			SELECT playlist_id FROM playlist_items
			GROUP BY playlist_id
			HAVING MIN(position) != 0 OR MAX(position) != COUNT(*) - 1
		`)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range ids {
			if err := renumber(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistCompact, err)
	}
	return ids, nil
}

// renumber makes the positions of one playlist dense again, keeping their
// order. Rows are parked at negative positions first so no intermediate
// state violates UNIQUE(playlist_id, position).
func renumber(ctx context.Context, tx *sql.Tx, playlistID int64) error {
	items, err := queryItems(ctx, tx, playlistID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE playlist_items SET position = -position - 1 WHERE playlist_id = ?
	`, playlistID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE playlist_items SET position = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, i, it.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM playlists`)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
	}
	return names, nil
}

func (s *SQLStore) Create(ctx context.Context, name string) (int64, error) {
	id, err := insertPlaylist(ctx, s.db, name)
	if err != nil {
		return 0, errmsg.Persistence(errmsg.OpPlaylistCreate, err)
	}
	return id, nil
}

func (s *SQLStore) CreateWithItems(ctx context.Context, name string, items []Item, derive func(trackCovers []string) []string) (int64, error) {
	var id int64
	err := dbutil.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if id, err = insertPlaylist(ctx, tx, name); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, id, items); err != nil {
			return err
		}
		trackCovers, err := queryTrackCovers(ctx, tx, id)
		if err != nil {
			return err
		}
		paths := derive(trackCovers)
		if len(paths) == 0 {
			return nil
		}
		return replaceCovers(ctx, tx, id, paths)
	})
	if err != nil {
		return 0, errmsg.Persistence(errmsg.OpPlaylistCreate, err)
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPlaylist(ctx context.Context, e execer, name string) (int64, error) {
	now := time.Now().Unix()
	result, err := e.ExecContext(ctx, `
		INSERT INTO playlists (name, created_at, last_used_at)
		VALUES (?, ?, ?)
	`, name, now, now)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const playlistColumns = `
	p.id, p.name, p.covers_manual, p.created_at, p.last_used_at,
	(SELECT COUNT(*) FROM playlist_items pi WHERE pi.playlist_id = p.id)
`

func scanPlaylist(row interface{ Scan(...any) error }) (Playlist, error) {
	var p Playlist
	var manual int
	var created, used int64
	if err := row.Scan(&p.ID, &p.Name, &manual, &created, &used, &p.ItemCount); err != nil {
		return Playlist{}, err
	}
	p.CoversManual = manual != 0
	p.CreatedAt = time.Unix(created, 0)
	p.LastUsedAt = time.Unix(used, 0)
	return p, nil
}

func (s *SQLStore) Get(ctx context.Context, playlistID int64) (Playlist, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = ?`, playlistID)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, errmsg.NotFound(errmsg.OpPlaylistLoad, "playlist")
	}
	if err != nil {
		return Playlist{}, errmsg.Persistence(errmsg.OpPlaylistLoad, err)
	}

	byPlaylist, err := s.coverPaths(ctx, []int64{playlistID})
	if err != nil {
		return Playlist{}, errmsg.Persistence(errmsg.OpPlaylistLoad, err)
	}
	p.Covers = byPlaylist[playlistID]
	return p, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+` FROM playlists p
		ORDER BY p.name COLLATE NOCASE, p.id
	`)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
	}

	var list []Playlist
	var ids []int64
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
		}
		list = append(list, p)
		ids = append(ids, p.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
	}

	byPlaylist, err := s.coverPaths(ctx, ids)
	if err != nil {
		return nil, errmsg.Persistence(errmsg.OpPlaylistList, err)
	}
	for i := range list {
		list[i].Covers = byPlaylist[list[i].ID]
	}
	return list, nil
}

func (s *SQLStore) coverPaths(ctx context.Context, playlistIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT playlist_id, cover_path FROM playlist_covers
		WHERE playlist_id IN (`+dbutil.Placeholders(len(playlistIDs))+`)
		ORDER BY playlist_id, position
	`, dbutil.Args(playlistIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		result[id] = append(result[id], path)
	}
	return result, rows.Err()
}

func (s *SQLStore) Rename(ctx context.Context, playlistID int64, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE playlists SET name = ? WHERE id = ?`, name, playlistID)
	return affectedOne(result, err, errmsg.OpPlaylistRename)
}

func (s *SQLStore) Delete(ctx context.Context, playlistID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, playlistID)
	return affectedOne(result, err, errmsg.OpPlaylistDelete)
}

// Touch records that a playlist was just used.
func (s *SQLStore) Touch(ctx context.Context, playlistID int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE playlists SET last_used_at = ? WHERE id = ?
	`, time.Now().Unix(), playlistID)
	return affectedOne(result, err, errmsg.OpPlaylistLoad)
}

func affectedOne(result sql.Result, err error, op errmsg.Op) error {
	if err != nil {
		return errmsg.Persistence(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errmsg.Persistence(op, err)
	}
	if n == 0 {
		return errmsg.NotFound(op, "playlist")
	}
	return nil
}
