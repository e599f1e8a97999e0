package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory_SchemaApplied(t *testing.T) {
	m, err := OpenMemory()
	require.NoError(t, err)
	defer m.Close()

	for _, table := range []string{"artists", "albums", "covers", "tracks", "playlists", "playlist_items", "playlist_covers"} {
		var name string
		err := m.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	var version int
	require.NoError(t, m.DB().QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpenMemory_ForeignKeysEnabled(t *testing.T) {
	m, err := OpenMemory()
	require.NoError(t, err)
	defer m.Close()

	var enabled int
	require.NoError(t, m.DB().QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = m.DB().Exec(`INSERT INTO playlist_items (playlist_id, track_id, position) VALUES (99, 99, 0)`)
	assert.Error(t, err, "items referencing missing rows must be rejected")
}

func TestOpen_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sing.db")

	m, err := Open(path)
	require.NoError(t, err)
	_, err = m.DB().Exec(`INSERT INTO playlists (name, created_at, last_used_at) VALUES ('Mix', 1, 1)`)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	// Schema init is idempotent and data survives.
	m, err = Open(path)
	require.NoError(t, err)
	defer m.Close()

	var name string
	require.NoError(t, m.DB().QueryRow(`SELECT name FROM playlists`).Scan(&name))
	assert.Equal(t, "Mix", name)
}
