package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	CoversAsync = "async"
	CoversSync  = "sync"

	defaultPlaylistName = "Playlist"
	maxCovers           = 4
)

type Config struct {
	Database     string   `koanf:"database"`      // sqlite file, empty means XDG data dir
	MusicFolders []string `koanf:"music_folders"` // paths kept on library prune
	LogLevel     string   `koanf:"log_level"`     // zerolog level name (default: "info")

	Playlists     PlaylistsConfig     `koanf:"playlists"`
	Covers        CoversConfig        `koanf:"covers"`
	Notifications NotificationsConfig `koanf:"notifications"`
}

// PlaylistsConfig holds playlist settings.
type PlaylistsConfig struct {
	DefaultName string `koanf:"default_name"` // base for generated names (default: "Playlist")
}

// CoversConfig holds playlist thumbnail settings.
type CoversConfig struct {
	Mode string `koanf:"mode"` // "async" or "sync" (default: "async")
	Max  int    `koanf:"max"`  // thumbnails per playlist, 1-4 (default: 4)
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled *bool `koanf:"enabled"` // forward alerts to the desktop (default: true)
	Success bool  `koanf:"success"` // also show success notifications
}

// Load reads the config files in order of priority, extra last. A missing
// file is skipped.
func Load(extra string) (*Config, error) {
	k := koanf.New(".")

	paths := getConfigPaths()
	if extra != "" {
		paths = append(paths, expandPath(extra))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Database = expandPath(c.Database)
	for i, folder := range c.MusicFolders {
		c.MusicFolders[i] = expandPath(folder)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.Playlists.DefaultName = strings.TrimSpace(c.Playlists.DefaultName)
	if c.Playlists.DefaultName == "" {
		c.Playlists.DefaultName = defaultPlaylistName
	}

	c.Covers.Mode = strings.ToLower(strings.TrimSpace(c.Covers.Mode))
	if c.Covers.Mode != CoversSync {
		c.Covers.Mode = CoversAsync
	}
	if c.Covers.Max <= 0 || c.Covers.Max > maxCovers {
		c.Covers.Max = maxCovers
	}
}

// NotificationsEnabled returns whether desktop notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// SyncCovers returns whether covers are re-derived before a playlist
// mutation returns.
func (c *Config) SyncCovers() bool {
	return c.Covers.Mode == CoversSync
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/sing/config.toml
		filepath.Join(xdg.ConfigHome, "sing", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
