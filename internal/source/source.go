// Package source names a selection of music and resolves it to tracks.
package source

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize/english"

	"github.com/llehouerou/sing/internal/errmsg"
)

// Source is one of Artists, Albums, Tracks or Playlists.
type Source interface {
	// Describe returns a short label such as "album" or "3 tracks".
	Describe() string
	isSource()
}

// Artists selects every track of the named artists.
type Artists struct{ Names []string }

// Albums selects every track of the named albums.
type Albums struct{ Names []string }

// Tracks selects tracks by ID, in the given order.
type Tracks struct{ IDs []int64 }

// Playlists selects the items of playlists, each in playlist order.
type Playlists struct{ IDs []int64 }

func (Artists) isSource() {}
func (Albums) isSource() {}
func (Tracks) isSource() {}
func (Playlists) isSource() {}

func (s Artists) Describe() string { return describe(len(s.Names), "artist") }
func (s Albums) Describe() string { return describe(len(s.Names), "album") }
func (s Tracks) Describe() string { return describe(len(s.IDs), "track") }
func (s Playlists) Describe() string { return describe(len(s.IDs), "playlist") }

func describe(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return english.Plural(n, noun, "")
}

func Artist(name string) Artists { return Artists{Names: []string{name}} }
func Album(name string) Albums { return Albums{Names: []string{name}} }
func Track(id int64) Tracks { return Tracks{IDs: []int64{id}} }
func Playlist(id int64) Playlists { return Playlists{IDs: []int64{id}} }

// Parse builds a source from a kind name and its arguments, as given on
// the command line. IDs are parsed for track and playlist sources.
func Parse(kind string, args []string) (Source, error) {
	if len(args) == 0 {
		return nil, errmsg.Validation(errmsg.OpSourceResolve, "no "+kind+" given")
	}
	switch kind {
	case "artist":
		return Artists{Names: args}, nil
	case "album":
		return Albums{Names: args}, nil
	case "track":
		ids, err := parseIDs(args)
		if err != nil {
			return nil, err
		}
		return Tracks{IDs: ids}, nil
	case "playlist":
		ids, err := parseIDs(args)
		if err != nil {
			return nil, err
		}
		return Playlists{IDs: ids}, nil
	default:
		return nil, errmsg.Validation(errmsg.OpSourceResolve, fmt.Sprintf("unknown source kind %q", kind))
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, errmsg.Validation(errmsg.OpSourceResolve, fmt.Sprintf("invalid id %q", a))
		}
		ids[i] = id
	}
	return ids, nil
}
