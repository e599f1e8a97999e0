// Package errmsg provides typed errors and consistent formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryLoad  Op = "load library"
	OpLibraryAdd   Op = "add track to library"
	OpLibraryPrune Op = "prune library"
	OpLibrarySync  Op = "update the library"

	// Source operations
	OpSourceResolve Op = "get tracks from source"

	// Playlist operations
	OpPlaylistLoad     Op = "load playlist"
	OpPlaylistList     Op = "load playlists"
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add tracks to playlist"
	OpPlaylistInsert   Op = "insert tracks into playlist"
	OpPlaylistRemove   Op = "remove tracks from playlist"
	OpPlaylistMove     Op = "move playlist items"
	OpPlaylistCompact  Op = "reorder playlist items"

	// Cover operations
	OpCoverLoad   Op = "load playlist covers"
	OpCoverUpdate Op = "update playlist covers"
	OpCoverPin    Op = "pin playlist covers"

	// Queue operations
	OpQueueJump Op = "jump in queue"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// Message formats err for the user. An *Error is shown with its operation
// and cause, anything else as is.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return Format(e.Op, e.Err)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Label returns the short message shown to the user for a failed operation.
// The underlying cause is left out.
func Label(op Op) string {
	return fmt.Sprintf("Failed to %s", op)
}
