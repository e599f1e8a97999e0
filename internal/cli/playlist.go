package cli

import (
	"fmt"
	"iter"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/sing/internal/source"
)

const sourceHelp = `A source is a kind followed by its arguments:
  artist <name>...   tracks of the artists, by album and track number
  album <name>...    tracks of the albums, in track order
  track <id>...      the tracks, in the given order
  playlist <id>...   the playlists' tracks, in playlist order

Several sources are joined with "+", e.g. "album Kid A + track 12".
Their tracks follow each other in that order.`

const sourceSeparator = "+"

func newPlaylistCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
	}
	cmd.AddCommand(
		newPlaylistListCommand(e),
		newPlaylistCreateCommand(e),
		newPlaylistShowCommand(e),
		newPlaylistRenameCommand(e),
		newPlaylistDeleteCommand(e),
		newPlaylistAddCommand(e),
		newPlaylistRemoveCommand(e),
		newPlaylistMoveCommand(e),
		newPlaylistPinCommand(e),
		newPlaylistUnpinCommand(e),
	)
	return cmd
}

// parseSources reads the sources in args, separated by "+". Each starts
// with its kind.
func parseSources(args []string) ([]source.Source, error) {
	var srcs []source.Source
	for group := range splitArgs(args, sourceSeparator) {
		if len(group) == 0 {
			return nil, fmt.Errorf("missing source\n%s", sourceHelp)
		}
		src, err := source.Parse(group[0], group[1:])
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// splitArgs yields the runs of args between sep tokens. Empty args yield
// one empty run.
func splitArgs(args []string, sep string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		start := 0
		for i, a := range args {
			if a != sep {
				continue
			}
			if !yield(args[start:i]) {
				return
			}
			start = i + 1
		}
		yield(args[start:])
	}
}

// describeSources joins the labels of srcs, e.g. "album + 3 tracks".
func describeSources(srcs []source.Source) string {
	labels := make([]string, len(srcs))
	for i, src := range srcs {
		labels[i] = src.Describe()
	}
	return strings.Join(labels, " + ")
}

func newPlaylistListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlists by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pls, err := e.app.Playlists.List(cmd.Context())
			if err != nil {
				return err
			}
			return printPlaylists(cmd.OutOrStdout(), pls)
		},
	}
}

func newPlaylistCreateCommand(e *env) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create [<kind> <args>...]",
		Short: "Create a playlist, empty or filled from a source",
		Long:  "Create a playlist. Without --name a free name is generated.\n\n" + sourceHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			var srcs []source.Source
			if len(args) > 0 {
				var err error
				if srcs, err = parseSources(args); err != nil {
					return err
				}
			}
			p, err := e.app.CreatePlaylist(cmd.Context(), name, srcs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", p.ID, p.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "playlist name")
	return cmd
}

func newPlaylistShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a playlist and its tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := e.app.Playlists.Get(ctx, id)
			if err != nil {
				return err
			}
			tracks, err := e.app.Library.PlaylistTracks(ctx, []int64{id})
			if err != nil {
				return err
			}
			return printPlaylist(cmd.OutOrStdout(), p, tracks)
		},
	}
}

func newPlaylistRenameCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.app.Playlists.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
		},
	}
}

func newPlaylistDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.app.Playlists.Delete(cmd.Context(), id)
		},
	}
}

func newPlaylistAddCommand(e *env) *cobra.Command {
	var at int
	cmd := &cobra.Command{
		Use:   "add <id> <kind> <args>...",
		Short: "Add the tracks of a source to a playlist",
		Long:  "Add tracks at the end of a playlist, or before position --at.\n\n" + sourceHelp,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			srcs, err := parseSources(args[1:])
			if err != nil {
				return err
			}
			var insertAt *int
			if cmd.Flags().Changed("at") {
				insertAt = &at
			}
			items, err := e.app.AddToPlaylist(cmd.Context(), id, insertAt, srcs...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items\n", describeSources(srcs), len(items))
			return nil
		},
	}
	cmd.Flags().IntVar(&at, "at", 0, "insert before this position instead of appending")
	return cmd
}

func newPlaylistRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <kind> <args>...",
		Short: "Remove every item holding a track of a source",
		Long:  "Remove tracks from a playlist, at every position they appear.\n\n" + sourceHelp,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			srcs, err := parseSources(args[1:])
			if err != nil {
				return err
			}
			return e.app.RemoveFromPlaylist(cmd.Context(), id, srcs...)
		},
	}
}

func newPlaylistMoveCommand(e *env) *cobra.Command {
	var by int
	cmd := &cobra.Command{
		Use:   "move <id> <position>...",
		Short: "Move items of a playlist as a block",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			positions, err := parsePositions(args[1:])
			if err != nil {
				return err
			}
			moved, err := e.app.Playlists.MoveTracks(cmd.Context(), id, positions, by)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Trim(fmt.Sprint(moved), "[]"))
			return nil
		},
	}
	cmd.Flags().IntVar(&by, "by", 1, "positions to move, negative moves up")
	return cmd
}

func newPlaylistPinCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id> <cover>...",
		Short: "Pin up to four covers as the playlist thumbnails",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.app.Playlists.PinCovers(cmd.Context(), id, args[1:])
		},
	}
}

func newPlaylistUnpinCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "unpin <id>",
		Short: "Derive the playlist thumbnails from its tracks again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.app.Playlists.UnpinCovers(cmd.Context(), id)
		},
	}
}
