package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/search"
	"github.com/llehouerou/sing/internal/source"
)

func newTrackCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Add and list library tracks",
	}
	cmd.AddCommand(newTrackAddCommand(e), newTrackShowCommand(e), newTrackListCommand(e))
	return cmd
}

func newTrackAddCommand(e *env) *cobra.Command {
	var (
		t        library.Track
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Index a track, or update the one at the same path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t.Path = args[0]
			t.Duration = duration
			stored, err := e.app.AddTrack(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", stored.ID, stored.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&t.Title, "title", "", "track title (default: the path)")
	f.StringVar(&t.Artist, "artist", "", "artist name")
	f.StringVar(&t.Album, "album", "", "album name")
	f.IntVar(&t.TrackNumber, "number", 0, "track number within the disc")
	f.IntVar(&t.DiscNumber, "disc", 0, "disc number")
	f.DurationVar(&duration, "duration", 0, "track length, e.g. 3m25s")
	f.StringVar(&t.CoverPath, "cover", "", "cover image path")
	return cmd
}

func newTrackShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := e.app.Library.TrackByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printTrack(cmd.OutOrStdout(), t)
		},
	}
}

func newTrackListCommand(e *env) *cobra.Command {
	var artist, album, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks, optionally of one artist or album or matching a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				tracks []library.Track
				err    error
			)
			switch {
			case artist != "":
				tracks, err = source.Resolve(ctx, e.app.Library, source.Artist(artist))
			case album != "":
				tracks, err = source.Resolve(ctx, e.app.Library, source.Album(album))
			default:
				tracks, err = e.app.Library.AllTracks(ctx)
			}
			if err != nil {
				return err
			}
			if query != "" {
				tracks = search.NewMatcher(tracks, trackText).Filter(query)
			}
			return printTracks(cmd.OutOrStdout(), tracks)
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "only tracks of this artist")
	cmd.Flags().StringVar(&album, "album", "", "only tracks of this album")
	cmd.Flags().StringVarP(&query, "search", "s", "", "only tracks matching these words, best first")
	cmd.MarkFlagsMutuallyExclusive("artist", "album")
	return cmd
}

func trackText(t library.Track) string {
	return t.Title + " " + t.Artist + " " + t.Album
}
