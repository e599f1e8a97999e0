package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/search"
)

func newLibraryCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Maintain the track library",
	}
	cmd.AddCommand(
		newLibraryPruneCommand(e),
		newLibraryNamesCommand(e, "artists", "List the artists", (*library.Library).Artists),
		newLibraryNamesCommand(e, "albums", "List the albums", (*library.Library).Albums),
	)
	return cmd
}

func newLibraryNamesCommand(
	e *env,
	use, short string,
	load func(*library.Library, context.Context) ([]string, error),
) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := load(e.app.Library, cmd.Context())
			if err != nil {
				return err
			}
			if query != "" {
				names = search.NewMatcher(names, func(s string) string { return s }).Filter(query)
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only names matching these words, best first")
	return cmd
}

func newLibraryPruneCommand(e *env) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove tracks whose file is gone or outside the music folders",
		Long: `Remove the tracks whose file no longer exists, or that lie outside every
configured music folder. Playlists are compacted and their covers
re-derived afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tracks, err := e.app.Library.AllTracks(ctx)
			if err != nil {
				return err
			}
			keep, gone := partitionTracks(tracks, e.cfg.MusicFolders, fileExists)

			out := cmd.OutOrStdout()
			if dryRun {
				for _, t := range gone {
					fmt.Fprintf(out, "%d\t%s\n", t.ID, t.Path)
				}
				fmt.Fprintf(out, "would remove %s\n", english.Plural(len(gone), "track", ""))
				return nil
			}

			res, err := e.app.SyncLibrary(ctx, keep)
			if err != nil {
				return err
			}
			left, err := e.app.Library.TrackCount(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "removed %s, %s, %s; compacted %s; %s left\n",
				english.Plural(int(res.Pruned.Tracks), "track", ""),
				english.Plural(int(res.Pruned.Albums), "album", ""),
				english.Plural(int(res.Pruned.Artists), "artist", ""),
				english.Plural(len(res.Compacted), "playlist", ""),
				english.Plural(left, "track", ""))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list the tracks that would be removed")
	return cmd
}

// partitionTracks returns the paths to keep and the tracks to drop. With no
// folders every existing file is kept.
func partitionTracks(tracks []library.Track, folders []string, exists func(string) bool) ([]string, []library.Track) {
	var keep []string
	var gone []library.Track
	for _, t := range tracks {
		if inFolders(t.Path, folders) && exists(t.Path) {
			keep = append(keep, t.Path)
			continue
		}
		gone = append(gone, t)
	}
	return keep, gone
}

func inFolders(path string, folders []string) bool {
	if len(folders) == 0 {
		return true
	}
	for _, f := range folders {
		rel, err := filepath.Rel(f, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
