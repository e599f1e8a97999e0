package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/playlists"
	"github.com/llehouerou/sing/internal/queue"
)

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

var cellStyle = lipgloss.NewStyle().PaddingRight(2)

// newTable returns a borderless table with columns separated by spaces.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers(headers...)
}

func writeTable(w io.Writer, t *table.Table) error {
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printTracks(w io.Writer, tracks []library.Track) error {
	t := newTable("ID", "TITLE", "ARTIST", "ALBUM", "TIME")
	for _, tr := range tracks {
		t.Row(strconv.FormatInt(tr.ID, 10), tr.Title, tr.Artist, tr.Album, formatDuration(tr.Duration))
	}
	return writeTable(w, t)
}

// printTrack prints the fields of one track, one per line.
func printTrack(w io.Writer, tr library.Track) error {
	t := newTable()
	t.Row("id", strconv.FormatInt(tr.ID, 10))
	t.Row("path", tr.Path)
	t.Row("title", tr.Title)
	t.Row("artist", tr.Artist)
	t.Row("album", tr.Album)
	t.Row("track", fmt.Sprintf("%d (disc %d)", tr.TrackNumber, tr.DiscNumber))
	t.Row("time", formatDuration(tr.Duration))
	if tr.CoverPath != "" {
		t.Row("cover", tr.CoverPath)
	}
	return writeTable(w, t)
}

func printPlaylists(w io.Writer, pls []playlists.Playlist) error {
	t := newTable("ID", "NAME", "TRACKS", "COVERS", "LAST USED")
	for _, p := range pls {
		t.Row(strconv.FormatInt(p.ID, 10), p.Name, humanize.Comma(int64(p.ItemCount)),
			strconv.Itoa(len(p.Covers)), humanize.Time(p.LastUsedAt))
	}
	return writeTable(w, t)
}

// printPlaylist prints a playlist header followed by its tracks in order.
// tracks holds one track per item.
func printPlaylist(w io.Writer, p playlists.Playlist, tracks []library.Track) error {
	fmt.Fprintf(w, "%s (%s, created %s)\n", p.Name,
		english.Plural(len(tracks), "track", ""), humanize.Time(p.CreatedAt))
	if len(p.Covers) > 0 {
		mode := "derived"
		if p.CoversManual {
			mode = "pinned"
		}
		fmt.Fprintf(w, "covers (%s): %s\n", mode, strings.Join(p.Covers, ", "))
	}

	t := newTable("POS", "ID", "TITLE", "ARTIST", "TIME")
	for i, tr := range tracks {
		t.Row(strconv.Itoa(i), strconv.FormatInt(tr.ID, 10), tr.Title, tr.Artist, formatDuration(tr.Duration))
	}
	return writeTable(w, t)
}

// printQueue prints the played entries marked "-", the current one marked
// ">" and the upcoming ones unmarked.
func printQueue(w io.Writer, q queue.Queue) error {
	fmt.Fprintf(w, "queue: %s, %s\n", english.Plural(q.Len(), "entry", "entries"), q.State())
	if q.Len() == 0 {
		return nil
	}

	t := newTable()
	addEntries := func(marker string, entries ...queue.Entry) {
		for _, e := range entries {
			manual := ""
			if e.Manual {
				manual = "queued"
			}
			t.Row(marker, strconv.Itoa(e.Pos), e.Track.Title, e.Track.Artist, manual)
		}
	}
	addEntries("-", q.Played()...)
	if cur, ok := q.Current(); ok {
		addEntries(">", cur)
	}
	addEntries(" ", q.Upcoming()...)
	return writeTable(w, t)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parsePositions(args []string) ([]int, error) {
	positions := make([]int, len(args))
	for i, a := range args {
		p, err := strconv.Atoi(a)
		if err != nil || p < 0 {
			return nil, fmt.Errorf("invalid position %q", a)
		}
		positions[i] = p
	}
	return positions, nil
}
