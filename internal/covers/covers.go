// Package covers derives the thumbnail set shown for a playlist.
package covers

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/report"
)

// Max is the largest number of thumbnails a playlist carries.
const Max = 4

// Thumbnails is the stored cover set of a playlist.
type Thumbnails struct {
	Paths  []string
	Manual bool // pinned by the user, never derived
}

// Store reads and writes playlist covers.
type Store interface {
	Thumbnails(ctx context.Context, playlistID int64) (Thumbnails, error)
	// TrackCovers returns the cover path of each item in position order,
	// with "" for tracks without a cover.
	TrackCovers(ctx context.Context, playlistID int64) ([]string, error)
	UpdateCovers(ctx context.Context, playlistID int64, paths []string) error
}

// Derive returns the thumbnails for a playlist. A manual set is returned
// as-is. Otherwise the first limit distinct non-empty track covers are
// taken in track order.
func Derive(th Thumbnails, trackCovers []string, limit int) []string {
	if th.Manual && len(th.Paths) > 0 {
		return th.Paths
	}
	if limit <= 0 || limit > Max {
		limit = Max
	}

	seen := make(map[string]struct{}, limit)
	result := make([]string, 0, limit)
	for _, c := range trackCovers {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
		if len(result) == limit {
			break
		}
	}
	return result
}

// UpdateIfChanged writes next only if it differs from prev, comparing in
// order. It reports whether a write was issued.
func UpdateIfChanged(ctx context.Context, store Store, playlistID int64, prev, next []string) (bool, error) {
	if slices.Equal(prev, next) {
		return false, nil
	}
	if err := store.UpdateCovers(ctx, playlistID, next); err != nil {
		return false, errmsg.Persistence(errmsg.OpCoverUpdate, err)
	}
	return true, nil
}

// Deriver recomputes stored thumbnails after a playlist changed.
// Concurrent refreshes of the same playlist share one computation, and
// computations of one playlist never overlap. A refresh requested after
// the shared computation started runs again so it sees its own change.
type Deriver struct {
	store Store
	rep   *report.Reporter
	limit int
	group singleflight.Group

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewDeriver creates a deriver. A limit outside 1..Max falls back to Max.
func NewDeriver(store Store, rep *report.Reporter, limit int) *Deriver {
	if limit <= 0 || limit > Max {
		limit = Max
	}
	return &Deriver{store: store, rep: rep, limit: limit, generations: make(map[int64]uint64)}
}

type refreshResult struct {
	changed    bool
	generation uint64
}

// Refresh re-derives the covers of one playlist. When the stored set
// changed, a forwarded "playlist updated" event is emitted. Failures are
// reported and returned.
func (d *Deriver) Refresh(ctx context.Context, playlistID int64) (bool, error) {
	want := d.bump(playlistID)
	key := strconv.FormatInt(playlistID, 10)

	changed := false
	for {
		v, err, _ := d.group.Do(key, func() (any, error) {
			gen := d.generation(playlistID)
			c, err := d.refresh(ctx, playlistID)
			return refreshResult{changed: c, generation: gen}, err
		})
		if err != nil {
			d.rep.Failure(errmsg.OpCoverUpdate, err)
			return false, err
		}
		res := v.(refreshResult)
		changed = changed || res.changed
		if res.generation >= want {
			break
		}
	}

	if changed {
		d.rep.Changed(report.EventPlaylistUpdated, playlistID)
	}
	return changed, nil
}

func (d *Deriver) bump(playlistID int64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generations[playlistID]++
	return d.generations[playlistID]
}

func (d *Deriver) generation(playlistID int64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generations[playlistID]
}

func (d *Deriver) refresh(ctx context.Context, playlistID int64) (bool, error) {
	th, err := d.store.Thumbnails(ctx, playlistID)
	if err != nil {
		return false, errmsg.Persistence(errmsg.OpCoverLoad, err)
	}
	if th.Manual {
		return false, nil
	}

	trackCovers, err := d.store.TrackCovers(ctx, playlistID)
	if err != nil {
		return false, errmsg.Persistence(errmsg.OpCoverLoad, err)
	}

	return UpdateIfChanged(ctx, d.store, playlistID, th.Paths, Derive(th, trackCovers, d.limit))
}
