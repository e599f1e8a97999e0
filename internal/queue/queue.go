// Package queue holds the play queue: an ordered list of entries and a
// cursor on the entry being played.
//
// Queue is a value. Every operation returns a new Queue and leaves the
// receiver untouched, so snapshots can be shared freely.
package queue

import (
	"github.com/google/uuid"

	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/ordered"
)

// NoCurrent is the cursor value of a queue without a current entry.
const NoCurrent = -1

// Entry is one slot of the queue.
type Entry struct {
	Pos    int
	Token  uuid.UUID // changes whenever Pos changes
	Track  library.Track
	Manual bool // queued by the user, kept across source refreshes
}

func (e Entry) Position() int { return e.Pos }

// WithPosition moves the entry, giving it a new token if the position changed.
func (e Entry) WithPosition(pos int) Entry {
	if pos != e.Pos || e.Token == uuid.Nil {
		e.Token = uuid.New()
	}
	e.Pos = pos
	return e
}

func newEntries(tracks []library.Track, manual bool) []Entry {
	entries := make([]Entry, len(tracks))
	for i, t := range tracks {
		entries[i] = Entry{Pos: -1, Track: t, Manual: manual}
	}
	return entries
}

// Queue is the ordered entries plus the cursor. The zero value is not
// usable; start from New.
type Queue struct {
	entries []Entry
	current int
}

// New returns an empty queue.
func New() Queue {
	return Queue{current: NoCurrent}
}

// FromTracks builds a queue of fresh entries with the cursor at current,
// or NoCurrent if current is out of range.
func FromTracks(tracks []library.Track, current int) Queue {
	entries := ordered.Continue(0, newEntries(tracks, false)...)
	if current < 0 || current >= len(entries) {
		current = NoCurrent
	}
	return Queue{entries: entries, current: current}
}

// SetUpcomingFromSource keeps the entries before from, keeps the manually
// added entries from there on, and appends tracks after them. The cursor
// follows its entry; if that entry is dropped it moves to the previous
// surviving one.
func (q Queue) SetUpcomingFromSource(tracks []library.Track, from int) Queue {
	from = clamp(from, 0, len(q.entries))

	kept := make([]Entry, 0, len(q.entries)+len(tracks))
	kept = append(kept, q.entries[:from]...)
	var dropped []int
	for i := from; i < len(q.entries); i++ {
		if q.entries[i].Manual {
			kept = append(kept, q.entries[i])
			continue
		}
		dropped = append(dropped, i)
	}

	entries := ordered.Reindex(kept)
	entries = ordered.Append(entries, len(entries), newEntries(tracks, false)...)
	return Queue{entries: entries, current: cursorAfterRemoval(q.current, dropped)}
}

// SetCurrent inserts a fresh entry for track at index, clamped to the
// queue length, and makes it current. Entries at or after index shift one
// position later.
func (q Queue) SetCurrent(track library.Track, index int) Queue {
	index = clamp(index, 0, len(q.entries))
	entries := ordered.InsertAt(q.entries, index, newEntries([]library.Track{track}, false)...)
	return Queue{entries: entries, current: index}
}

// RemovePositions drops the entries at the given positions. Positions out
// of range are ignored. If the current entry is removed the cursor moves to
// the previous surviving entry, or NoCurrent if there is none.
func (q Queue) RemovePositions(positions ...int) Queue {
	drop := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(q.entries) {
			drop[p] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return q
	}

	dropped := make([]int, 0, len(drop))
	for i := range q.entries {
		if _, ok := drop[i]; ok {
			dropped = append(dropped, i)
		}
	}

	return Queue{
		entries: ordered.RemoveAt(q.entries, dropped...),
		current: cursorAfterRemoval(q.current, dropped),
	}
}

// Reconcile drops the entries whose track is not in tracks and refreshes
// the survivors with the given track data. It returns the new queue and
// its cursor, which is NoCurrent when the current entry and everything
// before it are gone.
func (q Queue) Reconcile(tracks []library.Track) (Queue, int) {
	byID := make(map[int64]library.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}

	kept, dropped := ordered.Filter(q.entries, func(e Entry) bool {
		_, ok := byID[e.Track.ID]
		return ok
	})
	for i := range kept {
		kept[i].Track = byID[kept[i].Track.ID]
	}

	current := ReconcileCursor(q.current, dropped)
	return Queue{entries: kept, current: current}, current
}

// ReconcileCursor moves a cursor after the entries at dropped were removed
// by a library change. It subtracts the number of dropped positions at or
// before the cursor, and one more if the cursor's own entry was dropped.
// The result is clamped to NoCurrent.
func ReconcileCursor(current int, dropped []int) int {
	shift := 0
	for _, d := range dropped {
		if d <= current {
			shift++
		}
		if d == current {
			shift++
		}
	}
	return max(current-shift, NoCurrent)
}

// cursorAfterRemoval keeps the cursor on its entry, or on the previous
// survivor if its entry was dropped.
func cursorAfterRemoval(current int, dropped []int) int {
	if current == NoCurrent {
		return NoCurrent
	}
	before := 0
	removed := false
	for _, d := range dropped {
		if d < current {
			before++
		}
		if d == current {
			removed = true
		}
	}
	if removed {
		return max(current-before-1, NoCurrent)
	}
	return current - before
}

// Enqueue adds manually queued tracks, right after the current entry when
// next is set and at the end otherwise. The cursor stays on its entry.
func (q Queue) Enqueue(tracks []library.Track, next bool) Queue {
	if len(tracks) == 0 {
		return q
	}
	items := newEntries(tracks, true)
	if next {
		return Queue{entries: ordered.InsertAt(q.entries, q.current+1, items...), current: q.current}
	}
	return Queue{entries: ordered.Append(q.entries, len(q.entries), items...), current: q.current}
}

// Advance moves the cursor to the next entry, wrapping to the first.
func (q Queue) Advance() Queue {
	if len(q.entries) == 0 {
		return q
	}
	if q.current >= len(q.entries)-1 {
		return Queue{entries: q.entries, current: 0}
	}
	return Queue{entries: q.entries, current: q.current + 1}
}

// Retreat moves the cursor to the previous entry, wrapping to the last.
func (q Queue) Retreat() Queue {
	if len(q.entries) == 0 {
		return q
	}
	if q.current <= 0 {
		return Queue{entries: q.entries, current: len(q.entries) - 1}
	}
	return Queue{entries: q.entries, current: q.current - 1}
}

// JumpTo makes the entry at index current. It reports false and leaves the
// queue unchanged if index is out of range.
func (q Queue) JumpTo(index int) (Queue, bool) {
	if index < 0 || index >= len(q.entries) {
		return q, false
	}
	return Queue{entries: q.entries, current: index}, true
}

// Reset drops every entry after index.
func (q Queue) Reset(index int) Queue {
	index = clamp(index, NoCurrent, len(q.entries)-1)
	entries := q.entries[:index+1:index+1]
	return Queue{entries: entries, current: min(q.current, index)}
}

// Clear empties the queue.
func (q Queue) Clear() Queue {
	return New()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
