// Package ordered implements operations on position-indexed sequences.
//
// Every function returns a new slice whose positions run densely from 0,
// whatever the positions of the input were. Inputs are never modified.
package ordered

import "sort"

// Positioned is an element that carries its own slot in a sequence.
type Positioned[T any] interface {
	Position() int
	WithPosition(pos int) T
}

// Reindex returns a copy of seq with positions set to each element's offset.
func Reindex[T Positioned[T]](seq []T) []T {
	result := make([]T, len(seq))
	for i, item := range seq {
		result[i] = item.WithPosition(i)
	}
	return result
}

// InsertAt splices items into seq at index, clamped to [0, len(seq)].
func InsertAt[T Positioned[T]](seq []T, index int, items ...T) []T {
	index = clamp(index, 0, len(seq))

	result := make([]T, 0, len(seq)+len(items))
	result = append(result, seq[:index]...)
	result = append(result, items...)
	result = append(result, seq[index:]...)
	return Reindex(result)
}

// Append adds items after seq. When seq is dense and start equals len(seq)
// the existing elements are copied as-is and the new ones numbered from
// start; otherwise the whole result is reindexed.
func Append[T Positioned[T]](seq []T, start int, items ...T) []T {
	if start != len(seq) || !Dense(seq) {
		return InsertAt(seq, len(seq), items...)
	}

	result := make([]T, len(seq), len(seq)+len(items))
	copy(result, seq)
	return append(result, Continue(start, items...)...)
}

// Continue numbers items start, start+1, ... without looking at the sequence
// they will follow. It is the append path for callers that only know the
// current length of a dense sequence.
func Continue[T Positioned[T]](start int, items ...T) []T {
	result := make([]T, len(items))
	for i, item := range items {
		result[i] = item.WithPosition(start + i)
	}
	return result
}

// RemoveAt drops the elements at the given offsets. Offsets out of range
// are ignored.
func RemoveAt[T Positioned[T]](seq []T, indices ...int) []T {
	if len(indices) == 0 {
		return Reindex(seq)
	}

	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		drop[i] = struct{}{}
	}

	result := make([]T, 0, len(seq))
	for i, item := range seq {
		if _, ok := drop[i]; ok {
			continue
		}
		result = append(result, item)
	}
	return Reindex(result)
}

// Filter keeps the elements for which keep returns true and reports the
// offsets of the dropped ones in ascending order.
func Filter[T Positioned[T]](seq []T, keep func(T) bool) ([]T, []int) {
	kept := make([]T, 0, len(seq))
	var dropped []int
	for i, item := range seq {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, i)
	}
	return Reindex(kept), dropped
}

// Move shifts the elements at the given offsets by delta as a block.
// It returns the new sequence, the new offsets of the moved elements (in the
// order they were given) and whether anything moved. A move that would push
// any element out of bounds is refused and seq is returned reindexed.
func Move[T Positioned[T]](seq []T, positions []int, delta int) ([]T, []int, bool) {
	calc := newMoveCalculator(positions, len(seq), delta)
	if !calc.canMove() {
		return Reindex(seq), positions, false
	}

	selected := make(map[int]struct{}, len(calc.sorted))
	for _, p := range calc.sorted {
		selected[p] = struct{}{}
	}

	// Place the moved elements first, then fill the remaining slots in order.
	result := make([]T, len(seq))
	filled := make([]bool, len(seq))
	for _, p := range calc.sorted {
		result[p+delta] = seq[p]
		filled[p+delta] = true
	}
	slot := 0
	for i, item := range seq {
		if _, ok := selected[i]; ok {
			continue
		}
		for filled[slot] {
			slot++
		}
		result[slot] = item
		filled[slot] = true
	}

	return Reindex(result), calc.newPositions(positions), true
}

// Dense reports whether positions of seq run exactly 0..n-1 in order.
func Dense[T Positioned[T]](seq []T) bool {
	for i, item := range seq {
		if item.Position() != i {
			return false
		}
	}
	return true
}

// moveCalculator validates block moves, kept apart from any storage concern.
type moveCalculator struct {
	sorted []int // deduplicated sorted positions to move
	count  int   // total element count
	delta  int   // movement amount (negative = up, positive = down)
}

func newMoveCalculator(positions []int, count, delta int) *moveCalculator {
	seen := make(map[int]struct{}, len(positions))
	sorted := make([]int, 0, len(positions))
	for _, p := range positions {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		sorted = append(sorted, p)
	}
	sort.Ints(sorted)
	return &moveCalculator{sorted: sorted, count: count, delta: delta}
}

// canMove returns false if there is nothing to move, delta is zero,
// or the move would go out of bounds.
func (c *moveCalculator) canMove() bool {
	if len(c.sorted) == 0 || c.delta == 0 {
		return false
	}
	if c.sorted[0] < 0 || c.sorted[len(c.sorted)-1] >= c.count {
		return false
	}
	if c.delta < 0 {
		return c.sorted[0]+c.delta >= 0
	}
	return c.sorted[len(c.sorted)-1]+c.delta < c.count
}

func (c *moveCalculator) newPositions(original []int) []int {
	result := make([]int, len(original))
	for i, pos := range original {
		result[i] = pos + c.delta
	}
	return result
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
