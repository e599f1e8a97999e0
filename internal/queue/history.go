package queue

// History keeps queue snapshots for undo/redo. Queues are values, so a
// snapshot is just the Queue itself.
type History struct {
	states  []Queue
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewHistory creates a history holding at most maxSize states.
func NewHistory(maxSize int) *History {
	if maxSize < 2 {
		maxSize = 2
	}
	return &History{
		states:  make([]Queue, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push records q as the newest state, dropping any redo states and the
// oldest states over the limit.
func (h *History) Push(q Queue) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, q)
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = append([]Queue(nil), h.states[excess:]...)
		h.current -= excess
	}
}

// Undo returns the previous state, or false if there is none.
func (h *History) Undo() (Queue, bool) {
	if !h.CanUndo() {
		return Queue{}, false
	}
	h.current--
	return h.states[h.current], true
}

// Redo returns the next state, or false if there is none.
func (h *History) Redo() (Queue, bool) {
	if !h.CanRedo() {
		return Queue{}, false
	}
	h.current++
	return h.states[h.current], true
}

// CanUndo reports whether there is an older queue to go back to.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo reports whether an undone queue can be reapplied.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}
