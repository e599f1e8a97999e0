package queue

// State classifies a queue by its cursor.
type State int

const (
	StateEmpty State = iota
	StateNoCurrent
	StateHasCurrent
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateNoCurrent:
		return "no current"
	case StateHasCurrent:
		return "has current"
	default:
		return "unknown"
	}
}

// State returns the current state of the queue.
func (q Queue) State() State {
	switch {
	case len(q.entries) == 0:
		return StateEmpty
	case q.current == NoCurrent:
		return StateNoCurrent
	default:
		return StateHasCurrent
	}
}

// Len returns the number of entries.
func (q Queue) Len() int {
	return len(q.entries)
}

// CurrentIndex returns the cursor, NoCurrent if there is none.
func (q Queue) CurrentIndex() int {
	return q.current
}

// Current returns the entry under the cursor.
func (q Queue) Current() (Entry, bool) {
	if q.current < 0 || q.current >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.current], true
}

// Entries returns a copy of every entry in order.
func (q Queue) Entries() []Entry {
	return clone(q.entries)
}

// Played returns the entries before the cursor.
func (q Queue) Played() []Entry {
	if q.current <= 0 {
		return nil
	}
	return clone(q.entries[:q.current])
}

// Upcoming returns the entries after the cursor. Without a current entry
// the whole queue is upcoming.
func (q Queue) Upcoming() []Entry {
	return clone(q.entries[q.current+1:])
}

func clone(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}
