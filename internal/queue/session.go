package queue

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	eventBufferSize    = 16
	defaultHistorySize = 50
)

// Change is sent to subscribers after every update of the session queue.
type Change struct {
	Op    string
	Queue Queue
}

// Subscription delivers queue changes. Changes are dropped when the
// buffer is full; Done is closed when the session closes.
type Subscription struct {
	Changes <-chan Change
	Done    <-chan struct{}

	changeCh chan Change
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		changeCh: make(chan Change, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Changes = s.changeCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) send(c Change) {
	select {
	case s.changeCh <- c:
	default:
	}
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// Session owns the play queue of the running process. It is the only
// writer: callers read snapshots and submit transformations.
type Session struct {
	mu      sync.Mutex
	queue   Queue
	history *History
	subs    []*Subscription
	closed  bool
	log     zerolog.Logger
}

// NewSession creates a session with an empty queue. A non-positive
// historySize uses the default.
func NewSession(log zerolog.Logger, historySize int) *Session {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	s := &Session{
		queue:   New(),
		history: NewHistory(historySize),
		log:     log,
	}
	s.history.Push(s.queue)
	return s
}

// Queue returns the current snapshot.
func (s *Session) Queue() Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue
}

// Update replaces the queue with fn applied to it, records the result for
// undo and notifies subscribers. It returns the new queue.
func (s *Session) Update(op string, fn func(Queue) Queue) Queue {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = fn(s.queue)
	s.history.Push(s.queue)
	s.notify(op)
	return s.queue
}

// Undo restores the previous queue. It reports false if there is none.
func (s *Session) Undo() bool {
	return s.restore("undo", s.history.Undo)
}

// Redo reapplies an undone queue. It reports false if there is none.
func (s *Session) Redo() bool {
	return s.restore("redo", s.history.Redo)
}

func (s *Session) restore(op string, step func() (Queue, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := step()
	if !ok {
		return false
	}
	s.queue = q
	s.notify(op)
	return true
}

// notify must be called with mu held.
func (s *Session) notify(op string) {
	s.log.Debug().
		Str("op", op).
		Int("len", s.queue.Len()).
		Int("current", s.queue.CurrentIndex()).
		Msg("queue changed")

	c := Change{Op: op, Queue: s.queue}
	for _, sub := range s.subs {
		sub.send(c)
	}
}

// Subscribe registers a new observer. On a closed session the returned
// subscription is already done.
func (s *Session) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Unsubscribe removes an observer and closes its Done channel.
func (s *Session) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// Close ends every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
}
