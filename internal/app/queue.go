package app

import (
	"context"
	"fmt"

	"github.com/llehouerou/sing/internal/errmsg"
	"github.com/llehouerou/sing/internal/library"
	"github.com/llehouerou/sing/internal/queue"
	"github.com/llehouerou/sing/internal/report"
	"github.com/llehouerou/sing/internal/source"
)

// updateQueue applies fn through the session and signals the change.
func (a *App) updateQueue(op string, fn func(queue.Queue) queue.Queue) queue.Queue {
	q := a.Session.Update(op, fn)
	a.Reporter.Internal(report.EventQueueChanged, 0)
	return q
}

// PlaySource plays the track at index from of srcs right after the current
// entry. The rest of srcs becomes the upcoming entries, after the manually
// queued ones. An out of range from starts at the first track.
func (a *App) PlaySource(ctx context.Context, from int, srcs ...source.Source) (queue.Queue, error) {
	tracks, err := a.resolve(ctx, srcs...)
	if err != nil {
		return queue.Queue{}, err
	}
	if len(tracks) == 0 {
		return a.Session.Queue(), nil
	}
	if from < 0 || from >= len(tracks) {
		from = 0
	}
	for _, src := range srcs {
		if pl, ok := src.(source.Playlists); ok {
			a.Playlists.MarkUsed(ctx, pl.IDs...)
		}
	}

	return a.updateQueue("play", func(q queue.Queue) queue.Queue {
		return playFrom(q, tracks, from)
	}), nil
}

func playFrom(q queue.Queue, tracks []library.Track, from int) queue.Queue {
	index := q.CurrentIndex() + 1
	q = q.SetCurrent(tracks[from], index)
	return q.SetUpcomingFromSource(tracks[from+1:], index+1)
}

// EnqueueSource queues the tracks of srcs by hand, right after the current
// entry when next is set and at the end otherwise.
func (a *App) EnqueueSource(ctx context.Context, next bool, srcs ...source.Source) (queue.Queue, error) {
	tracks, err := a.resolve(ctx, srcs...)
	if err != nil {
		return queue.Queue{}, err
	}
	return a.updateQueue("enqueue", func(q queue.Queue) queue.Queue {
		return q.Enqueue(tracks, next)
	}), nil
}

// RemoveFromQueue drops the entries at positions.
func (a *App) RemoveFromQueue(positions ...int) queue.Queue {
	return a.updateQueue("remove", func(q queue.Queue) queue.Queue {
		return q.RemovePositions(positions...)
	})
}

// ResetQueue drops every entry after index.
func (a *App) ResetQueue(index int) queue.Queue {
	return a.updateQueue("reset", func(q queue.Queue) queue.Queue {
		return q.Reset(index)
	})
}

// ClearQueue empties the queue.
func (a *App) ClearQueue() queue.Queue {
	return a.updateQueue("clear", queue.Queue.Clear)
}

// AdvanceQueue moves to the next entry, wrapping to the first.
func (a *App) AdvanceQueue() queue.Queue {
	return a.updateQueue("advance", queue.Queue.Advance)
}

// RetreatQueue moves to the previous entry, wrapping to the last.
func (a *App) RetreatQueue() queue.Queue {
	return a.updateQueue("retreat", queue.Queue.Retreat)
}

// JumpQueue makes the entry at index current.
func (a *App) JumpQueue(index int) (queue.Queue, error) {
	q := a.Session.Queue()
	if _, ok := q.JumpTo(index); !ok {
		err := errmsg.Validation(errmsg.OpQueueJump, fmt.Sprintf("no entry at position %d of %d", index, q.Len()))
		a.Reporter.Failure(errmsg.OpQueueJump, err)
		return q, err
	}
	return a.updateQueue("jump", func(q queue.Queue) queue.Queue {
		jumped, _ := q.JumpTo(index)
		return jumped
	}), nil
}

// UndoQueue restores the queue before the last change. It reports false
// when there is nothing to undo.
func (a *App) UndoQueue() bool {
	if !a.Session.Undo() {
		return false
	}
	a.Reporter.Internal(report.EventQueueChanged, 0)
	return true
}

// RedoQueue reapplies the last undone change. It reports false when there
// is nothing to redo.
func (a *App) RedoQueue() bool {
	if !a.Session.Redo() {
		return false
	}
	a.Reporter.Internal(report.EventQueueChanged, 0)
	return true
}
