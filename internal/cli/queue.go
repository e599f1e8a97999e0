package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/sing/internal/queue"
	"github.com/llehouerou/sing/internal/source"
)

func newQueueCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Work with an in-memory play queue",
	}
	cmd.AddCommand(newQueuePreviewCommand(e))
	return cmd
}

type previewOptions struct {
	from    int
	enqueue []int64
	next    bool
	remove  []int
	jump    int
	advance int
	retreat int
	cut     int
	clear   bool
	undo    int
	redo    int
	trace   bool
}

func newQueuePreviewCommand(e *env) *cobra.Command {
	var opts previewOptions
	cmd := &cobra.Command{
		Use:   "preview <kind> <args>... [+ <kind> <args>...]",
		Short: "Play sources into an empty queue and print the result",
		Long: `Play the sources from --from, then apply the other flags in this order:
--enqueue, --remove, --jump, --advance, --retreat, --cut, --clear, --undo,
--redo. Print the played, current and upcoming entries.

` + sourceHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := parseSources(args)
			if err != nil {
				return err
			}

			sub := e.app.Session.Subscribe()
			defer e.app.Session.Unsubscribe(sub)

			if err := runPreview(cmd, e, srcs, opts); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printQueue(out, e.app.Session.Queue()); err != nil {
				return err
			}
			if opts.trace {
				printChanges(out, drainChanges(sub))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.from, "from", 0, "index of the first track to play")
	f.Int64SliceVar(&opts.enqueue, "enqueue", nil, "track IDs to queue by hand")
	f.BoolVar(&opts.next, "next", false, "queue right after the current entry")
	f.IntSliceVar(&opts.remove, "remove", nil, "queue positions to remove")
	f.IntVar(&opts.jump, "jump", 0, "make the entry at this position current")
	f.IntVar(&opts.advance, "advance", 0, "move to the next entry this many times")
	f.IntVar(&opts.retreat, "retreat", 0, "move to the previous entry this many times")
	f.IntVar(&opts.cut, "cut", 0, "drop every entry after this position")
	f.BoolVar(&opts.clear, "clear", false, "empty the queue")
	f.IntVar(&opts.undo, "undo", 0, "undo this many queue changes")
	f.IntVar(&opts.redo, "redo", 0, "redo this many undone changes")
	f.BoolVar(&opts.trace, "trace", false, "list the queue changes after the queue")
	return cmd
}

func runPreview(cmd *cobra.Command, e *env, srcs []source.Source, opts previewOptions) error {
	ctx := cmd.Context()
	if _, err := e.app.PlaySource(ctx, opts.from, srcs...); err != nil {
		return err
	}
	if len(opts.enqueue) > 0 {
		if _, err := e.app.EnqueueSource(ctx, opts.next, source.Tracks{IDs: opts.enqueue}); err != nil {
			return err
		}
	}
	if len(opts.remove) > 0 {
		e.app.RemoveFromQueue(opts.remove...)
	}
	if cmd.Flags().Changed("jump") {
		if _, err := e.app.JumpQueue(opts.jump); err != nil {
			return err
		}
	}
	for range opts.advance {
		e.app.AdvanceQueue()
	}
	for range opts.retreat {
		e.app.RetreatQueue()
	}
	if cmd.Flags().Changed("cut") {
		e.app.ResetQueue(opts.cut)
	}
	if opts.clear {
		e.app.ClearQueue()
	}
	for range opts.undo {
		if !e.app.UndoQueue() {
			return errors.New("nothing to undo")
		}
	}
	for range opts.redo {
		if !e.app.RedoQueue() {
			return errors.New("nothing to redo")
		}
	}
	return nil
}

// drainChanges returns the changes already delivered to sub.
func drainChanges(sub *queue.Subscription) []queue.Change {
	var changes []queue.Change
	for {
		select {
		case c := <-sub.Changes:
			changes = append(changes, c)
		default:
			return changes
		}
	}
}

func printChanges(w io.Writer, changes []queue.Change) {
	ops := make([]string, len(changes))
	for i, c := range changes {
		ops[i] = c.Op
	}
	fmt.Fprintf(w, "changes: %s\n", strings.Join(ops, ", "))
}
