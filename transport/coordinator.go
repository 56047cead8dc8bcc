package transport

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shaunharker/subsample/oracle"
	"github.com/shaunharker/subsample/pardriver"
	"github.com/shaunharker/subsample/point"
)

// Coordinator implements the lifecycle of spec.md §4.5: prepare a job from
// the shared work_items queue (or a Timer job if the Subsampler is still
// running and has nothing pending), dispatch it, and feed the reply back
// into the Oracle and the ready queue. It runs entirely in-process; Run
// spawns `workers` concurrent prepare/dispatch/accept loops against a
// Transport, modeling "one outstanding job per worker at a time" (spec.md
// §4.5).
type Coordinator[T point.Point] struct {
	Oracle    *oracle.Oracle[T]
	WorkItems *pardriver.Queue[pardriver.WorkItem[T]]
	Ready     *pardriver.Queue[int]
	Pending   *pardriver.PendingCounter

	// Done is closed by the Subsampler's background task once the job is
	// complete. Prepare returns a terminal job only after Done is closed
	// and WorkItems has drained.
	Done <-chan struct{}
}

// Prepare consults WorkItems first; if empty it emits a Timer job unless
// Done has already fired and drained, in which case it signals terminal.
func (c *Coordinator[T]) Prepare() (job Job[T], terminal bool) {
	if wi, ok := c.WorkItems.Pop(); ok {
		return Job[T]{ID: uuid.New(), Timer: false, Slot: wi.Slot, P: wi.Pair.P, Q: wi.Pair.Q}, false
	}
	select {
	case <-c.Done:
		return Job[T]{}, true
	default:
		return Job[T]{ID: uuid.New(), Timer: true}, false
	}
}

// Accept folds a Reply back into shared state: Distance replies populate
// the Oracle (both orientations, per spec.md §4.2 Ordering) and, once
// every pair the slot's current suspension was waiting on has been
// answered, wake it by pushing it onto Ready. A single suspension can
// raise more than one missing pair, so Pending -- not a bare push per
// reply -- decides when the slot is actually ready, or the same slot
// would land on Ready once per reply and resume twice. Timer replies are
// discarded. A non-nil Err is returned verbatim -- the caller (Run)
// treats it as unrecoverable.
func (c *Coordinator[T]) Accept(r Reply[T]) error {
	if r.Timer {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	c.Oracle.Cache(r.P, r.Q, r.Dist)
	c.Oracle.Cache(r.Q, r.P, r.Dist)
	if c.Pending.Dec(r.Slot) {
		c.Ready.Push(r.Slot)
	}
	return nil
}

// Run drives prepare/dispatch/accept across `workers` concurrent
// goroutines against tr until Prepare signals terminal on every one of
// them and no more jobs are in flight. It returns the first worker error
// encountered (spec.md §7 kind 5: the coordinator aborts the job, there is
// no recovery policy).
func (c *Coordinator[T]) Run(ctx context.Context, tr Transport[T], workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				job, terminal := c.Prepare()
				if terminal {
					return nil
				}
				reply, err := tr.Dispatch(ctx, job)
				if err != nil {
					return err
				}
				if err := c.Accept(reply); err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
		})
	}
	return g.Wait()
}
