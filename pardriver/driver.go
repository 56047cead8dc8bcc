// Package pardriver implements the Parallel Driver (spec.md §2 Component
// C): it runs a batch of resumable operations, collects the distance
// pairs each one blocks on into a queue the Coordinator drains, and
// resumes operations once their pairs are cached. It knows nothing about
// the Metric Tree, the Oracle, or the transport -- only about the Functor
// and Suspended interfaces, so it can drive Insert, Aspiration, and
// DeltaClose alike (spec.md §4.3: "a resumable functor F, one of
// Aspiration, Insert, DeltaClose on a fixed Metric Tree").
package pardriver

import (
	"time"

	"github.com/shaunharker/subsample/point"
)

// maxBackoff and minBackoff bound the Driver's idle-poll exponential
// backoff (spec.md §4.3: "start at 1 µs, double up to 1 s").
const (
	minBackoff = time.Microsecond
	maxBackoff = time.Second
)

// Functor is a resumable operation the Driver can run across many
// arguments. Start begins the operation fresh for input i; Resume
// continues it from a previously stashed continuation. Both return either
// a completed result (done=true) or a continuation to stash (done=false,
// in which case the caller must not use the returned result).
type Functor[T point.Point, R any] interface {
	Start(i int) (result R, cont point.Suspended[T], done bool)
	Resume(cont point.Suspended[T]) (result R, next point.Suspended[T], done bool)
}

// WorkItem is a distance pair a suspended operation is blocked on,
// carrying the slot (not the original argument value) so the Coordinator
// can wake the right continuation once the pair is cached.
type WorkItem[T point.Point] struct {
	Slot int
	Pair point.Pair[T]
}

// Driver owns the two shared, mutex-guarded stacks of spec.md §4.3 --
// Ready and WorkItems -- for the lifetime of one job. A single Driver is
// reused across every Run call the Subsampler makes (Stage 1's aspiration
// pass, Stage 2's inserts, Stage 3's deltaClose pass, ...): the stacks
// belong to the job, not to any one resumable operation, which is why Run
// is a free function parameterized separately by the Functor's result
// type rather than a type parameter baked into Driver itself.
type Driver[T point.Point] struct {
	Ready     *Queue[int]
	WorkItems *Queue[WorkItem[T]]

	// Pending dedups Ready pushes across a single suspension's possibly
	// multiple missing pairs: the Coordinator decrements it once per
	// reply and only pushes Ready when a slot's count reaches zero.
	Pending *PendingCounter
}

// New creates a Driver with fresh, empty queues.
func New[T point.Point]() *Driver[T] {
	return &Driver[T]{Ready: NewQueue[int](), WorkItems: NewQueue[WorkItem[T]](), Pending: NewPendingCounter()}
}

// Run executes f once per entry of args and returns the results in the
// same order. It blocks until every argument has completed, backing off
// with exponentially increasing sleeps whenever Ready is empty but work
// remains outstanding (spec.md §4.3 step 3). Run is not itself safe to
// call concurrently with another Run on the same Driver, but the
// Coordinator feeding Ready/WorkItems runs concurrently with it by design.
func Run[T point.Point, R any](d *Driver[T], f Functor[T, R], args []int) []R {
	results := make([]R, len(args))
	conts := make([]point.Suspended[T], len(args))
	slotDone := make([]bool, len(args))
	completed := 0

	for slot := range args {
		d.Ready.Push(slot)
	}

	backoff := minBackoff
	for completed < len(args) {
		slot, ok := d.Ready.Pop()
		if !ok {
			time.Sleep(backoff)
			if backoff < maxBackoff {
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = minBackoff

		// A slot can only ever be legitimately readied once per
		// suspension (Pending dedups the Coordinator's replies), but a
		// completed slot is skipped outright as a second line of defense.
		if slotDone[slot] {
			continue
		}

		var (
			result R
			susp   point.Suspended[T]
			done   bool
		)
		if conts[slot] == nil {
			result, susp, done = f.Start(args[slot])
		} else {
			result, susp, done = f.Resume(conts[slot])
		}

		if done {
			results[slot] = result
			conts[slot] = nil
			slotDone[slot] = true
			completed++
			continue
		}

		missing := susp.Missing()
		if len(missing) == 0 {
			panic("pardriver: suspended operation raised no missing pairs")
		}
		conts[slot] = susp
		d.Pending.Set(slot, len(missing))
		for _, pair := range missing {
			d.WorkItems.Push(WorkItem[T]{Slot: slot, Pair: pair})
		}
	}
	return results
}
