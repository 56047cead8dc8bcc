// Package local implements the in-process reference Transport (spec.md
// §4.5 Worker, §5 "Workers are parallel processes ... communicating only
// by message exchange"): a fixed-capacity pool of goroutines, each
// computing D(p,q) for a Distance job or sleeping with exponential
// backoff for a Timer job. It is the Transport any real deployment would
// replace with a network implementation; everything in this package is
// local-process plumbing, not part of the core (spec.md §1 Out of scope:
// "the underlying message-passing transport").
package local

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"go.viam.com/utils"

	"github.com/shaunharker/subsample/point"
	"github.com/shaunharker/subsample/transport"
)

const (
	minTimerBackoff = time.Microsecond
	maxTimerBackoff = time.Second
)

// Pool dispatches jobs against a user-supplied DistanceFn using up to
// Capacity concurrently running goroutines. A panic inside the DistanceFn
// is captured (via go.viam.com/utils.PanicCapturingGo, the same idiom the
// teacher uses for its own background planner goroutines) and surfaced as
// a transport.WorkerError reply rather than crashing the coordinator.
type Pool[T point.Point] struct {
	fn  point.DistanceFn[T]
	sem *semaphore.Weighted

	timerBackoff atomic.Int64 // nanoseconds; grows on consecutive Timer jobs
}

// NewPool creates a Pool bounded to capacity concurrent in-flight jobs.
func NewPool[T point.Point](fn point.DistanceFn[T], capacity int) *Pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	p := &Pool[T]{fn: fn, sem: semaphore.NewWeighted(int64(capacity))}
	p.timerBackoff.Store(int64(minTimerBackoff))
	return p
}

// Dispatch implements transport.Transport.
func (p *Pool[T]) Dispatch(ctx context.Context, job transport.Job[T]) (transport.Reply[T], error) {
	if job.Timer {
		return p.dispatchTimer(ctx, job)
	}
	return p.dispatchDistance(ctx, job)
}

func (p *Pool[T]) dispatchTimer(ctx context.Context, job transport.Job[T]) (transport.Reply[T], error) {
	d := time.Duration(p.timerBackoff.Load())
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return transport.Reply[T]{}, ctx.Err()
	}
	next := d * 2
	if next > maxTimerBackoff {
		next = maxTimerBackoff
	}
	p.timerBackoff.Store(int64(next))
	return transport.Reply[T]{ID: job.ID, Timer: true}, nil
}

func (p *Pool[T]) dispatchDistance(ctx context.Context, job transport.Job[T]) (transport.Reply[T], error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return transport.Reply[T]{}, err
	}
	defer p.sem.Release(1)
	p.timerBackoff.Store(int64(minTimerBackoff))

	type outcome struct {
		dist float64
		err  error
	}
	out := make(chan outcome, 1)
	utils.PanicCapturingGo(func() {
		defer func() {
			if r := recover(); r != nil {
				out <- outcome{err: &transport.WorkerError{Cause: r}}
			}
		}()
		out <- outcome{dist: p.fn(job.P, job.Q)}
	})

	select {
	case o := <-out:
		if o.err != nil {
			return transport.Reply[T]{ID: job.ID, Slot: job.Slot, P: job.P, Q: job.Q, Err: o.err}, nil
		}
		return transport.Reply[T]{ID: job.ID, Slot: job.Slot, P: job.P, Q: job.Q, Dist: o.dist}, nil
	case <-ctx.Done():
		return transport.Reply[T]{}, ctx.Err()
	}
}
