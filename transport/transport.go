// Package transport defines the Coordinator/Worker messaging contract
// (spec.md §2 Component E, §4.5) and a Coordinator that drives it against
// any Transport implementation. The wire-level transport itself --
// sockets, a message queue, gRPC -- is explicitly out of scope (spec.md
// §1): Transport is the seam a real network implementation would plug
// into. Package transport/local provides the in-process reference
// implementation used by the CLI.
package transport

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaunharker/subsample/point"
)

// Job is dispatched from the Coordinator to a Worker. Timer jobs (spec.md
// §4.5 tag=0) carry no payload and exist only to keep workers employed
// while the Subsampler has produced no new distance requests yet. Distance
// jobs (tag=1) carry the pair to measure and the driver slot that is
// waiting on the answer.
type Job[T point.Point] struct {
	ID    uuid.UUID
	Timer bool
	Slot  int
	P, Q  T
}

// Reply is a Worker's response to a Job. Err is set only for Distance
// jobs whose DistanceFn failed or panicked (spec.md §7 kind 5, worker
// failure) -- the Coordinator treats any such reply as unrecoverable.
type Reply[T point.Point] struct {
	ID    uuid.UUID
	Timer bool
	Slot  int
	P, Q  T
	Dist  float64
	Err   error
}

// Transport dispatches a Job to some Worker and returns its Reply. A
// Timer job's Dispatch should sleep (the caller does not retry a timer)
// and a Distance job's Dispatch should compute the distance. Dispatch may
// block; the Coordinator calls it from a bounded number of concurrent
// goroutines (one per configured worker).
type Transport[T point.Point] interface {
	Dispatch(ctx context.Context, job Job[T]) (Reply[T], error)
}

// WorkerError wraps a panic recovered while a Transport implementation was
// evaluating a user-supplied DistanceFn, so it reaches the Coordinator as
// an ordinary error rather than crashing the process (spec.md §7 kind 5).
type WorkerError struct {
	Cause any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("transport: worker panicked: %v", e.Cause)
}
