// Package oracle implements the memoizing Distance Oracle (spec.md §2
// Component B): a thread-safe cache in front of the embedder's DistanceFn,
// whose misses are recorded rather than computed in place so that callers
// running inside the Parallel Driver can suspend instead of blocking.
package oracle

import (
	"sync"
	"sync/atomic"

	"github.com/shaunharker/subsample/point"
)

type key struct {
	p, q int64
}

// Stats are the telemetry counters the source's global_distance_count was
// restructured into (spec.md §9, SPEC_FULL.md §4): how many lookups hit
// the cache, how many missed, and how many distances were actually
// computed by a worker.
type Stats struct {
	Hits     int64
	Misses   int64
	Computed int64
}

// Oracle is the Distance Oracle. The zero value is not usable; construct
// with New.
type Oracle[T point.Point] struct {
	mu    sync.Mutex
	cache map[key]float64

	hits, misses, computed atomic.Int64
}

// New creates an empty Oracle.
func New[T point.Point]() *Oracle[T] {
	return &Oracle[T]{cache: make(map[key]float64)}
}

// Lookup consults the cache for the distance between p and q. On a miss it
// returns ok=false; it does not compute or block (spec.md §4.2 lookup).
func (o *Oracle[T]) Lookup(p, q T) (dist float64, ok bool) {
	k := key{p.PointID(), q.PointID()}
	o.mu.Lock()
	d, found := o.cache[k]
	o.mu.Unlock()
	if found {
		o.hits.Add(1)
		return d, true
	}
	o.misses.Add(1)
	return 0, false
}

// Compute invokes fn synchronously. It is used worker-side only (spec.md
// §4.2 compute) -- the coordinator/driver side never calls the embedder's
// DistanceFn directly, only through Lookup/Cache.
func (o *Oracle[T]) Compute(p, q T, fn point.DistanceFn[T]) float64 {
	o.computed.Add(1)
	return fn(p, q)
}

// Cache installs the distance between p and q. After Cache returns, any
// subsequent Lookup(p, q) returns d (spec.md §4.2 correctness
// requirement). Callers that want symmetric lookups without depending on
// which orientation was asked for should call Cache for both orientations;
// transport.Coordinator.Accept does this since both directions are
// requested in practice.
func (o *Oracle[T]) Cache(p, q T, d float64) {
	k := key{p.PointID(), q.PointID()}
	o.mu.Lock()
	o.cache[k] = d
	o.mu.Unlock()
}

// StatsSnapshot returns a snapshot of the telemetry counters.
func (o *Oracle[T]) StatsSnapshot() Stats {
	return Stats{
		Hits:     o.hits.Load(),
		Misses:   o.misses.Load(),
		Computed: o.computed.Load(),
	}
}
