package metrictree

import "github.com/shaunharker/subsample/point"

// base carries the one piece of state every resumable operation shares:
// the list of (point, point) pairs the Cache missed on during the most
// recent attempt at a step. It implements point.Suspended[T] so the
// Parallel Driver can drain it without knowing which operation raised it.
type base[T point.Point] struct {
	missing []point.Pair[T]
}

func (b *base[T]) addMissing(p, q T) {
	b.missing = append(b.missing, point.Pair[T]{P: p, Q: q})
}

// Missing returns the pairs needed to resume this continuation, clearing
// them: a second call before the next suspension returns nothing.
func (b *base[T]) Missing() []point.Pair[T] {
	m := b.missing
	b.missing = nil
	return m
}

// searchState is the shared work-stack machinery for nearest, kNearest,
// aspiration, and deltaClose: a stack of node ids to visit, seeded with the
// root. The stack-top item is never popped until its step completes fully
// (spec.md §4.1 "Resumable continuations"), so re-entering after a miss
// re-runs the same step -- safe because the Cache makes previously-resolved
// distances instant hits the second time around.
type searchState[T point.Point] struct {
	query T
	stack []NodeId
	done  bool // true once the search has fully completed

	// recorded caches whether the stack-top node's visitor.record has
	// already run during the current visit, together with its result, so
	// a node whose processing spans several resumptions (distance misses
	// on its own point, then on a child's) is recorded exactly once.
	recorded    bool
	prune, stop bool
}

// visitor is the per-operation logic plugged into the shared search loop
// (search.go). record is invoked at most once per distinct node id across
// the life of an operation -- the loop itself deduplicates -- so a visitor
// may assume idempotent semantics and need not guard against replays
// itself.
type visitor[T point.Point] interface {
	// record is called when node n (at distance dist from the query,
	// carrying subtree radius radius) is visited. It returns whether the
	// node's subtree should be pruned (not descended into) and whether
	// the whole search should stop immediately.
	record(n NodeId, dist, radius float64) (prune, stop bool)
}

// NearestCont is the continuation returned by Nearest when a needed
// distance is not yet cached.
type NearestCont[T point.Point] struct {
	base[T]
	state searchState[T]
	v     *nearestVisitor[T]
}

// KNearestCont is the continuation returned by KNearest.
type KNearestCont[T point.Point] struct {
	base[T]
	state searchState[T]
	v     *kNearestVisitor[T]
}

// AspirationCont is the continuation returned by Aspiration.
type AspirationCont[T point.Point] struct {
	base[T]
	state searchState[T]
	v     *aspirationVisitor[T]
}

// DeltaCloseCont is the continuation returned by DeltaClose.
type DeltaCloseCont[T point.Point] struct {
	base[T]
	state searchState[T]
	v     *deltaCloseVisitor[T]
}

// InsertCont is the continuation returned by Insert.
type InsertCont[T point.Point] struct {
	base[T]
	query  T
	cursor NodeId // node currently being examined for descent
	// carried/carriedOK cache the distance from query to cursor's point
	// computed while updating cursor's radius, so the insertion rule's
	// "compare a = d(x,n.point) ... with b = d(x,R.point)" step (spec.md
	// §4.1) does not recompute a on resume.
	carried   float64
	carriedOK bool
}
