package metrictree

import (
	"math"
	"sort"

	"github.com/shaunharker/subsample/point"
)

// stepSearch processes the stack-top node of s exactly through the steps
// of spec.md §4.1's search rule, suspending (returning true) the instant a
// needed distance misses the cache. The searchState's recorded flag
// ensures the visitor's record is invoked at most once per node even
// though a node's full processing may take several resumptions (one per
// missing distance): the call to the node's own point and the calls to
// its children's points (to decide push order) can each miss
// independently.
func stepSearch[T point.Point](t *Tree[T], s *searchState[T], v visitor[T], b *base[T]) (suspended bool) {
	top := s.stack[len(s.stack)-1]
	n := t.mustNode(top)

	if !s.recorded {
		d, ok := t.lookup(s.query, n.point)
		if !ok {
			b.addMissing(s.query, n.point)
			return true
		}
		s.prune, s.stop = v.record(top, d, n.radius)
		s.recorded = true
	}

	if s.stop {
		s.stack = s.stack[:0]
		s.recorded = false
		s.done = true
		return false
	}
	if s.prune {
		s.stack = s.stack[:len(s.stack)-1]
		s.recorded = false
		return false
	}

	var dl, dr float64
	lok, rok := true, true
	if n.left != NoNode {
		dl, lok = t.lookup(s.query, t.nodes[n.left].point)
		if !lok {
			b.addMissing(s.query, t.nodes[n.left].point)
		}
	}
	if n.right != NoNode {
		dr, rok = t.lookup(s.query, t.nodes[n.right].point)
		if !rok {
			b.addMissing(s.query, t.nodes[n.right].point)
		}
	}
	if !lok || !rok {
		return true
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.recorded = false
	switch {
	case n.left != NoNode && n.right != NoNode:
		if dl <= dr {
			s.stack = append(s.stack, n.right, n.left)
		} else {
			s.stack = append(s.stack, n.left, n.right)
		}
	case n.left != NoNode:
		s.stack = append(s.stack, n.left)
	case n.right != NoNode:
		s.stack = append(s.stack, n.right)
	}
	return false
}

// runSearch drives s to completion or suspension, initializing the stack
// with the root on first entry.
func runSearch[T point.Point](t *Tree[T], s *searchState[T], v visitor[T], b *base[T]) (suspended bool) {
	if s.stack == nil && !s.done {
		root := t.Root()
		if root == NoNode {
			s.done = true
			return false
		}
		s.stack = []NodeId{root}
	}
	for len(s.stack) > 0 {
		if stepSearch(t, s, v, b) {
			return true
		}
	}
	s.done = true
	return false
}

// --- nearest ---------------------------------------------------------

type nearestVisitor[T point.Point] struct {
	best   float64
	bestID NodeId
	found  bool
}

func newNearestVisitor[T point.Point]() *nearestVisitor[T] {
	return &nearestVisitor[T]{best: math.Inf(1), bestID: NoNode}
}

func (v *nearestVisitor[T]) record(n NodeId, dist, radius float64) (prune, stop bool) {
	if dist < v.best {
		v.best = dist
		v.bestID = n
		v.found = true
	}
	return dist > v.best+radius, false
}

// NearestResult is the outcome of a completed Nearest search.
type NearestResult struct {
	ID    NodeId
	Found bool // false only when the tree is empty
}

// Nearest finds the point closest to x (spec.md §4.1 nearest). It returns
// either a result or a continuation to resume once the returned missing
// pairs are cached -- never both.
func Nearest[T point.Point](t *Tree[T], x T) (*NearestResult, *NearestCont[T]) {
	c := &NearestCont[T]{state: searchState[T]{query: x}, v: newNearestVisitor[T]()}
	return resumeNearest(t, c)
}

// ResumeNearest continues a suspended Nearest search.
func ResumeNearest[T point.Point](t *Tree[T], c *NearestCont[T]) (*NearestResult, *NearestCont[T]) {
	return resumeNearest(t, c)
}

func resumeNearest[T point.Point](t *Tree[T], c *NearestCont[T]) (*NearestResult, *NearestCont[T]) {
	if runSearch(t, &c.state, c.v, &c.base) {
		return nil, c
	}
	return &NearestResult{ID: c.v.bestID, Found: c.v.found}, nil
}

// --- kNearest ---------------------------------------------------------

type kBest struct {
	dist float64
	id   NodeId
}

type kNearestVisitor[T point.Point] struct {
	k    int
	best []kBest // sorted ascending by dist, len <= k
}

func (v *kNearestVisitor[T]) record(n NodeId, dist, radius float64) (prune, stop bool) {
	if len(v.best) < v.k || dist < v.best[len(v.best)-1].dist {
		i := sort.Search(len(v.best), func(i int) bool { return v.best[i].dist >= dist })
		v.best = append(v.best, kBest{})
		copy(v.best[i+1:], v.best[i:])
		v.best[i] = kBest{dist: dist, id: n}
		if len(v.best) > v.k {
			v.best = v.best[:v.k]
		}
	}
	bound := math.Inf(1)
	if len(v.best) == v.k {
		bound = v.best[len(v.best)-1].dist
	}
	return dist > bound+radius, false
}

// KNearestResult is the outcome of a completed KNearest search, nearest
// first.
type KNearestResult struct {
	IDs []NodeId
}

// KNearest finds the k points closest to x (spec.md §4.1 kNearest).
func KNearest[T point.Point](t *Tree[T], x T, k int) (*KNearestResult, *KNearestCont[T]) {
	c := &KNearestCont[T]{state: searchState[T]{query: x}, v: &kNearestVisitor[T]{k: k}}
	return resumeKNearest(t, c)
}

// ResumeKNearest continues a suspended KNearest search.
func ResumeKNearest[T point.Point](t *Tree[T], c *KNearestCont[T]) (*KNearestResult, *KNearestCont[T]) {
	return resumeKNearest(t, c)
}

func resumeKNearest[T point.Point](t *Tree[T], c *KNearestCont[T]) (*KNearestResult, *KNearestCont[T]) {
	if runSearch(t, &c.state, c.v, &c.base) {
		return nil, c
	}
	ids := make([]NodeId, len(c.v.best))
	for i, b := range c.v.best {
		ids[i] = b.id
	}
	return &KNearestResult{IDs: ids}, nil
}

// --- aspiration ---------------------------------------------------------

type aspirationVisitor[T point.Point] struct {
	delta float64
	hit   NodeId
	found bool
}

func (v *aspirationVisitor[T]) record(n NodeId, dist, radius float64) (prune, stop bool) {
	if dist < v.delta {
		v.hit = n
		v.found = true
		return true, true
	}
	return dist > v.delta+radius, false
}

// AspirationResult is the outcome of a completed Aspiration search.
type AspirationResult struct {
	ID    NodeId
	Found bool
}

// Aspiration finds any point within delta of x, short-circuiting on the
// first hit (spec.md §4.1 aspiration).
func Aspiration[T point.Point](t *Tree[T], x T, delta float64) (*AspirationResult, *AspirationCont[T]) {
	c := &AspirationCont[T]{state: searchState[T]{query: x}, v: &aspirationVisitor[T]{delta: delta, hit: NoNode}}
	return resumeAspiration(t, c)
}

// ResumeAspiration continues a suspended Aspiration search.
func ResumeAspiration[T point.Point](t *Tree[T], c *AspirationCont[T]) (*AspirationResult, *AspirationCont[T]) {
	return resumeAspiration(t, c)
}

func resumeAspiration[T point.Point](t *Tree[T], c *AspirationCont[T]) (*AspirationResult, *AspirationCont[T]) {
	if runSearch(t, &c.state, c.v, &c.base) {
		return nil, c
	}
	return &AspirationResult{ID: c.v.hit, Found: c.v.found}, nil
}

// --- deltaClose ---------------------------------------------------------

type deltaCloseVisitor[T point.Point] struct {
	delta   float64
	results []NodeId
}

func (v *deltaCloseVisitor[T]) record(n NodeId, dist, radius float64) (prune, stop bool) {
	if dist < v.delta {
		v.results = append(v.results, n)
	}
	return dist > v.delta+radius, false
}

// DeltaCloseResult is the outcome of a completed DeltaClose search.
type DeltaCloseResult struct {
	IDs []NodeId
}

// DeltaClose finds every point strictly within delta of x (spec.md §4.1
// deltaClose).
func DeltaClose[T point.Point](t *Tree[T], x T, delta float64) (*DeltaCloseResult, *DeltaCloseCont[T]) {
	c := &DeltaCloseCont[T]{state: searchState[T]{query: x}, v: &deltaCloseVisitor[T]{delta: delta}}
	return resumeDeltaClose(t, c)
}

// ResumeDeltaClose continues a suspended DeltaClose search.
func ResumeDeltaClose[T point.Point](t *Tree[T], c *DeltaCloseCont[T]) (*DeltaCloseResult, *DeltaCloseCont[T]) {
	return resumeDeltaClose(t, c)
}

func resumeDeltaClose[T point.Point](t *Tree[T], c *DeltaCloseCont[T]) (*DeltaCloseResult, *DeltaCloseCont[T]) {
	if runSearch(t, &c.state, c.v, &c.base) {
		return nil, c
	}
	return &DeltaCloseResult{IDs: c.v.results}, nil
}
