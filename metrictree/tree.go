package metrictree

import (
	"fmt"

	"github.com/shaunharker/subsample/point"
)

// NodeId identifies a node by its dense insertion-order index (spec.md §3:
// "the root has index 0"). NoNode marks an empty child slot.
type NodeId int32

// NoNode is the sentinel for an absent child or parent.
const NoNode NodeId = -1

// Cache is the minimal distance-lookup surface the tree needs from a
// Distance Oracle (component B). Any type with this method set works;
// metrictree does not import package oracle, so a trivial in-memory stub
// can stand in for it in tests.
type Cache[T point.Point] interface {
	// Lookup returns the cached distance between p and q, or ok=false if
	// it has not been computed (and recorded in the cache) yet.
	Lookup(p, q T) (dist float64, ok bool)
}

type node[T point.Point] struct {
	point               T
	left, right, parent NodeId
	radius              float64
}

// Tree is a vantage-point binary metric tree (spec.md §2 Component A). It
// holds no goroutines and performs no I/O: every operation either completes
// synchronously or returns a continuation describing exactly the distances
// still needed to make progress.
type Tree[T point.Point] struct {
	cache Cache[T]
	nodes []node[T]
}

// New creates an empty tree backed by the given distance cache.
func New[T point.Point](cache Cache[T]) *Tree[T] {
	return &Tree[T]{cache: cache}
}

// Size returns the number of points inserted so far.
func (t *Tree[T]) Size() int { return len(t.nodes) }

// Root returns the root node id, or NoNode if the tree is empty.
func (t *Tree[T]) Root() NodeId {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

func (t *Tree[T]) mustNode(n NodeId) *node[T] {
	if n < 0 || int(n) >= len(t.nodes) {
		panic(fmt.Sprintf("metrictree: invalid node id %d (size %d)", n, len(t.nodes)))
	}
	return &t.nodes[n]
}

// Left returns n's left child, or NoNode.
func (t *Tree[T]) Left(n NodeId) NodeId { return t.mustNode(n).left }

// Right returns n's right child, or NoNode.
func (t *Tree[T]) Right(n NodeId) NodeId { return t.mustNode(n).right }

// Parent returns n's parent, or NoNode if n is the root.
func (t *Tree[T]) Parent(n NodeId) NodeId { return t.mustNode(n).parent }

// Radius returns the maximum observed distance from n's point to any point
// inserted into n's subtree so far (spec.md §3 Node invariant).
func (t *Tree[T]) Radius(n NodeId) float64 { return t.mustNode(n).radius }

// IsLeaf reports whether n has no children.
func (t *Tree[T]) IsLeaf(n NodeId) bool {
	nd := t.mustNode(n)
	return nd.left == NoNode && nd.right == NoNode
}

// Point returns the point stored at n.
func (t *Tree[T]) Point(n NodeId) T { return t.mustNode(n).point }

// Points returns every inserted point, in insertion (node id) order.
func (t *Tree[T]) Points() []T {
	out := make([]T, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.nodes[i].point
	}
	return out
}

func (t *Tree[T]) lookup(p, q T) (float64, bool) { return t.cache.Lookup(p, q) }

func (t *Tree[T]) appendNode(p T, parent NodeId) NodeId {
	id := NodeId(len(t.nodes))
	t.nodes = append(t.nodes, node[T]{point: p, left: NoNode, right: NoNode, parent: parent, radius: 0})
	return id
}
