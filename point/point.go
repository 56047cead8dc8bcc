// Package point defines the plug-in surface shared by every layer of the
// subsampling engine: the opaque Point type embedders supply, the distance
// function over it, and the small vocabulary (pairs, suspended operations)
// the metric tree and parallel driver use to talk about both without
// depending on each other's packages.
package point

// Point is the opaque value type supplied by the embedder (spec.md Data
// Model, "Point"). It must be comparable (for use as a map/cache key
// component through PointID) and carry a stable integer identity that is
// unique per input point.
type Point interface {
	comparable
	PointID() int64
}

// DistanceFn is a pure function over two points: symmetric, zero on the
// diagonal, and triangle-inequality respecting. It is not assumed to be
// cheap.
type DistanceFn[T Point] func(p, q T) float64

// Pair is an ordered pair of points whose distance is needed but not yet
// known. It is the payload of a cache miss: both Tree operations (which
// raise it as part of a continuation) and the Coordinator/Worker transport
// (which ships it to a worker and feeds the answer back) pass it around.
type Pair[T Point] struct {
	P, Q T
}

// Suspended is implemented by every tree-operation continuation. It lets
// the Parallel Driver drain the pairs a suspended operation is blocked on
// without knowing which concrete operation (Insert, Nearest, ...) raised it.
type Suspended[T Point] interface {
	// Missing returns the pairs needed to resume, and clears them: a
	// second call returns nothing until the operation suspends again.
	Missing() []Pair[T]
}
