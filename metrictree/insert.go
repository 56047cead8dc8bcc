package metrictree

import "github.com/shaunharker/subsample/point"

// InsertResult is the outcome of a completed Insert.
type InsertResult struct {
	ID NodeId
}

// Insert adds x to the tree following spec.md §4.1's insertion rule:
// descend from the root, updating each visited node's radius, until an
// empty child slot is found.
func Insert[T point.Point](t *Tree[T], x T) (*InsertResult, *InsertCont[T]) {
	if t.Root() == NoNode {
		id := t.appendNode(x, NoNode)
		return &InsertResult{ID: id}, nil
	}
	c := &InsertCont[T]{query: x, cursor: t.Root()}
	return resumeInsert(t, c)
}

// ResumeInsert continues a suspended Insert.
func ResumeInsert[T point.Point](t *Tree[T], c *InsertCont[T]) (*InsertResult, *InsertCont[T]) {
	return resumeInsert(t, c)
}

// resumeInsert re-runs the insertion rule from the current cursor every
// time it is called; only the distance from x to cursor's point
// (carried/carriedOK) survives a suspension, mirroring the C++ source's
// reuse of the "a" value across the insertion rule's two comparisons
// (spec.md §4.1, §9 carried-distance optimization). Everything else is
// recomputed from the Cache, which makes previously resolved lookups free.
func resumeInsert[T point.Point](t *Tree[T], c *InsertCont[T]) (*InsertResult, *InsertCont[T]) {
	for {
		n := t.mustNode(c.cursor)

		var a float64
		if c.carriedOK {
			a = c.carried
		} else {
			d, ok := t.lookup(c.query, n.point)
			if !ok {
				c.addMissing(c.query, n.point)
				return nil, c
			}
			a = d
		}
		if a > n.radius {
			n.radius = a
		}

		switch {
		case n.left == NoNode && n.right == NoNode:
			cursor := c.cursor
			id := t.appendNode(c.query, cursor)
			t.mustNode(cursor).left = id
			return &InsertResult{ID: id}, nil

		case n.right == NoNode:
			// only left occupied: compare a against distance to left child
			b, ok := t.lookup(c.query, t.nodes[n.left].point)
			if !ok {
				c.addMissing(c.query, t.nodes[n.left].point)
				c.carried, c.carriedOK = a, true
				return nil, c
			}
			if a <= b {
				cursor := c.cursor
				id := t.appendNode(c.query, cursor)
				t.mustNode(cursor).right = id
				return &InsertResult{ID: id}, nil
			}
			c.cursor = n.left
			c.carriedOK = false
			continue

		case n.left == NoNode:
			// only right occupied: compare a against distance to right child
			b, ok := t.lookup(c.query, t.nodes[n.right].point)
			if !ok {
				c.addMissing(c.query, t.nodes[n.right].point)
				c.carried, c.carriedOK = a, true
				return nil, c
			}
			if a <= b {
				cursor := c.cursor
				id := t.appendNode(c.query, cursor)
				t.mustNode(cursor).left = id
				return &InsertResult{ID: id}, nil
			}
			c.cursor = n.right
			c.carriedOK = false
			continue

		default:
			// both occupied: descend into the closer child, tie-break left
			dl, lok := t.lookup(c.query, t.nodes[n.left].point)
			if !lok {
				c.addMissing(c.query, t.nodes[n.left].point)
			}
			dr, rok := t.lookup(c.query, t.nodes[n.right].point)
			if !rok {
				c.addMissing(c.query, t.nodes[n.right].point)
			}
			if !lok || !rok {
				c.carried, c.carriedOK = a, true
				return nil, c
			}
			if dl <= dr {
				c.cursor = n.left
			} else {
				c.cursor = n.right
			}
			c.carriedOK = false
			continue
		}
	}
}
