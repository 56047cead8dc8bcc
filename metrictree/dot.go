package metrictree

import (
	"fmt"
	"io"
)

// WriteDOT renders the tree as a Graphviz DOT graph, labeling each node
// with its id and radius and drawing leaves as boxes so a subtree's shape
// is visible at a glance. It is a debugging aid only -- no CLI flag wires
// it up, matching the source's own graphVizDebug, which existed purely for
// developers inspecting a tree by hand. Walking strictly through the
// exported accessors (rather than t.nodes directly) doubles as a parent
// back-edge check: a child whose recorded Parent disagrees with the node
// being rendered means node bookkeeping has gone wrong elsewhere, so it
// panics rather than silently emitting a misleading graph.
func (t *Tree[T]) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph MetricTree {"); err != nil {
		return err
	}
	for i := 0; i < t.Size(); i++ {
		n := NodeId(i)
		shape := "ellipse"
		if t.IsLeaf(n) {
			shape = "box"
		}
		if _, err := fmt.Fprintf(w, "  n%d [shape=%s label=\"%d r=%.4g\"];\n", i, shape, i, t.Radius(n)); err != nil {
			return err
		}
		if left := t.Left(n); left != NoNode {
			if p := t.Parent(left); p != n {
				panic(fmt.Sprintf("metrictree: node %d's left child %d reports parent %d", i, left, p))
			}
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=L];\n", i, left); err != nil {
				return err
			}
		}
		if right := t.Right(n); right != NoNode {
			if p := t.Parent(right); p != n {
				panic(fmt.Sprintf("metrictree: node %d's right child %d reports parent %d", i, right, p))
			}
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=R];\n", i, right); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
