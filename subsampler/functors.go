package subsampler

import (
	"github.com/shaunharker/subsample/metrictree"
	"github.com/shaunharker/subsample/point"
)

// aspirationFunctor drives metrictree.Aspiration as a pardriver.Functor
// for Stage 1 of the cohort pipeline (spec.md §4.4): does some point
// already in tree lie within delta?
type aspirationFunctor[T point.Point] struct {
	tree  *metrictree.Tree[T]
	pts   []T
	delta float64
}

func (f *aspirationFunctor[T]) Start(i int) (bool, point.Suspended[T], bool) {
	res, cont := metrictree.Aspiration(f.tree, f.pts[i], f.delta)
	if cont != nil {
		return false, cont, false
	}
	return res.Found, nil, true
}

func (f *aspirationFunctor[T]) Resume(s point.Suspended[T]) (bool, point.Suspended[T], bool) {
	res, cont := metrictree.ResumeAspiration(f.tree, s.(*metrictree.AspirationCont[T]))
	if cont != nil {
		return false, cont, false
	}
	return res.Found, nil, true
}

// insertFunctor drives metrictree.Insert as a pardriver.Functor, used both
// for Stage 2 (building the candidate sub-tree) and Stage 5 (installing
// accepted candidates into the main tree).
type insertFunctor[T point.Point] struct {
	tree *metrictree.Tree[T]
	pts  []T
}

func (f *insertFunctor[T]) Start(i int) (metrictree.NodeId, point.Suspended[T], bool) {
	res, cont := metrictree.Insert(f.tree, f.pts[i])
	if cont != nil {
		return metrictree.NoNode, cont, false
	}
	return res.ID, nil, true
}

func (f *insertFunctor[T]) Resume(s point.Suspended[T]) (metrictree.NodeId, point.Suspended[T], bool) {
	res, cont := metrictree.ResumeInsert(f.tree, s.(*metrictree.InsertCont[T]))
	if cont != nil {
		return metrictree.NoNode, cont, false
	}
	return res.ID, nil, true
}

// deltaCloseFunctor drives metrictree.DeltaClose as a pardriver.Functor
// for Stage 3: the adjacency list of every candidate within delta of
// candidate i, in the candidate sub-tree.
type deltaCloseFunctor[T point.Point] struct {
	tree  *metrictree.Tree[T]
	pts   []T
	delta float64
}

func (f *deltaCloseFunctor[T]) Start(i int) ([]metrictree.NodeId, point.Suspended[T], bool) {
	res, cont := metrictree.DeltaClose(f.tree, f.pts[i], f.delta)
	if cont != nil {
		return nil, cont, false
	}
	return res.IDs, nil, true
}

func (f *deltaCloseFunctor[T]) Resume(s point.Suspended[T]) ([]metrictree.NodeId, point.Suspended[T], bool) {
	res, cont := metrictree.ResumeDeltaClose(f.tree, s.(*metrictree.DeltaCloseCont[T]))
	if cont != nil {
		return nil, cont, false
	}
	return res.IDs, nil, true
}
