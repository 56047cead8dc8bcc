package metrictree_test

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaunharker/subsample/metrictree"
	"github.com/shaunharker/subsample/point"
)

// pt2 is a toy 2-D Euclidean point used throughout the property tests
// (spec.md §8 "2-D Euclidean toy space").
type pt2 struct {
	id   int64
	x, y float64
}

func (p pt2) PointID() int64 { return p.id }

func dist2(p, q pt2) float64 {
	dx, dy := p.x-q.x, p.y-q.y
	return math.Sqrt(dx*dx + dy*dy)
}

// memCache is a trivial, unsynchronized distance cache sufficient to drive
// the tree directly (without an Oracle) in tests that never need to
// observe a suspension.
type memCache struct {
	fn    func(p, q pt2) float64
	cache map[[2]int64]float64
}

func newMemCache(fn func(p, q pt2) float64) *memCache {
	return &memCache{fn: fn, cache: map[[2]int64]float64{}}
}

func (c *memCache) Lookup(p, q pt2) (float64, bool) {
	key := [2]int64{p.PointID(), q.PointID()}
	if d, ok := c.cache[key]; ok {
		return d, true
	}
	d := c.fn(p, q)
	c.cache[key] = d
	c.cache[[2]int64{q.PointID(), p.PointID()}] = d
	return d, true
}

var _ metrictree.Cache[pt2] = (*memCache)(nil)

func buildTree(t *testing.T, pts []pt2) *metrictree.Tree[pt2] {
	t.Helper()
	tree := metrictree.New[pt2](newMemCache(dist2))
	for _, p := range pts {
		res, cont := metrictree.Insert(tree, p)
		require.Nil(t, cont, "insert should never suspend against a cache with no misses")
		require.NotNil(t, res)
	}
	return tree
}

func bruteNearest(pts []pt2, x pt2) (pt2, float64) {
	best := pts[0]
	bd := dist2(x, best)
	for _, p := range pts[1:] {
		if d := dist2(x, p); d < bd {
			bd, best = d, p
		}
	}
	return best, bd
}

func TestRadiusInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := randomPoints(rng, 200)
	tree := buildTree(t, pts)
	for n := metrictree.NodeId(0); int(n) < tree.Size(); n++ {
		np := tree.Point(n)
		var maxd float64
		walk(tree, n, func(m metrictree.NodeId) {
			d := dist2(np, tree.Point(m))
			if d > maxd {
				maxd = d
			}
		})
		require.GreaterOrEqualf(t, tree.Radius(n), maxd-1e-9, "node %d radius %.6f < observed max %.6f", n, tree.Radius(n), maxd)
	}
}

func walk(tree *metrictree.Tree[pt2], n metrictree.NodeId, visit func(metrictree.NodeId)) {
	if n == metrictree.NoNode {
		return
	}
	visit(n)
	walk(tree, tree.Left(n), visit)
	walk(tree, tree.Right(n), visit)
}

func randomPoints(rng *rand.Rand, n int) []pt2 {
	pts := make([]pt2, n)
	for i := range pts {
		pts[i] = pt2{id: int64(i), x: rng.Float64() * 100, y: rng.Float64() * 100}
	}
	return pts
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pts := randomPoints(rng, 300)
	tree := buildTree(t, pts)
	for i := 0; i < 50; i++ {
		q := pt2{id: -1, x: rng.Float64() * 100, y: rng.Float64() * 100}
		want, wantD := bruteNearest(pts, q)
		res, cont := metrictree.Nearest(tree, q)
		require.Nil(t, cont)
		require.True(t, res.Found)
		got := tree.Point(res.ID)
		require.InDeltaf(t, wantD, dist2(q, got), 1e-9, "nearest mismatch: want %v got %v", want, got)
	}
}

func TestDeltaCloseExactness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pts := randomPoints(rng, 150)
	tree := buildTree(t, pts)
	q := pt2{id: -1, x: 50, y: 50}
	delta := 12.0
	res, cont := metrictree.DeltaClose(tree, q, delta)
	require.Nil(t, cont)

	var want []int64
	for _, p := range pts {
		if dist2(q, p) < delta {
			want = append(want, p.id)
		}
	}
	var got []int64
	for _, id := range res.IDs {
		got = append(got, tree.Point(id).id)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Equal(t, want, got)
}

func TestAspirationIffDeltaCloseNonEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	pts := randomPoints(rng, 150)
	tree := buildTree(t, pts)
	for i := 0; i < 30; i++ {
		q := pt2{id: -1, x: rng.Float64() * 100, y: rng.Float64() * 100}
		delta := 5.0 + rng.Float64()*10
		dc, dcCont := metrictree.DeltaClose(tree, q, delta)
		require.Nil(t, dcCont)
		asp, aspCont := metrictree.Aspiration(tree, q, delta)
		require.Nil(t, aspCont)
		require.Equal(t, len(dc.IDs) > 0, asp.Found)
	}
}

// missOnceCache forces exactly one miss per distinct unordered pair before
// caching it, to exercise the resumption law.
type missOnceCache struct {
	fn      func(p, q pt2) float64
	cache   map[[2]int64]float64
	seenErr map[[2]int64]bool
}

func newMissOnceCache(fn func(p, q pt2) float64) *missOnceCache {
	return &missOnceCache{fn: fn, cache: map[[2]int64]float64{}, seenErr: map[[2]int64]bool{}}
}

func canon(a, b int64) [2]int64 {
	if a <= b {
		return [2]int64{a, b}
	}
	return [2]int64{b, a}
}

func (c *missOnceCache) Lookup(p, q pt2) (float64, bool) {
	key := canon(p.PointID(), q.PointID())
	if d, ok := c.cache[key]; ok {
		return d, true
	}
	if !c.seenErr[key] {
		c.seenErr[key] = true
		return 0, false
	}
	d := c.fn(p, q)
	c.cache[key] = d
	return d, true
}

func (c *missOnceCache) resolve(p, q pt2) {
	key := canon(p.PointID(), q.PointID())
	if _, ok := c.cache[key]; !ok {
		c.cache[key] = c.fn(p, q)
	}
}

func TestResumptionLawNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pts := randomPoints(rng, 60)

	straight := buildTree(t, pts)
	q := pt2{id: -1, x: 40, y: 60}
	want, wantCont := metrictree.Nearest(straight, q)
	require.Nil(t, wantCont)

	cache := newMissOnceCache(dist2)
	resumable := metrictree.New[pt2](cache)
	for _, p := range pts {
		res, cont := metrictree.Insert(resumable, p)
		for cont != nil {
			for _, pr := range cont.Missing() {
				cache.resolve(pr.P, pr.Q)
			}
			res, cont = metrictree.ResumeInsert(resumable, cont)
		}
		require.NotNil(t, res)
	}

	res, cont := metrictree.Nearest(resumable, q)
	for cont != nil {
		for _, pr := range cont.Missing() {
			cache.resolve(pr.P, pr.Q)
		}
		res, cont = metrictree.ResumeNearest(resumable, cont)
	}
	require.True(t, res.Found)
	require.Equal(t, want.ID, res.ID)
}

// TestKNearestScenario is spec.md §8 concrete scenario 6.
func TestKNearestScenario(t *testing.T) {
	pts := []pt2{
		{id: 0, x: 0, y: 0},
		{id: 1, x: 3, y: 4},
		{id: 2, x: 6, y: 8},
		{id: 3, x: 1, y: 1},
		{id: 4, x: 10, y: 10},
	}
	tree := buildTree(t, pts)
	q := pt2{id: -1, x: 2, y: 2}
	res, cont := metrictree.KNearest(tree, q, 3)
	require.Nil(t, cont)
	require.Len(t, res.IDs, 3)

	var gotIDs []int64
	for _, id := range res.IDs {
		gotIDs = append(gotIDs, tree.Point(id).id)
	}
	sort.Slice(gotIDs, func(i, j int) bool { return gotIDs[i] < gotIDs[j] })
	require.Equal(t, []int64{0, 1, 3}, gotIDs)
}

var _ point.Point = pt2{}

// TestWriteDOTRendersEveryNodeAndEdge exercises the tree's exported
// structural accessors (IsLeaf, Parent) via the debug DOT writer, and
// checks that every node id and parent-reported edge appears in the
// output.
func TestWriteDOTRendersEveryNodeAndEdge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := randomPoints(rng, 30)
	tree := buildTree(t, pts)

	var buf bytes.Buffer
	require.NoError(t, tree.WriteDOT(&buf))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "digraph MetricTree {\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))

	leaves, internal := 0, 0
	for n := metrictree.NodeId(0); int(n) < tree.Size(); n++ {
		require.Contains(t, out, fmt.Sprintf("n%d ", n))
		if tree.IsLeaf(n) {
			leaves++
			require.Contains(t, out, fmt.Sprintf("n%d [shape=box", n))
		} else {
			internal++
		}
		for _, child := range []metrictree.NodeId{tree.Left(n), tree.Right(n)} {
			if child == metrictree.NoNode {
				continue
			}
			require.Equal(t, n, tree.Parent(child), "child %d's parent should be %d", child, n)
			require.Contains(t, out, fmt.Sprintf("n%d -> n%d", n, child))
		}
	}
	require.Greater(t, leaves, 0)
	require.Greater(t, internal, 0)
}
