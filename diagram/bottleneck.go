package diagram

import "sort"

// bottleneckDistance computes the Bottleneck distance between two
// diagrams by binary search over candidate thresholds, checking feasibility
// at each candidate via bipartite matching (spec.md §6, SPEC_FULL.md §4).
// eps relaxes the matching tolerance for the spec's named approximate mode;
// eps == 0 searches for the exact threshold.
func bottleneckDistance(a, b PersistenceDiagram, eps float64) float64 {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return 0
	}

	candidates := make([]float64, 0, n*m+n+m+1)
	candidates = append(candidates, 0)
	for i := range a {
		candidates = append(candidates, diagCost(a[i]))
		for j := range b {
			candidates = append(candidates, pointCost(a[i], b[j]))
		}
	}
	for j := range b {
		candidates = append(candidates, diagCost(b[j]))
	}
	sort.Float64s(candidates)

	lo, hi := 0, len(candidates)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if bottleneckFeasible(a, b, candidates[mid], eps) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return candidates[lo]
}

// bottleneckFeasible reports whether every point whose diagonal cost
// exceeds t can be matched to a compatible counterpart (point-to-point
// cost <= t), on both sides simultaneously, within a shared matching.
func bottleneckFeasible(a, b PersistenceDiagram, t, eps float64) bool {
	n, m := len(a), len(b)
	adj := make([][]int, n)
	forced := make([]bool, n)
	var order []int
	for i := range a {
		for j := range b {
			if pointCost(a[i], b[j]) <= t+eps {
				adj[i] = append(adj[i], j)
			}
		}
		if diagCost(a[i]) > t+eps {
			forced[i] = true
		}
	}
	for i := range a {
		if forced[i] {
			order = append(order, i)
		}
	}
	for i := range a {
		if !forced[i] {
			order = append(order, i)
		}
	}

	matchLeft, _ := bipartiteMatch(n, m, adj, order)
	for i := range a {
		if forced[i] && matchLeft[i] == -1 {
			return false
		}
	}

	matchedB := make([]bool, m)
	for _, v := range matchLeft {
		if v >= 0 {
			matchedB[v] = true
		}
	}
	for j := range b {
		if diagCost(b[j]) > t+eps && !matchedB[j] {
			return false
		}
	}
	return true
}
