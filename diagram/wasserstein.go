package diagram

import "math"

// wassersteinDistance computes the Wasserstein-q distance between two
// diagrams using the standard diagonal-augmented assignment formulation
// (spec.md §6, SPEC_FULL.md §4): both diagrams are padded with
// projections of the other's points onto the diagonal so the matching is
// between two equal-size point sets, and the minimum-cost perfect
// matching on the resulting square cost matrix gives the optimal
// transport plan. eps > 0 switches to a greedy nearest-available-match
// heuristic instead of the exact Hungarian solve, trading optimality for
// speed on the approximate path named in spec.md §6.
func wassersteinDistance(a, b PersistenceDiagram, q, eps float64) float64 {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return 0
	}

	cost := augmentedCostMatrix(a, b, q)
	var total float64
	if eps > 0 {
		total = greedyAssignmentCost(cost)
	} else {
		_, total = hungarianMinCostAssignment(cost)
	}
	return math.Pow(total, 1/q)
}

// augmentedCostMatrix builds the (n+m)x(n+m) square cost matrix for the
// diagonal-augmented assignment: real-to-real costs in the top-left
// block, each point's own diagonal projection on its forced slot, cross
// diagonal-to-diagonal slots free, and every other cross slot an
// unreachable sentinel.
func augmentedCostMatrix(a, b PersistenceDiagram, q float64) [][]float64 {
	n, m := len(a), len(b)
	size := n + m
	const inf = math.MaxFloat64 / 4

	cost := make([][]float64, size)
	for i := range cost {
		cost[i] = make([]float64, size)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			cost[i][j] = math.Pow(pointCost(a[i], b[j]), q)
		}
		for k := 0; k < n; k++ {
			if i == k {
				cost[i][m+k] = math.Pow(diagCost(a[i]), q)
			} else {
				cost[i][m+k] = inf
			}
		}
	}
	for j := 0; j < m; j++ {
		for k := 0; k < m; k++ {
			if j == k {
				cost[n+j][k] = math.Pow(diagCost(b[j]), q)
			} else {
				cost[n+j][k] = inf
			}
		}
		for k := 0; k < n; k++ {
			cost[n+j][m+k] = 0
		}
	}
	return cost
}

// greedyAssignmentCost approximates the minimum-cost perfect matching by
// repeatedly picking the cheapest still-available (row, column) pair.
func greedyAssignmentCost(cost [][]float64) float64 {
	n := len(cost)
	usedRow := make([]bool, n)
	usedCol := make([]bool, n)
	var total float64
	for assigned := 0; assigned < n; assigned++ {
		bestI, bestJ := -1, -1
		best := math.MaxFloat64
		for i := 0; i < n; i++ {
			if usedRow[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if usedCol[j] {
					continue
				}
				if cost[i][j] < best {
					best = cost[i][j]
					bestI, bestJ = i, j
				}
			}
		}
		usedRow[bestI] = true
		usedCol[bestJ] = true
		total += best
	}
	return total
}
