package diagram

// bipartiteMatch runs Kuhn's augmenting-path algorithm over the
// compatibility graph adj (adj[i] lists the right-side vertices that
// left-side vertex i may match). order controls which left vertices are
// attempted first; callers that need a specific subset saturated (the
// diagonal-forced points in bottleneckDistance) list that subset first so
// an existing augmenting path is found for them before any optional
// vertex consumes it.
func bipartiteMatch(nLeft, nRight int, adj [][]int, order []int) (matchLeft []int, matched int) {
	matchLeft = make([]int, nLeft)
	matchRight := make([]int, nRight)
	for i := range matchLeft {
		matchLeft[i] = -1
	}
	for j := range matchRight {
		matchRight[j] = -1
	}

	var tryAugment func(u int, visited []bool) bool
	tryAugment = func(u int, visited []bool) bool {
		for _, v := range adj[u] {
			if visited[v] {
				continue
			}
			visited[v] = true
			if matchRight[v] == -1 || tryAugment(matchRight[v], visited) {
				matchRight[v] = u
				matchLeft[u] = v
				return true
			}
		}
		return false
	}

	for _, u := range order {
		visited := make([]bool, nRight)
		if tryAugment(u, visited) {
			matched++
		}
	}
	return matchLeft, matched
}
