package graph

// Ranks computes a non-negative layering rank for every node in ids,
// given the forward adjacency map adj (node ID → successor IDs).
//
// If rootID is present in ids it is seeded at rank 0; otherwise the first
// node is. Ranking then relaxes iteratively, up to 2*len(ids) passes:
// an unranked node with at least one ranked predecessor is placed at
// max(predecessor ranks)+1; an unranked node with no predecessors but a
// ranked successor is placed at max(0, min(successor ranks)-1), so pure
// source nodes sit just above their earliest target. A pass that changes
// nothing ends the loop early.
//
// Nodes still unranked afterwards (cycles with no ranked entry point) get
// rank 0. This is a best-effort layering for visual placement, not a
// strict topological sort: cycles are broken by fiat, never rejected.
//
// Edges referencing IDs outside ids are ignored. An empty ids slice
// returns an empty table. Isolated nodes receive rank 0.
func Ranks(ids []string, adj map[string][]string, rootID string) map[string]int {
	ranks := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return ranks
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	succs := make(map[string][]string, len(ids))
	preds := make(map[string][]string, len(ids))
	for _, from := range ids {
		for _, to := range adj[from] {
			if !known[to] {
				continue
			}
			succs[from] = append(succs[from], to)
			preds[to] = append(preds[to], from)
		}
	}

	if known[rootID] {
		ranks[rootID] = 0
	} else {
		ranks[ids[0]] = 0
	}

	for pass := 0; pass < 2*len(ids); pass++ {
		changed := false
		for _, id := range ids {
			if _, done := ranks[id]; done {
				continue
			}
			if r, ok := maxRankedPred(preds[id], ranks); ok {
				ranks[id] = r + 1
				changed = true
				continue
			}
			if len(preds[id]) == 0 {
				if r, ok := minRankedSucc(succs[id], ranks); ok {
					ranks[id] = max(0, r-1)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// Anything left is a cycle with no ranked entry point.
	for _, id := range ids {
		if _, done := ranks[id]; !done {
			ranks[id] = 0
		}
	}
	return ranks
}

func maxRankedPred(preds []string, ranks map[string]int) (int, bool) {
	best, found := 0, false
	for _, p := range preds {
		if r, ok := ranks[p]; ok {
			if !found || r > best {
				best = r
			}
			found = true
		}
	}
	return best, found
}

func minRankedSucc(succs []string, ranks map[string]int) (int, bool) {
	best, found := 0, false
	for _, s := range succs {
		if r, ok := ranks[s]; ok {
			if !found || r < best {
				best = r
			}
			found = true
		}
	}
	return best, found
}
