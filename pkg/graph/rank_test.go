package graph

import "testing"

func TestRanks_Empty(t *testing.T) {
	ranks := Ranks(nil, nil, "user")
	if len(ranks) != 0 {
		t.Errorf("Ranks() returned %d entries, want 0", len(ranks))
	}
}

func TestRanks_SimpleChain(t *testing.T) {
	ids := []string{"a", "b", "c"}
	adj := map[string][]string{"a": {"b"}, "b": {"c"}}

	ranks := Ranks(ids, adj, "a")

	want := map[string]int{"a": 0, "b": 1, "c": 2}
	for id, w := range want {
		if ranks[id] != w {
			t.Errorf("ranks[%s] = %d, want %d", id, ranks[id], w)
		}
	}
}

func TestRanks_Totality(t *testing.T) {
	// Mix of chain, cycle, and isolated nodes - every node must be ranked.
	ids := []string{"a", "b", "c", "d", "e", "isolated"}
	adj := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"d"},
		"d": {"c"}, // cycle c<->d
		"e": {"a"},
	}

	ranks := Ranks(ids, adj, "a")

	if len(ranks) != len(ids) {
		t.Fatalf("Ranks() returned %d entries, want %d", len(ranks), len(ids))
	}
	for id, r := range ranks {
		if r < 0 {
			t.Errorf("ranks[%s] = %d, want non-negative", id, r)
		}
	}
}

func TestRanks_RootPriority(t *testing.T) {
	// Root participates in a cycle but keeps rank 0.
	ids := []string{"x", "user", "y"}
	adj := map[string][]string{
		"user": {"x"},
		"x":    {"y"},
		"y":    {"user"},
	}

	ranks := Ranks(ids, adj, "user")

	if ranks["user"] != 0 {
		t.Errorf("ranks[user] = %d, want 0", ranks["user"])
	}
}

func TestRanks_MonotonicOnAcyclic(t *testing.T) {
	ids := []string{"root", "a", "b", "c", "d"}
	adj := map[string][]string{
		"root": {"a", "b"},
		"a":    {"c"},
		"b":    {"c"},
		"c":    {"d"},
	}

	ranks := Ranks(ids, adj, "root")

	for from, tos := range adj {
		for _, to := range tos {
			if ranks[to] <= ranks[from] {
				t.Errorf("ranks[%s]=%d not greater than ranks[%s]=%d", to, ranks[to], from, ranks[from])
			}
		}
	}
}

func TestRanks_SourceNodePlacedAboveTarget(t *testing.T) {
	// "ext" has no predecessors but points at b (rank 1): it lands at
	// min(successor ranks)-1 = 0, clamped to 0.
	ids := []string{"a", "b", "ext"}
	adj := map[string][]string{
		"a":   {"b"},
		"ext": {"b"},
	}

	ranks := Ranks(ids, adj, "a")

	if ranks["ext"] != 0 {
		t.Errorf("ranks[ext] = %d, want 0", ranks["ext"])
	}
	if ranks["b"] != 1 {
		t.Errorf("ranks[b] = %d, want 1", ranks["b"])
	}
}

func TestRanks_IsolatedNodes(t *testing.T) {
	ids := []string{"a", "b"}

	ranks := Ranks(ids, nil, "missing-root")

	if ranks["a"] != 0 || ranks["b"] != 0 {
		t.Errorf("Ranks() = %v, want all zero", ranks)
	}
}

func TestRanks_MissingRootSeedsFirstNode(t *testing.T) {
	ids := []string{"b", "c"}
	adj := map[string][]string{"b": {"c"}}

	ranks := Ranks(ids, adj, "user")

	if ranks["b"] != 0 || ranks["c"] != 1 {
		t.Errorf("Ranks() = %v, want b:0 c:1", ranks)
	}
}

func TestRanks_IgnoresDanglingEdges(t *testing.T) {
	ids := []string{"a", "b"}
	adj := map[string][]string{"a": {"b", "ghost"}, "ghost": {"a"}}

	ranks := Ranks(ids, adj, "a")

	if len(ranks) != 2 {
		t.Fatalf("Ranks() returned %d entries, want 2", len(ranks))
	}
	if ranks["b"] != 1 {
		t.Errorf("ranks[b] = %d, want 1", ranks["b"])
	}
}

func TestRanks_Deterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	adj := map[string][]string{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}, "d": {"a"}}

	first := Ranks(ids, adj, "a")
	for i := 0; i < 5; i++ {
		again := Ranks(ids, adj, "a")
		for id := range first {
			if again[id] != first[id] {
				t.Fatalf("run %d: ranks[%s] = %d, want %d", i, id, again[id], first[id])
			}
		}
	}
}
