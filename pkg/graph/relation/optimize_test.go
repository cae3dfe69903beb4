package relation

import (
	"testing"

	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/graph/cluster"
	"github.com/matzehuels/secmap/pkg/model"
)

func componentUniverse(t *testing.T, comps []*model.Component, clusters []cluster.Cluster) Universe {
	t.Helper()
	ids := make([]string, len(comps))
	for i, c := range comps {
		ids[i] = c.ID
	}
	return Universe{
		Kind:     model.KindComponent,
		IDs:      ids,
		Grouping: graph.GroupComponents(comps),
		Clusters: clusters,
	}
}

func TestOptimize_FullCategorySubstitution(t *testing.T) {
	u := componentUniverse(t, []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
		{ID: "comp2", Title: "C2", Category: "Data"},
		{ID: "comp3", Title: "C3", Category: "Services"},
	}, nil)

	res := Optimize([]string{"C1"}, map[string]model.RefList{
		"C1": model.Refs("comp1", "comp2"),
	}, u)

	got := res.Targets["C1"]
	if len(got) != 1 || got[0] != "Data" {
		t.Errorf("Targets[C1] = %v, want [Data]", got)
	}
	if res.Universal["C1"] {
		t.Error("Universal[C1] = true, want false")
	}
}

func TestOptimize_UniversalSentinel(t *testing.T) {
	u := componentUniverse(t, []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
	}, nil)

	res := Optimize([]string{"C2"}, map[string]model.RefList{
		"C2": model.AllRefs(),
	}, u)

	got := res.Targets["C2"]
	if len(got) != 1 || got[0] != "components" {
		t.Errorf("Targets[C2] = %v, want [components]", got)
	}
	if !res.Universal["C2"] {
		t.Error("Universal[C2] = false, want true")
	}
}

func TestOptimize_NoneAndEmpty(t *testing.T) {
	u := componentUniverse(t, []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
	}, nil)

	res := Optimize([]string{"none", "empty"}, map[string]model.RefList{
		"none":  model.Refs(model.SentinelNone),
		"empty": model.Refs(),
	}, u)

	if len(res.Targets["none"]) != 0 {
		t.Errorf("Targets[none] = %v, want empty", res.Targets["none"])
	}
	if len(res.Targets["empty"]) != 0 {
		t.Errorf("Targets[empty] = %v, want empty", res.Targets["empty"])
	}
}

func TestOptimize_ClusterBeatsCategory(t *testing.T) {
	comps := []*model.Component{
		{ID: "svc-a", Title: "A", Category: "Services"},
		{ID: "svc-b", Title: "B", Category: "Services"},
		{ID: "svc-c", Title: "C", Category: "Services"},
	}
	clusters := []cluster.Cluster{
		{Name: "svc", Category: "Services", Members: []string{"svc-a", "svc-b"}},
	}
	u := componentUniverse(t, comps, clusters)

	res := Optimize([]string{"ctrl"}, map[string]model.RefList{
		"ctrl": model.Refs("svc-a", "svc-b"),
	}, u)

	got := res.Targets["ctrl"]
	if len(got) != 1 || got[0] != "svc" {
		t.Errorf("Targets[ctrl] = %v, want [svc]", got)
	}
}

func TestOptimize_PartialCoverageFallsBackToIndividuals(t *testing.T) {
	u := componentUniverse(t, []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
		{ID: "comp2", Title: "C2", Category: "Data"},
		{ID: "comp3", Title: "C3", Category: "Data"},
	}, nil)

	res := Optimize([]string{"ctrl"}, map[string]model.RefList{
		"ctrl": model.Refs("comp2", "comp1"),
	}, u)

	// Only two of three Data members: no substitution, sorted individuals.
	got := res.Targets["ctrl"]
	if len(got) != 2 || got[0] != "comp1" || got[1] != "comp2" {
		t.Errorf("Targets[ctrl] = %v, want [comp1 comp2]", got)
	}
}

func TestOptimize_DropsDanglingReferences(t *testing.T) {
	// Two Data members, only one referenced: category substitution can
	// never trigger, so the output isolates the dangling-drop behavior.
	u := componentUniverse(t, []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
		{ID: "comp2", Title: "C2", Category: "Data"},
	}, nil)

	res := Optimize([]string{"ctrl"}, map[string]model.RefList{
		"ctrl": model.Refs("comp1", "ghost"),
	}, u)

	got := res.Targets["ctrl"]
	if len(got) != 1 || got[0] != "comp1" {
		t.Errorf("Targets[ctrl] = %v, want [comp1] (ghost dropped silently)", got)
	}
}

func TestOptimize_ClusterOfFive(t *testing.T) {
	// Five components clustered by two shared controls; a control that
	// references exactly those five optimizes to the single cluster name.
	comps := []*model.Component{
		{ID: "comp1", Title: "C1", Category: "Data"},
		{ID: "comp2", Title: "C2", Category: "Data"},
		{ID: "comp3", Title: "C3", Category: "Data"},
		{ID: "comp4", Title: "C4", Category: "Data"},
		{ID: "comp5", Title: "C5", Category: "Data"},
		{ID: "other", Title: "O", Category: "Data"},
	}
	relations := map[string][]string{}
	for i := 1; i <= 5; i++ {
		relations[comps[i-1].ID] = []string{"ctrl1", "ctrl2"}
	}
	grouping := graph.GroupComponents(comps)
	clusters := cluster.FindByCategory(grouping, relations, cluster.Config{})
	if len(clusters) != 1 || len(clusters[0].Members) != 5 {
		t.Fatalf("clusters = %+v, want one cluster of five", clusters)
	}

	u := Universe{
		Kind:     model.KindComponent,
		IDs:      []string{"comp1", "comp2", "comp3", "comp4", "comp5", "other"},
		Grouping: grouping,
		Clusters: clusters,
	}
	res := Optimize([]string{"ctrl1"}, map[string]model.RefList{
		"ctrl1": model.Refs("comp1", "comp2", "comp3", "comp4", "comp5"),
	}, u)

	got := res.Targets["ctrl1"]
	if len(got) != 1 || got[0] != clusters[0].Name {
		t.Errorf("Targets[ctrl1] = %v, want [%s]", got, clusters[0].Name)
	}
}

func TestOptimize_DisjointCover(t *testing.T) {
	comps := []*model.Component{
		{ID: "a1", Title: "A1", Category: "Alpha"},
		{ID: "a2", Title: "A2", Category: "Alpha"},
		{ID: "b1", Title: "B1", Category: "Beta"},
		{ID: "b2", Title: "B2", Category: "Beta"},
		{ID: "b3", Title: "B3", Category: "Beta"},
	}
	u := componentUniverse(t, comps, []cluster.Cluster{
		{Name: "bpair", Category: "Beta", Members: []string{"b1", "b2"}},
	})

	raw := model.Refs("a1", "a2", "b1", "b2", "b3")
	res := Optimize([]string{"ctrl"}, map[string]model.RefList{"ctrl": raw}, u)

	// Expand every identifier back to node IDs; the union must equal the
	// declared set with no ID reachable via two representations.
	expand := map[string][]string{
		"Alpha": {"a1", "a2"},
		"Beta":  {"b1", "b2", "b3"},
		"bpair": {"b1", "b2"},
	}
	seen := map[string]int{}
	for _, target := range res.Targets["ctrl"] {
		members, ok := expand[target]
		if !ok {
			members = []string{target}
		}
		for _, id := range members {
			seen[id]++
		}
	}
	for _, id := range raw.IDs() {
		if seen[id] != 1 {
			t.Errorf("node %s covered %d times, want exactly once (targets: %v)",
				id, seen[id], res.Targets["ctrl"])
		}
	}
}
