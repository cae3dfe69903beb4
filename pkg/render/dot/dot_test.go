package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/model"
	"github.com/matzehuels/secmap/pkg/styles"
)

func TestToDOT(t *testing.T) {
	ds := model.NewDataset()
	ds.AddComponent(&model.Component{ID: "a", Title: "Service A", Category: "Services", To: []string{"b"}})
	ds.AddComponent(&model.Component{ID: "b", Title: "Store B", Category: "Data"})
	g := graph.GroupComponents(ds.Components())
	ranks := graph.Ranks(ds.ComponentIDs(), ds.ComponentAdjacency(), "a")

	out := ToDOT(ds, g, ranks, styles.NewConfig(""), Options{})

	for _, want := range []string{
		"digraph secmap {",
		"rankdir=TB;",
		`label="Services";`,
		`"a" [label="Service A"`,
		`"a" -> "b";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, out)
		}
	}
}

func TestToDOT_DetailedIncludesRank(t *testing.T) {
	ds := model.NewDataset()
	ds.AddComponent(&model.Component{ID: "a", Title: "A", Category: "X", To: []string{"b"}})
	ds.AddComponent(&model.Component{ID: "b", Title: "B", Category: "X"})
	g := graph.GroupComponents(ds.Components())
	ranks := graph.Ranks(ds.ComponentIDs(), ds.ComponentAdjacency(), "a")

	out := ToDOT(ds, g, ranks, styles.NewConfig(""), Options{Detailed: true})

	if !strings.Contains(out, "rank: 1") {
		t.Errorf("ToDOT(Detailed) missing rank label\n%s", out)
	}
}

func TestToDOT_SameRankGroups(t *testing.T) {
	ds := model.NewDataset()
	ds.AddComponent(&model.Component{ID: "root", Title: "R", Category: "X", To: []string{"a", "b"}})
	ds.AddComponent(&model.Component{ID: "a", Title: "A", Category: "X"})
	ds.AddComponent(&model.Component{ID: "b", Title: "B", Category: "X"})
	g := graph.GroupComponents(ds.Components())
	ranks := graph.Ranks(ds.ComponentIDs(), ds.ComponentAdjacency(), "root")

	out := ToDOT(ds, g, ranks, styles.NewConfig(""), Options{})

	if !strings.Contains(out, `{ rank=same; "a"; "b" }`) {
		t.Errorf("ToDOT() missing same-rank group\n%s", out)
	}
}
