package graph

import "github.com/matzehuels/secmap/pkg/model"

// Grouping partitions a node collection into category buckets.
// Bucket membership follows the input collection's iteration order; callers
// that need sorted output sort at emission time.
type Grouping struct {
	// Categories lists category IDs in first-seen order.
	Categories []string
	// Members maps category ID → member node IDs in input order.
	Members map[string][]string

	// Subcategories maps category ID → subcategory IDs in first-seen order.
	// Populated only by GroupComponents, and only for nodes that declare a
	// subcategory; nodes without one remain solely in Members.
	Subcategories map[string][]string
	// SubMembers maps category ID → subcategory ID → member node IDs.
	SubMembers map[string]map[string][]string
}

// Category returns the category owning the given node ID, or "" if the
// node is not part of the grouping.
func (g *Grouping) Category(id string) string {
	for _, cat := range g.Categories {
		for _, member := range g.Members[cat] {
			if member == id {
				return cat
			}
		}
	}
	return ""
}

// HasCategory reports whether the grouping contains the given category ID.
func (g *Grouping) HasCategory(cat string) bool {
	_, ok := g.Members[cat]
	return ok
}

// GroupNodes partitions nodes by category in a single pass.
func GroupNodes(nodes []model.Node) *Grouping {
	g := &Grouping{
		Members:       make(map[string][]string),
		Subcategories: make(map[string][]string),
		SubMembers:    make(map[string]map[string][]string),
	}
	for _, n := range nodes {
		cat := n.NodeCategory()
		if _, seen := g.Members[cat]; !seen {
			g.Categories = append(g.Categories, cat)
		}
		g.Members[cat] = append(g.Members[cat], n.NodeID())
	}
	return g
}

// GroupComponents partitions components by category and additionally
// builds the nested category → subcategory → node IDs mapping for
// components that declare a subcategory.
func GroupComponents(comps []*model.Component) *Grouping {
	nodes := make([]model.Node, len(comps))
	for i, c := range comps {
		nodes[i] = c
	}
	g := GroupNodes(nodes)

	for _, c := range comps {
		if c.Subcategory == "" {
			continue
		}
		subs := g.SubMembers[c.Category]
		if subs == nil {
			subs = make(map[string][]string)
			g.SubMembers[c.Category] = subs
		}
		if _, seen := subs[c.Subcategory]; !seen {
			g.Subcategories[c.Category] = append(g.Subcategories[c.Category], c.Subcategory)
		}
		subs[c.Subcategory] = append(subs[c.Subcategory], c.ID)
	}
	return g
}
