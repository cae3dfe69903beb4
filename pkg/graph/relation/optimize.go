// Package relation rewrites raw many-to-many relation maps into minimal,
// non-redundant target sets, and assigns cyclic style buckets to the
// individual edges that remain.
//
// The optimizer prefers whole-cluster coverage over whole-category
// coverage over individual target lists: a source that references every
// member of a cluster or category gets the single compact identifier
// instead of the full list. Sentinel relations ("all"/"none") collapse to
// the universal container identifier or to an empty list. There is no
// error path anywhere in this package - sources that cover nothing
// compactly simply degrade to individual IDs.
package relation

import (
	"sort"

	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/graph/cluster"
	"github.com/matzehuels/secmap/pkg/model"
)

// Universe describes the target side of a relation: the valid target
// collection, its category grouping, and the clusters discovered over it.
type Universe struct {
	// Kind of the target collection; its Container() is emitted for
	// universal ("all") sources.
	Kind model.Kind
	// IDs lists the valid target IDs. Raw entries outside this set are
	// dropped silently - dangling references are the upstream
	// validator's problem, never an error here.
	IDs []string
	// Grouping is the category partition of the target collection.
	Grouping *graph.Grouping
	// Clusters are checked before categories: a cluster is strictly more
	// specific, being always a subset of exactly one category.
	Clusters []cluster.Cluster
}

// Result is the optimized relation map. For every source the target list
// holds cluster names, category IDs, and individual node IDs - never two
// representations of the same underlying node.
type Result struct {
	// Sources lists source IDs in input order.
	Sources []string
	// Targets maps source ID → ordered target identifiers.
	Targets map[string][]string
	// Universal marks sources whose raw relation was the "all" sentinel;
	// the emitter styles their single container edge distinctly.
	Universal map[string]bool
}

// Optimize rewrites the raw source→targets relation map into its minimal
// cover. Per source: the "all" sentinel becomes the universal container
// identifier, "none"/empty becomes an empty list, and explicit lists are
// filtered to valid IDs and then greedily reduced - clusters first, then
// categories - wherever the source covers an entire membership. Leftover
// individual IDs are emitted sorted for determinism.
func Optimize(sources []string, raw map[string]model.RefList, u Universe) *Result {
	valid := make(map[string]bool, len(u.IDs))
	for _, id := range u.IDs {
		valid[id] = true
	}

	res := &Result{
		Sources:   sources,
		Targets:   make(map[string][]string, len(sources)),
		Universal: make(map[string]bool),
	}
	for _, src := range sources {
		refs := raw[src]
		switch {
		case refs.IsAll():
			res.Targets[src] = []string{u.Kind.Container()}
			res.Universal[src] = true
		case refs.IsNone():
			res.Targets[src] = nil
		default:
			res.Targets[src] = reduce(refs.IDs(), valid, u)
		}
	}
	return res
}

// reduce filters the raw ID list and substitutes full-coverage clusters
// and categories for their members.
func reduce(rawIDs []string, valid map[string]bool, u Universe) []string {
	remaining := make(map[string]bool, len(rawIDs))
	for _, id := range rawIDs {
		if valid[id] {
			remaining[id] = true
		}
	}

	var targets []string
	for _, c := range u.Clusters {
		if covers(remaining, c.Members) {
			targets = append(targets, c.Name)
			claim(remaining, c.Members)
		}
	}
	if u.Grouping != nil {
		for _, cat := range u.Grouping.Categories {
			if covers(remaining, u.Grouping.Members[cat]) {
				targets = append(targets, cat)
				claim(remaining, u.Grouping.Members[cat])
			}
		}
	}

	leftover := make([]string, 0, len(remaining))
	for id := range remaining {
		leftover = append(leftover, id)
	}
	sort.Strings(leftover)
	return append(targets, leftover...)
}

// covers reports whether every member is still unclaimed. Empty member
// lists never count as covered.
func covers(remaining map[string]bool, members []string) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !remaining[m] {
			return false
		}
	}
	return true
}

func claim(remaining map[string]bool, members []string) {
	for _, m := range members {
		delete(remaining, m)
	}
}
