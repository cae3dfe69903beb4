// Package cluster discovers dynamic subgroups of nodes that share enough
// relational overlap to be collapsed into a single visual unit.
//
// The pass is Union-Find based: every pair of nodes whose external
// relation sets (e.g. the controls referencing each component) intersect
// in at least MinShared elements is merged. Resulting groups smaller than
// MinNodes are discarded. Clustering runs independently per category so
// that dynamic subgroups never span the static category hierarchy.
package cluster

import (
	"fmt"
	"strings"

	"github.com/matzehuels/secmap/pkg/graph"
)

const (
	// DefaultMinShared is the minimum relation-set overlap between two
	// nodes for them to be merged into the same cluster.
	DefaultMinShared = 2

	// DefaultMinNodes is the minimum cluster size; smaller groups stand
	// alone as individual nodes.
	DefaultMinNodes = 2

	// minPrefixLen is the shortest common ID prefix considered meaningful
	// for naming; anything this short falls back to a numbered name.
	minPrefixLen = 2
)

// Config controls cluster discovery. The zero value is usable; zero
// thresholds fall back to the package defaults.
type Config struct {
	// MinShared is the pairwise overlap threshold (default 2).
	MinShared int
	// MinNodes is the minimum retained cluster size (default 2).
	MinNodes int
	// StripPrefix is a fixed type prefix (e.g. "comp-") removed from
	// member IDs before deriving a cluster's display name.
	StripPrefix string
}

func (c Config) minShared() int {
	if c.MinShared > 0 {
		return c.MinShared
	}
	return DefaultMinShared
}

func (c Config) minNodes() int {
	if c.MinNodes > 0 {
		return c.MinNodes
	}
	return DefaultMinNodes
}

// Cluster is a named group of two or more node IDs. Clusters are created
// once per optimization pass and never mutated afterwards; membership is
// disjoint across clusters.
type Cluster struct {
	Name     string
	Category string
	Members  []string
}

// Find groups the given nodes by shared relation overlap. ids is the
// node collection in input order; relations maps each node ID to the IDs
// of the external relation it participates in. The returned clusters are
// ordered by the input position of their first member, with members in
// input order, so repeated runs over the same input yield identical
// results.
//
// Names are derived from the longest common prefix of member IDs after
// StripPrefix removal, falling back to "Subgroup N" when the prefix is
// too short to be meaningful.
func Find(ids []string, relations map[string][]string, cfg Config) []Cluster {
	subgroup := 0
	return find(ids, relations, cfg, &subgroup)
}

// find is Find with a caller-owned fallback counter, so one discovery
// pass over several node collections never reuses a "Subgroup N" name.
func find(ids []string, relations map[string][]string, cfg Config, subgroup *int) []Cluster {
	groups := group(ids, relations, cfg)
	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		name := commonPrefixName(members, cfg.StripPrefix)
		if name == "" {
			*subgroup++
			name = fmt.Sprintf("Subgroup %d", *subgroup)
		}
		clusters = append(clusters, Cluster{Name: name, Members: members})
	}
	return clusters
}

// FindByCategory runs cluster discovery independently per category of the
// grouping, skipping categories with fewer than MinNodes members. Cluster
// names that collide with an existing category ID are disambiguated by
// suffixing the owning category's name. The "Subgroup N" fallback counter
// spans the whole pass, so fallback names stay unique across categories.
func FindByCategory(g *graph.Grouping, relations map[string][]string, cfg Config) []Cluster {
	var clusters []Cluster
	subgroup := 0
	for _, cat := range g.Categories {
		members := g.Members[cat]
		if len(members) < cfg.minNodes() {
			continue
		}
		for _, c := range find(members, relations, cfg, &subgroup) {
			c.Category = cat
			if g.HasCategory(c.Name) {
				c.Name = c.Name + " " + cat
			}
			clusters = append(clusters, c)
		}
	}
	return clusters
}

// group performs the Union-Find merge and extracts retained member sets
// in deterministic order.
func group(ids []string, relations map[string][]string, cfg Config) [][]string {
	uf := newUnionFind(ids)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if overlap(relations[ids[i]], relations[ids[j]]) >= cfg.minShared() {
				uf.union(ids[i], ids[j])
			}
		}
	}

	byRoot := make(map[string][]string)
	var rootOrder []string
	for _, id := range ids {
		root := uf.find(id)
		if _, seen := byRoot[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		byRoot[root] = append(byRoot[root], id)
	}

	var groups [][]string
	for _, root := range rootOrder {
		if members := byRoot[root]; len(members) >= cfg.minNodes() {
			groups = append(groups, members)
		}
	}
	return groups
}

func overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	n := 0
	for _, id := range b {
		if set[id] {
			n++
			set[id] = false // count duplicates once
		}
	}
	return n
}

// commonPrefixName derives a display name from the longest common prefix
// of member IDs, with the type prefix stripped. Returns "" when the
// prefix is too short to be meaningful.
func commonPrefixName(members []string, strip string) string {
	prefix := strings.TrimPrefix(members[0], strip)
	for _, m := range members[1:] {
		m = strings.TrimPrefix(m, strip)
		for !strings.HasPrefix(m, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	prefix = strings.TrimRight(prefix, "-_ ")
	if len(prefix) <= minPrefixLen {
		return ""
	}
	return prefix
}
