// Package validate checks a loaded dataset for cross-reference
// consistency before the layout engine runs.
//
// The central check is the bidirectional edge comparison: every
// component edge a→b declared in a's "to" list must appear in b's
// "from" list and vice versa. Control references to unknown components
// or risks are reported too. Findings are advisory - the engine itself
// silently drops dangling references - but surfacing them here lets
// authors fix the dataset instead of silently losing edges.
package validate

import (
	"fmt"

	"github.com/matzehuels/secmap/pkg/model"
)

// Finding describes a single consistency problem.
type Finding struct {
	// Kind classifies the problem (e.g. "missing-from", "unknown-ref").
	Kind string
	// Source is the node declaring the reference.
	Source string
	// Target is the referenced node.
	Target string
	// Message is the human-readable description.
	Message string
}

func (f Finding) String() string { return f.Message }

// Finding kinds.
const (
	KindMissingFrom = "missing-from"
	KindMissingTo   = "missing-to"
	KindUnknownRef  = "unknown-ref"
)

// Dataset runs all consistency checks and returns the findings in
// deterministic dataset order. An empty result means the dataset is
// fully consistent.
func Dataset(ds *model.Dataset) []Finding {
	var findings []Finding
	findings = append(findings, componentEdges(ds)...)
	findings = append(findings, controlRefs(ds)...)
	return findings
}

// componentEdges performs the two-way set-difference check between the
// forward and reverse component edge lists.
func componentEdges(ds *model.Dataset) []Finding {
	var findings []Finding
	for _, c := range ds.Components() {
		for _, to := range c.To {
			target, ok := ds.Component(to)
			if !ok {
				findings = append(findings, unknownRef(c.ID, to, "component"))
				continue
			}
			if !contains(target.From, c.ID) {
				findings = append(findings, Finding{
					Kind:    KindMissingFrom,
					Source:  c.ID,
					Target:  to,
					Message: fmt.Sprintf("component %s declares edge to %s, but %s does not list %s in from", c.ID, to, to, c.ID),
				})
			}
		}
		for _, from := range c.From {
			source, ok := ds.Component(from)
			if !ok {
				findings = append(findings, unknownRef(c.ID, from, "component"))
				continue
			}
			if !contains(source.To, c.ID) {
				findings = append(findings, Finding{
					Kind:    KindMissingTo,
					Source:  c.ID,
					Target:  from,
					Message: fmt.Sprintf("component %s declares edge from %s, but %s does not list %s in to", c.ID, from, from, c.ID),
				})
			}
		}
	}
	return findings
}

// controlRefs checks explicit control reference lists against the
// referenced collections. Sentinel lists have nothing to check.
func controlRefs(ds *model.Dataset) []Finding {
	var findings []Finding
	for _, c := range ds.Controls() {
		for _, id := range c.Components.IDs() {
			if !ds.HasComponent(id) {
				findings = append(findings, unknownRef(c.ID, id, "component"))
			}
		}
		for _, id := range c.Risks.IDs() {
			if !ds.HasRisk(id) {
				findings = append(findings, unknownRef(c.ID, id, "risk"))
			}
		}
	}
	return findings
}

func unknownRef(source, target, kind string) Finding {
	return Finding{
		Kind:    KindUnknownRef,
		Source:  source,
		Target:  target,
		Message: fmt.Sprintf("%s references unknown %s %s", source, kind, target),
	}
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
