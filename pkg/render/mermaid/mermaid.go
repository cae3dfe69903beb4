// Package mermaid serializes ranked, clustered, optimized graph state
// into Mermaid flowchart syntax.
//
// Two views are emitted: the component dependency view (nested category
// and subcategory subgraphs, directed dependency edges, hidden anchor
// nodes that coax Mermaid's auto-layout into honoring the computed
// ranks) and the relation view (controls on one side, the optimized
// component or risk targets on the other, with cluster subgraphs and
// cyclic per-edge style buckets).
//
// All iteration follows input order, so the produced text is identical
// across runs for the same dataset.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/graph/cluster"
	"github.com/matzehuels/secmap/pkg/graph/relation"
	"github.com/matzehuels/secmap/pkg/model"
	"github.com/matzehuels/secmap/pkg/styles"
)

// minFanOutForBuckets is the minimum number of individual edges a source
// needs before its edges cycle through the style buckets. Sources below
// the threshold keep the default edge style.
const minFanOutForBuckets = 3

// Emitter produces Mermaid flowchart text. Styles are resolved through
// the injected configuration; Debug interleaves annotation comments with
// the emitted edges.
type Emitter struct {
	Styles *styles.Config
	Debug  bool
}

// New creates an emitter with the given style configuration.
func New(cfg *styles.Config) *Emitter {
	return &Emitter{Styles: cfg}
}

// Fence wraps diagram text in the fenced code-block marker recognized by
// documentation renderers.
func Fence(diagram string) string {
	return "```mermaid\n" + diagram + "```\n"
}

// ComponentsInput is the computed state for the component dependency view.
type ComponentsInput struct {
	Dataset  *model.Dataset
	Grouping *graph.Grouping
	Ranks    map[string]int
}

// RelationsInput is the computed state for a control relation view.
type RelationsInput struct {
	Dataset *model.Dataset
	// Kind of the target collection (components or risks).
	Kind model.Kind
	// Controls is the category grouping of the control collection.
	Controls *graph.Grouping
	// Targets is the category grouping of the target collection.
	Targets *graph.Grouping
	// Clusters are the dynamic subgroups discovered over the targets.
	Clusters []cluster.Cluster
	// Relations is the optimized control→target map.
	Relations *relation.Result
}

// doc accumulates diagram text and tracks the document-wide link
// sequence counter Mermaid's linkStyle directives index into. Invisible
// anchor links count too.
type doc struct {
	b     strings.Builder
	links int
}

func (d *doc) line(format string, args ...any) {
	fmt.Fprintf(&d.b, format, args...)
	d.b.WriteByte('\n')
}

// link emits an edge statement and returns its sequence number.
func (d *doc) link(format string, args ...any) int {
	seq := d.links
	d.links++
	d.line(format, args...)
	return seq
}

// Components renders the component dependency view.
func (e *Emitter) Components(in ComponentsInput) string {
	d := &doc{}
	d.line("flowchart TD")

	// Category subgraphs with nested subcategory blocks and the hidden
	// anchor/end placeholders.
	for _, cat := range in.Grouping.Categories {
		catID := sanitizeID(cat)
		d.line("    subgraph %s[%q]", catID, cat)
		d.line("        direction TB")
		d.line("        %s_anchor[\" \"]", catID)

		inSub := make(map[string]bool)
		for _, sub := range in.Grouping.Subcategories[cat] {
			for _, id := range in.Grouping.SubMembers[cat][sub] {
				inSub[id] = true
			}
		}
		for _, id := range in.Grouping.Members[cat] {
			if !inSub[id] {
				d.line("        %s[%q]", sanitizeID(id), e.title(in.Dataset, id))
			}
		}
		for _, sub := range in.Grouping.Subcategories[cat] {
			d.line("        subgraph %s_%s[%q]", catID, sanitizeID(sub), sub)
			for _, id := range in.Grouping.SubMembers[cat][sub] {
				d.line("            %s[%q]", sanitizeID(id), e.title(in.Dataset, id))
			}
			d.line("        end")
		}
		d.line("        %s_end[\" \"]", catID)
		d.line("    end")
	}
	d.line("")

	// Invisible anchor links. The tilde count grows with the node's rank
	// distance from the bucket's extremes so Mermaid stretches the
	// subgraph vertically in rank order.
	base := e.Styles.Layout().AnchorBase
	for _, cat := range in.Grouping.Categories {
		catID := sanitizeID(cat)
		minRank, maxRank := rankExtremes(in.Grouping.Members[cat], in.Ranks)
		for _, id := range in.Grouping.Members[cat] {
			r := in.Ranks[id]
			d.link("    %s_anchor %s %s", catID, tildes(base+r-minRank), sanitizeID(id))
			d.link("    %s %s %s_end", sanitizeID(id), tildes(base+maxRank-r), catID)
		}
	}
	d.line("")

	// Dependency edges in dataset order.
	for _, c := range in.Dataset.Components() {
		if e.Debug && len(c.To) > 0 {
			d.line("    %%%% %s rank=%d -> %v", c.ID, in.Ranks[c.ID], c.To)
		}
		for _, to := range c.To {
			if !in.Dataset.HasComponent(to) {
				continue
			}
			d.link("    %s --> %s", sanitizeID(c.ID), sanitizeID(to))
		}
	}
	d.line("")

	e.componentClasses(d, in.Grouping)
	return d.b.String()
}

// componentClasses emits the trailing style directives for the component
// view: hidden placeholders, the component node class, and per-category
// subgraph styling.
func (e *Emitter) componentClasses(d *doc, g *graph.Grouping) {
	d.line("    classDef hidden fill:none,stroke:none")
	var hidden []string
	for _, cat := range g.Categories {
		catID := sanitizeID(cat)
		hidden = append(hidden, catID+"_anchor", catID+"_end")
	}
	if len(hidden) > 0 {
		d.line("    class %s hidden", strings.Join(hidden, ","))
	}

	d.line("    classDef component %s", styleAttrs(e.Styles.Node("component")))
	var members []string
	for _, cat := range g.Categories {
		for _, id := range g.Members[cat] {
			members = append(members, sanitizeID(id))
		}
	}
	if len(members) > 0 {
		d.line("    class %s component", strings.Join(members, ","))
	}

	for _, cat := range g.Categories {
		d.line("    style %s %s", sanitizeID(cat), styleAttrs(e.Styles.Category(cat)))
	}
}

// Relations renders a control relation view against the component or
// risk collection.
func (e *Emitter) Relations(in RelationsInput) string {
	d := &doc{}
	d.line("flowchart LR")

	// Source side: controls grouped by category.
	d.line("    subgraph %s[%q]", model.KindControl.Container(), "Controls")
	d.line("        direction TB")
	for _, cat := range in.Controls.Categories {
		d.line("        subgraph ctl_%s[%q]", sanitizeID(cat), cat)
		for _, id := range in.Controls.Members[cat] {
			d.line("            %s[%q]", sanitizeID(id), e.title(in.Dataset, id))
		}
		d.line("        end")
	}
	d.line("    end")

	// Target side: the universal container holding category subgraphs,
	// with cluster subgraphs nested inside their owning category.
	container := in.Kind.Container()
	d.line("    subgraph %s[%q]", container, titleCase(container))
	d.line("        direction TB")
	clustered := make(map[string]bool)
	for _, c := range in.Clusters {
		for _, m := range c.Members {
			clustered[m] = true
		}
	}
	for _, cat := range in.Targets.Categories {
		d.line("        subgraph %s[%q]", sanitizeID(cat), cat)
		for _, id := range in.Targets.Members[cat] {
			if !clustered[id] {
				d.line("            %s[%q]", sanitizeID(id), e.title(in.Dataset, id))
			}
		}
		for _, c := range in.Clusters {
			if c.Category != cat {
				continue
			}
			d.line("            subgraph %s[%q]", sanitizeID(c.Name), c.Name)
			for _, m := range c.Members {
				d.line("                %s[%q]", sanitizeID(m), e.title(in.Dataset, m))
			}
			d.line("            end")
		}
		d.line("        end")
	}
	d.line("    end")
	d.line("")

	// Edges, with bucket assignment for high-fan-out sources.
	assigner := relation.NewAssigner()
	var universal []int
	compact := compactTargets(in)

	for _, src := range in.Relations.Sources {
		targets := in.Relations.Targets[src]
		if len(targets) == 0 {
			continue
		}
		if e.Debug {
			d.line("    %%%% %s -> %s", src, strings.Join(targets, ", "))
		}
		srcID := sanitizeID(src)
		if in.Relations.Universal[src] {
			universal = append(universal, d.link("    %s ==> %s", srcID, container))
			continue
		}

		individuals := 0
		for _, t := range targets {
			if !compact[t] {
				individuals++
			}
		}
		assigner.StartSource()
		for _, t := range targets {
			seq := d.link("    %s --> %s", srcID, sanitizeID(t))
			if !compact[t] && individuals >= minFanOutForBuckets {
				assigner.Record(seq)
			}
		}
	}

	d.line("")
	e.relationClasses(d, in, assigner, universal)
	return d.b.String()
}

func (e *Emitter) title(ds *model.Dataset, id string) string {
	if c, ok := ds.Component(id); ok {
		return escapeLabel(c.Title)
	}
	if c, ok := ds.Control(id); ok {
		return escapeLabel(c.Title)
	}
	if r, ok := ds.Risk(id); ok {
		return escapeLabel(r.Title)
	}
	return escapeLabel(id)
}
