// Package dot emits the component dependency view as Graphviz DOT and
// renders it to SVG. DOT is the alternate output for toolchains that
// consume Graphviz instead of Mermaid; the Mermaid emitter remains the
// primary diagram surface.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/model"
	"github.com/matzehuels/secmap/pkg/styles"
)

// Options configures DOT emission.
type Options struct {
	// Detailed includes the computed rank in node labels.
	Detailed bool
}

// ToDOT converts the grouped, ranked component collection to DOT.
// Categories become Graphviz cluster subgraphs; ranks are carried as
// plain labels when Detailed is set since Graphviz computes its own
// layering from the edges.
func ToDOT(ds *model.Dataset, g *graph.Grouping, ranks map[string]int, cfg *styles.Config, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph secmap {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	comp := cfg.Node("component")
	for i, cat := range g.Categories {
		catStyle := cfg.Category(cat)
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", cat)
		if catStyle.Stroke != "" {
			fmt.Fprintf(&buf, "    color=%q;\n", catStyle.Stroke)
		}
		for _, id := range g.Members[cat] {
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%q];\n",
				id, nodeLabel(ds, id, ranks, opts.Detailed), comp.Fill)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, c := range ds.Components() {
		for _, to := range c.To {
			if ds.HasComponent(to) {
				fmt.Fprintf(&buf, "  %q -> %q;\n", c.ID, to)
			}
		}
	}

	// Same-rank groups keep Graphviz's layering aligned with the
	// computed ranks.
	byRank := make(map[int][]string)
	maxRank := 0
	for _, cat := range g.Categories {
		for _, id := range g.Members[cat] {
			r := ranks[id]
			byRank[r] = append(byRank[r], id)
			if r > maxRank {
				maxRank = r
			}
		}
	}
	for r := 0; r <= maxRank; r++ {
		if ids := byRank[r]; len(ids) > 1 {
			fmt.Fprintf(&buf, "  { rank=same; %s }\n", quoteList(ids))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(ds *model.Dataset, id string, ranks map[string]int, detailed bool) string {
	title := id
	if c, ok := ds.Component(id); ok {
		title = c.Title
	}
	if !detailed {
		return title
	}
	return fmt.Sprintf("%s\nrank: %d", title, ranks[id])
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// quoteList renders IDs for a DOT same-rank group statement.
func quoteList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return strings.Join(quoted, "; ")
}
