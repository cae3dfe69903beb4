package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/secmap/pkg/graph/relation"
	"github.com/matzehuels/secmap/pkg/styles"
)

// relationClasses emits the trailing style directives for a relation
// view: node classes per kind, cluster and category subgraph styling,
// the universal linkStyle, and one linkStyle per populated edge bucket.
func (e *Emitter) relationClasses(d *doc, in RelationsInput, assigner *relation.Assigner, universal []int) {
	d.line("    classDef control %s", styleAttrs(e.Styles.Node("control")))
	var ctrls []string
	for _, cat := range in.Controls.Categories {
		for _, id := range in.Controls.Members[cat] {
			ctrls = append(ctrls, sanitizeID(id))
		}
	}
	if len(ctrls) > 0 {
		d.line("    class %s control", strings.Join(ctrls, ","))
	}

	kind := string(in.Kind)
	d.line("    classDef %s %s", kind, styleAttrs(e.Styles.Node(kind)))
	var targets []string
	for _, cat := range in.Targets.Categories {
		for _, id := range in.Targets.Members[cat] {
			targets = append(targets, sanitizeID(id))
		}
	}
	if len(targets) > 0 {
		d.line("    class %s %s", strings.Join(targets, ","), kind)
	}

	for _, c := range in.Clusters {
		d.line("    style %s %s", sanitizeID(c.Name), styleAttrs(e.Styles.Node("cluster")))
	}
	for _, cat := range in.Targets.Categories {
		d.line("    style %s %s", sanitizeID(cat), styleAttrs(e.Styles.Category(cat)))
	}

	if len(universal) > 0 {
		d.line("    linkStyle %s %s", joinSeqs(universal), edgeAttrs(e.Styles.Universal()))
	}
	buckets := assigner.Buckets()
	for i, seqs := range buckets {
		if len(seqs) == 0 {
			continue
		}
		d.line("    linkStyle %s %s", joinSeqs(seqs), edgeAttrs(e.Styles.Bucket(i)))
	}
}

// compactTargets returns the set of target identifiers that stand for a
// group rather than an individual node: cluster names, category IDs, and
// the universal container.
func compactTargets(in RelationsInput) map[string]bool {
	compact := map[string]bool{in.Kind.Container(): true}
	for _, c := range in.Clusters {
		compact[c.Name] = true
	}
	for _, cat := range in.Targets.Categories {
		compact[cat] = true
	}
	return compact
}

// rankExtremes returns the minimum and maximum rank among the members.
func rankExtremes(members []string, ranks map[string]int) (int, int) {
	minRank, maxRank := 0, 0
	for i, id := range members {
		r := ranks[id]
		if i == 0 || r < minRank {
			minRank = r
		}
		if i == 0 || r > maxRank {
			maxRank = r
		}
	}
	return minRank, maxRank
}

func tildes(n int) string {
	if n < 3 {
		n = 3 // Mermaid's minimum invisible-link length
	}
	return strings.Repeat("~", n)
}

// sanitizeID makes an identifier safe for Mermaid node and subgraph
// references. Display text is unaffected - labels carry the raw title.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinSeqs(seqs []int) string {
	parts := make([]string, len(seqs))
	for i, s := range seqs {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ",")
}

// styleAttrs renders a node/subgraph style record as Mermaid attributes.
func styleAttrs(s styles.Style) string {
	var parts []string
	if s.Fill != "" {
		parts = append(parts, "fill:"+s.Fill)
	}
	parts = append(parts, strokeAttrs(s)...)
	if s.Color != "" {
		parts = append(parts, "color:"+s.Color)
	}
	return strings.Join(parts, ",")
}

// edgeAttrs renders an edge style record; edges have no fill.
func edgeAttrs(s styles.Style) string {
	return strings.Join(strokeAttrs(s), ",")
}

func strokeAttrs(s styles.Style) []string {
	var parts []string
	if s.Stroke != "" {
		parts = append(parts, "stroke:"+s.Stroke)
	}
	if s.Width > 0 {
		parts = append(parts, fmt.Sprintf("stroke-width:%gpx", s.Width))
	}
	if s.Dash != "" {
		parts = append(parts, "stroke-dasharray:"+s.Dash)
	}
	return parts
}
