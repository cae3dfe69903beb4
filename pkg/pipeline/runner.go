package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/secmap/pkg/errors"
	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/graph/cluster"
	"github.com/matzehuels/secmap/pkg/graph/relation"
	"github.com/matzehuels/secmap/pkg/loader"
	"github.com/matzehuels/secmap/pkg/model"
	"github.com/matzehuels/secmap/pkg/render/dot"
	"github.com/matzehuels/secmap/pkg/render/mermaid"
	"github.com/matzehuels/secmap/pkg/styles"
	"github.com/matzehuels/secmap/pkg/validate"
)

// Runner encapsulates pipeline execution. Both the CLI and the preview
// server use this to avoid duplicating orchestration logic.
//
// The Runner is stateless except for the style configuration and the
// logger - it doesn't store pipeline results. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Styles *styles.Config
	Logger *log.Logger
}

// NewRunner creates a runner with the given style configuration.
// If cfg is nil, the built-in style defaults are used.
// If logger is nil, log.Default() is used.
func NewRunner(cfg *styles.Config, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = styles.NewConfig("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Styles: cfg,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → emit pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	ds, findings, err := r.Load(opts)
	if err != nil {
		return nil, err
	}
	// The default root may legitimately be absent; an explicit one that
	// is missing is a typo worth failing on.
	if opts.RootID != DefaultRootID && !ds.HasComponent(opts.RootID) {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "root component %q not in model", opts.RootID)
	}
	result.Dataset = ds
	result.Findings = findings
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ComponentCount = len(ds.Components())
	result.Stats.ControlCount = len(ds.Controls())
	result.Stats.RiskCount = len(ds.Risks())
	result.Stats.FindingCount = len(findings)

	opts.Logger.Info("loaded model",
		"run", result.RunID,
		"components", result.Stats.ComponentCount,
		"controls", result.Stats.ControlCount,
		"risks", result.Stats.RiskCount,
		"duration", result.Stats.LoadTime)
	for _, f := range findings {
		opts.Logger.Warn("model inconsistency", "kind", f.Kind, "detail", f.Message)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	grouping, ranks := r.Layout(ds, opts)
	result.Grouping = grouping
	result.Ranks = ranks
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("computed layout",
		"categories", len(grouping.Categories),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Emit
	emitStart := time.Now()
	artifacts, err := r.Emit(ctx, ds, grouping, ranks, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.EmitTime = time.Since(emitStart)

	opts.Logger.Info("emitted diagrams",
		"diagrams", opts.Diagrams,
		"format", opts.Format,
		"duration", result.Stats.EmitTime)

	return result, nil
}

// Load reads and validates the model file. Findings are returned, not
// treated as errors: the layout engine tolerates a partially consistent
// model by dropping dangling references.
func (r *Runner) Load(opts Options) (*model.Dataset, []validate.Finding, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}
	ds, err := loader.LoadFile(opts.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	return ds, validate.Dataset(ds), nil
}

// Layout groups components by category and computes dependency ranks.
func (r *Runner) Layout(ds *model.Dataset, opts Options) (*graph.Grouping, map[string]int) {
	opts.SetLayoutDefaults()
	grouping := graph.GroupComponents(ds.Components())
	ranks := graph.Ranks(ds.ComponentIDs(), ds.ComponentAdjacency(), opts.RootID)
	return grouping, ranks
}

// Emit renders the requested diagrams keyed by diagram name.
func (r *Runner) Emit(ctx context.Context, ds *model.Dataset, grouping *graph.Grouping, ranks map[string]int, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForEmit(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	artifacts := make(map[string][]byte, len(opts.Diagrams))
	for _, diagram := range opts.Diagrams {
		var (
			out []byte
			err error
		)
		switch diagram {
		case DiagramComponents:
			out, err = r.emitComponents(ctx, ds, grouping, ranks, opts)
		case DiagramControls:
			out = r.emitRelations(ds, model.KindComponent, opts)
		case DiagramRisks:
			out = r.emitRelations(ds, model.KindRisk, opts)
		}
		if err != nil {
			return nil, err
		}
		artifacts[diagram] = out
	}
	return artifacts, nil
}

func (r *Runner) emitComponents(ctx context.Context, ds *model.Dataset, grouping *graph.Grouping, ranks map[string]int, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatDOT:
		text := dot.ToDOT(ds, grouping, ranks, r.Styles, dot.Options{Detailed: opts.Detailed})
		return []byte(text), nil
	case FormatSVG:
		text := dot.ToDOT(ds, grouping, ranks, r.Styles, dot.Options{Detailed: opts.Detailed})
		return dot.RenderSVG(ctx, text)
	default:
		e := mermaid.New(r.Styles)
		e.Debug = opts.Debug
		text := e.Components(mermaid.ComponentsInput{
			Dataset:  ds,
			Grouping: grouping,
			Ranks:    ranks,
		})
		if opts.Fenced {
			text = mermaid.Fence(text)
		}
		return []byte(text), nil
	}
}

// emitRelations renders the control relation view for the given target
// kind (components or risks).
func (r *Runner) emitRelations(ds *model.Dataset, kind model.Kind, opts Options) []byte {
	controls := graph.GroupNodes(ds.ControlNodes())

	var (
		targets *graph.Grouping
		ids     []string
	)
	if kind == model.KindRisk {
		targets = graph.GroupNodes(ds.RiskNodes())
		ids = ds.RiskIDs()
	} else {
		targets = graph.GroupNodes(ds.ComponentNodes())
		ids = ds.ComponentIDs()
	}

	raw := make(map[string]model.RefList, len(ds.Controls()))
	sources := make([]string, 0, len(ds.Controls()))
	for _, c := range ds.Controls() {
		sources = append(sources, c.ID)
		if kind == model.KindRisk {
			raw[c.ID] = c.Risks
		} else {
			raw[c.ID] = c.Components
		}
	}

	clusters := cluster.FindByCategory(targets, reverseRelations(sources, raw), opts.Cluster)
	result := relation.Optimize(sources, raw, relation.Universe{
		Kind:     kind,
		IDs:      ids,
		Grouping: targets,
		Clusters: clusters,
	})

	e := mermaid.New(r.Styles)
	e.Debug = opts.Debug
	text := e.Relations(mermaid.RelationsInput{
		Dataset:   ds,
		Kind:      kind,
		Controls:  controls,
		Targets:   targets,
		Clusters:  clusters,
		Relations: result,
	})
	if opts.Fenced {
		text = mermaid.Fence(text)
	}
	return []byte(text)
}

// reverseRelations inverts the source→targets map so clustering can
// group targets by the sources they share. Sentinel lists carry no
// grouping signal and are skipped.
func reverseRelations(sources []string, raw map[string]model.RefList) map[string][]string {
	rev := make(map[string][]string)
	for _, src := range sources {
		refs := raw[src]
		if refs.IsAll() || refs.IsNone() {
			continue
		}
		for _, id := range refs.IDs() {
			rev[id] = append(rev[id], src)
		}
	}
	return rev
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
