// Package pipeline provides the core diagram pipeline for Secmap.
//
// This package implements the complete load → layout → emit pipeline
// that can be used by the CLI, the preview server, and library
// consumers. By centralizing this logic, we ensure consistent behavior
// across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate the security model from a YAML file
//  2. Layout: Group nodes by category, compute dependency ranks, and
//     discover clusters of components protected by the same controls
//  3. Emit: Generate diagram text in various formats (Mermaid, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(styles.NewConfig(""), logger)
//	opts := pipeline.Options{
//	    ModelPath: "model.yaml",
//	    Diagrams:  []string{pipeline.DiagramComponents},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Artifacts[pipeline.DiagramComponents]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/secmap/pkg/errors"
	"github.com/matzehuels/secmap/pkg/graph"
	"github.com/matzehuels/secmap/pkg/graph/cluster"
	"github.com/matzehuels/secmap/pkg/model"
	"github.com/matzehuels/secmap/pkg/styles"
	"github.com/matzehuels/secmap/pkg/validate"
)

// DefaultRootID is the node seeded at rank 0 when present. Security
// models conventionally start at the human actor.
const DefaultRootID = "user"

// Diagram constants for the supported views.
const (
	DiagramComponents = "components"
	DiagramControls   = "controls"
	DiagramRisks      = "risks"
)

// Format constants for output formats.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
)

// ValidDiagrams is the set of supported diagram views.
var ValidDiagrams = map[string]bool{
	DiagramComponents: true,
	DiagramControls:   true,
	DiagramRisks:      true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMermaid: true,
	FormatDOT:     true,
	FormatSVG:     true,
}

// Options contains all configuration for the diagram pipeline.
type Options struct {
	// Load options
	ModelPath  string `json:"model_path"`
	StylesPath string `json:"styles_path,omitempty"`

	// Layout options
	RootID  string         `json:"root_id,omitempty"`
	Cluster cluster.Config `json:"cluster,omitempty"`

	// Emit options
	Diagrams []string `json:"diagrams,omitempty"`
	Format   string   `json:"format,omitempty"`
	Fenced   bool     `json:"fenced,omitempty"`   // Wrap Mermaid output in a fenced code block
	Detailed bool     `json:"detailed,omitempty"` // Annotate nodes with rank numbers (DOT only)
	Debug    bool     `json:"debug,omitempty"`    // Emit raw relation comments in Mermaid output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution, for logs and the
	// preview server's artifact map.
	RunID string

	// Dataset is the loaded security model.
	Dataset *model.Dataset

	// Grouping is the category partition of the component collection.
	Grouping *graph.Grouping

	// Ranks maps component ID to its vertical layer.
	Ranks map[string]int

	// Findings are the consistency problems found in the model. They
	// are advisory; the pipeline proceeds regardless.
	Findings []validate.Finding

	// Artifacts contains rendered diagrams keyed by diagram name.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ComponentCount int
	ControlCount   int
	RiskCount      int
	FindingCount   int
	LoadTime       time.Duration
	LayoutTime     time.Duration
	EmitTime       time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: mermaid, dot, svg)", format)
	}
	return nil
}

// ValidateDiagram checks that a diagram name is valid.
func ValidateDiagram(diagram string) error {
	if !ValidDiagrams[diagram] {
		return errors.New(errors.ErrCodeInvalidDiagram,
			"invalid diagram: %q (must be one of: components, controls, risks)", diagram)
	}
	return nil
}

// ValidateDiagrams checks that all diagram names are valid.
func ValidateDiagrams(diagrams []string) error {
	for _, d := range diagrams {
		if err := ValidateDiagram(d); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent - calling it multiple
// times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForEmit(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.ModelPath == "" {
		return errors.New(errors.ErrCodeInvalidPath, "model path is required")
	}
	if err := styles.Check(o.StylesPath); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.RootID == "" {
		o.RootID = DefaultRootID
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetEmitDefaults sets default values for diagram emission.
func (o *Options) SetEmitDefaults() {
	if len(o.Diagrams) == 0 {
		o.Diagrams = []string{DiagramComponents, DiagramControls, DiagramRisks}
	}
	if o.Format == "" {
		o.Format = FormatMermaid
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForEmit validates and sets defaults for diagram emission.
func (o *Options) ValidateForEmit() error {
	o.SetEmitDefaults()
	if err := ValidateDiagrams(o.Diagrams); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	// Graphviz only renders the dependency view; relation views are
	// Mermaid-native.
	if o.Format != FormatMermaid {
		for _, d := range o.Diagrams {
			if d != DiagramComponents {
				return errors.New(errors.ErrCodeUnsupported,
					"format %q supports only the components diagram, got %q", o.Format, d)
			}
		}
	}
	return nil
}
