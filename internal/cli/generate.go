package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secmap/pkg/errors"
	"github.com/matzehuels/secmap/pkg/pipeline"
)

// formatExtensions maps output formats to file extensions.
var formatExtensions = map[string]string{
	pipeline.FormatMermaid: "mmd",
	pipeline.FormatDOT:     "dot",
	pipeline.FormatSVG:     "svg",
}

// generateCommand creates the generate command for rendering diagrams.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output      string
		diagramsStr string
		stylesPath  string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [model.yaml]",
		Short: "Generate diagrams from a security model",
		Long: `Generate diagrams from a security model.

The generate command reads a YAML model file and renders the requested
diagram views:

  components  the component dependency graph, layered by rank
  controls    the control → component relation map
  risks       the control → risk relation map

Mermaid is the default output format. The components view can also be
rendered as Graphviz DOT text or as an SVG (requires no external
binaries; rendering happens in-process).

Output files are derived from the input name (model_components.mmd and
so on) unless --output sets a different base path. A single diagram with
an explicit --output writes exactly that file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Diagrams = parseDiagrams(diagramsStr)
			if err := pipeline.ValidateDiagrams(opts.Diagrams); err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), args[0], opts, output, stylesPath)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single diagram) or base path (multiple)")
	cmd.Flags().StringVar(&stylesPath, "styles", "", "TOML style configuration file")

	// Layout flags
	cmd.Flags().StringVar(&opts.RootID, "root", "", "component seeded at the top rank (default: user)")
	cmd.Flags().IntVar(&opts.Cluster.MinShared, "cluster-overlap", 0, "minimum shared controls to cluster components (default: 2)")
	cmd.Flags().IntVar(&opts.Cluster.MinNodes, "cluster-size", 0, "minimum cluster size (default: 2)")
	cmd.Flags().StringVar(&opts.Cluster.StripPrefix, "cluster-strip", "", "prefix stripped from IDs when naming clusters")

	// Emit flags
	cmd.Flags().StringVarP(&diagramsStr, "diagram", "d", "", "diagram view(s): components, controls, risks (comma-separated, default: all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: mermaid (default), dot, svg")
	cmd.Flags().BoolVar(&opts.Fenced, "fenced", false, "wrap Mermaid output in a fenced code block")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "annotate nodes with rank numbers (dot/svg)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "emit raw relation comments in Mermaid output")

	return cmd
}

// runGenerate executes the pipeline and writes the artifacts.
func (c *CLI) runGenerate(ctx context.Context, input string, opts pipeline.Options, output, stylesPath string) error {
	opts.ModelPath = input
	opts.StylesPath = stylesPath
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner := c.newRunner(stylesPath)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s diagrams...", strings.Join(opts.Diagrams, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, f := range result.Findings {
		printWarning("%s", f.Message)
	}

	paths, err := writeArtifacts(result.Artifacts, opts, input, output)
	if err != nil {
		return err
	}

	printSuccess("Generated %d diagram(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.ComponentCount, result.Stats.ControlCount, result.Stats.RiskCount)
	if len(paths) > 0 && opts.Format == pipeline.FormatMermaid {
		printNewline()
		printNextStep("Preview", appName+" serve "+input)
	}
	return nil
}

// writeArtifacts writes each diagram artifact to its output path and
// returns the written paths in diagram order.
func writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, input, output string) ([]string, error) {
	ext := formatExtensions[opts.Format]
	base := basePath(output, input, ext)

	paths := make([]string, 0, len(opts.Diagrams))
	for _, diagram := range opts.Diagrams {
		var path string
		if output != "" && len(opts.Diagrams) == 1 {
			path = output
		} else {
			path = fmt.Sprintf("%s_%s.%s", base, diagram, ext)
		}

		out, err := openOutput(path)
		if err != nil {
			return nil, err
		}
		if _, err := out.Write(artifacts[diagram]); err != nil {
			out.Close()
			return nil, err
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file
// paths. If output is empty, it strips the extension from input. If
// output already carries the format extension, that is stripped too.
func basePath(output, input, ext string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return strings.TrimSuffix(output, "."+ext)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. "-" means
// stdout; otherwise the path is validated and the file created,
// overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}
