// Package cli implements the secmap command-line interface.
//
// This package provides commands for generating security architecture
// diagrams from a YAML model, validating model consistency, and serving
// a local diagram preview. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Render Mermaid, DOT, or SVG diagrams from a model file
//   - validate: Check a model file for cross-reference inconsistencies
//   - serve: Serve a live diagram preview over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/secmap/pkg/buildinfo"
	"github.com/matzehuels/secmap/pkg/pipeline"
	"github.com/matzehuels/secmap/pkg/styles"
)

// appName is the application name used for display.
const appName = "secmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Secmap renders security architecture models as diagrams",
		Long:         `Secmap is a CLI tool for rendering security architecture models - components, controls, and risks - as layered Mermaid or Graphviz diagrams, making it easier to understand system structure and control coverage.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. An empty styles path
// falls back to the built-in style defaults.
func (c *CLI) newRunner(stylesPath string) *pipeline.Runner {
	return pipeline.NewRunner(styles.NewConfig(stylesPath), c.Logger)
}

// parseDiagrams parses a comma-separated diagram string into a slice.
// Empty means all views.
func parseDiagrams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
