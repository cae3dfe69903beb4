package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/secmap/pkg/loader"
	"github.com/matzehuels/secmap/pkg/validate"
)

// validateCommand creates the validate command for checking model consistency.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [model.yaml]",
		Short: "Check a security model for inconsistencies",
		Long: `Check a security model for inconsistencies.

The validate command loads the model file and reports cross-reference
problems: forward/reverse component edges that do not mirror each other,
and controls referencing unknown components or risks.

Structural errors (duplicate IDs, missing titles, malformed YAML) always
fail. Consistency findings are warnings unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat consistency findings as errors")

	return cmd
}

// runValidate loads the model and reports findings.
func (c *CLI) runValidate(input string, strict bool) error {
	prog := newProgress(c.Logger)

	ds, err := loader.LoadFile(input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d components, %d controls, %d risks",
		len(ds.Components()), len(ds.Controls()), len(ds.Risks())))

	findings := validate.Dataset(ds)
	if len(findings) == 0 {
		printSuccess("Model is consistent")
		printStats(len(ds.Components()), len(ds.Controls()), len(ds.Risks()))
		return nil
	}

	for _, f := range findings {
		printWarning("%s", f.Message)
	}
	if strict {
		return fmt.Errorf("model has %d consistency finding(s)", len(findings))
	}
	printDetail("%d finding(s); the layout engine will drop dangling references", len(findings))
	return nil
}
