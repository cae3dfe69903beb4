package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/secmap/pkg/errors"
)

const testModel = `
components:
  - id: user
    title: User
    category: Actors
    to: [web]
  - id: web
    title: Web Frontend
    category: Services
    from: [user]
    to: [db]
  - id: db
    title: Database
    category: Data
    from: [web]

controls:
  - id: ctrl-mfa
    title: Multi-Factor Auth
    category: Access
    components: all
    risks: [risk-takeover]
  - id: ctrl-backup
    title: Backups
    category: Resilience
    components: [db]
    risks: none

risks:
  - id: risk-takeover
    title: Account Takeover
    category: Access
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	opts := Options{ModelPath: "model.yaml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.RootID != DefaultRootID {
		t.Errorf("RootID = %q, want %q", opts.RootID, DefaultRootID)
	}
	if opts.Format != FormatMermaid {
		t.Errorf("Format = %q, want %q", opts.Format, FormatMermaid)
	}
	if len(opts.Diagrams) != 3 {
		t.Errorf("Diagrams = %v, want all three views", opts.Diagrams)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent: a second call must not reset explicit values.
	opts.Format = FormatDOT
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Format != FormatDOT {
		t.Errorf("Format = %q after revalidation, want %q", opts.Format, FormatDOT)
	}
}

func TestOptions_MissingModelPath(t *testing.T) {
	opts := Options{}
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Fatalf("ValidateAndSetDefaults() error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatMermaid, FormatDOT, FormatSVG} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := ValidateFormat("png"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(png) = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestValidateDiagrams(t *testing.T) {
	if err := ValidateDiagrams([]string{DiagramComponents, DiagramRisks}); err != nil {
		t.Fatalf("ValidateDiagrams() = %v, want nil", err)
	}
	if err := ValidateDiagrams([]string{"towers"}); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("ValidateDiagrams(towers) = %v, want %s", err, errors.ErrCodeInvalidDiagram)
	}
}

func TestOptions_NonMermaidRestrictedToComponents(t *testing.T) {
	opts := Options{
		ModelPath: "model.yaml",
		Format:    FormatDOT,
		Diagrams:  []string{DiagramControls},
	}
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("ValidateAndSetDefaults() error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestRunner_Execute(t *testing.T) {
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		ModelPath: writeModel(t, testModel),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.Stats.ComponentCount != 3 || result.Stats.ControlCount != 2 || result.Stats.RiskCount != 1 {
		t.Errorf("Stats = %+v, want 3 components, 2 controls, 1 risk", result.Stats)
	}
	if len(result.Findings) != 0 {
		t.Errorf("Findings = %v, want none", result.Findings)
	}
	if got, want := result.Ranks["user"], 0; got != want {
		t.Errorf("Ranks[user] = %d, want %d", got, want)
	}
	if got, want := result.Ranks["db"], 2; got != want {
		t.Errorf("Ranks[db] = %d, want %d", got, want)
	}

	for _, d := range []string{DiagramComponents, DiagramControls, DiagramRisks} {
		out, ok := result.Artifacts[d]
		if !ok {
			t.Fatalf("missing artifact %q", d)
		}
		if !strings.HasPrefix(string(out), "flowchart ") {
			t.Errorf("artifact %q does not start with a flowchart header:\n%s", d, out)
		}
	}

	controls := string(result.Artifacts[DiagramControls])
	if !strings.Contains(controls, "ctrl-mfa ==> components") {
		t.Errorf("controls diagram missing universal edge:\n%s", controls)
	}
	// db is the only member of its category, so the optimizer
	// substitutes the category for the individual reference.
	if !strings.Contains(controls, "ctrl-backup --> Data") {
		t.Errorf("controls diagram missing category edge:\n%s", controls)
	}
}

func TestRunner_Execute_DOT(t *testing.T) {
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		ModelPath: writeModel(t, testModel),
		Format:    FormatDOT,
		Diagrams:  []string{DiagramComponents},
		Detailed:  true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := string(result.Artifacts[DiagramComponents])
	if !strings.HasPrefix(out, "digraph ") {
		t.Errorf("artifact is not DOT:\n%s", out)
	}
	if !strings.Contains(out, "rank: 2") {
		t.Errorf("Detailed DOT output missing rank labels:\n%s", out)
	}
}

func TestRunner_Execute_Fenced(t *testing.T) {
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		ModelPath: writeModel(t, testModel),
		Diagrams:  []string{DiagramComponents},
		Fenced:    true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := string(result.Artifacts[DiagramComponents])
	if !strings.HasPrefix(out, "```mermaid\n") || !strings.HasSuffix(out, "```\n") {
		t.Errorf("fenced output not wrapped:\n%s", out)
	}
}

func TestRunner_Execute_UnknownRoot(t *testing.T) {
	runner := NewRunner(nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		ModelPath: writeModel(t, testModel),
		RootID:    "ghost",
	})
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Fatalf("Execute() error = %v, want %s", err, errors.ErrCodeNodeNotFound)
	}
}

func TestOptions_MalformedStylesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.toml")
	if err := os.WriteFile(path, []byte("[defaults.component\n"), 0o644); err != nil {
		t.Fatalf("write styles: %v", err)
	}

	opts := Options{ModelPath: "model.yaml", StylesPath: path}
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Fatalf("ValidateAndSetDefaults() error = %v, want %s", err, errors.ErrCodeInvalidStyle)
	}
}

func TestRunner_Execute_MissingFile(t *testing.T) {
	runner := NewRunner(nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		ModelPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("Execute() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestRunner_Execute_ReportsFindings(t *testing.T) {
	const inconsistent = `
components:
  - id: a
    title: A
    category: Edge
    to: [b]
  - id: b
    title: B
    category: Edge
`
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		ModelPath: writeModel(t, inconsistent),
		Diagrams:  []string{DiagramComponents},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Findings = %v, want one missing-from finding", result.Findings)
	}
	if result.Stats.FindingCount != 1 {
		t.Errorf("Stats.FindingCount = %d, want 1", result.Stats.FindingCount)
	}
}
