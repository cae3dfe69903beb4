package cli

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/secmap/pkg/pipeline"
)

// serveCommand creates the serve command for the live diagram preview.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		stylesPath string
		rootID     string
	)

	cmd := &cobra.Command{
		Use:   "serve [model.yaml]",
		Short: "Serve a live diagram preview over HTTP",
		Long: `Serve a live diagram preview over HTTP.

The serve command runs a local web server that renders the model on
every request, so edits to the model file show up on refresh:

  /                    index page with embedded diagrams
  /diagrams/{view}     raw Mermaid source (components, controls, risks)
  /svg                 the component view rendered as SVG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, stylesPath, rootID)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8333", "listen address")
	cmd.Flags().StringVar(&stylesPath, "styles", "", "TOML style configuration file")
	cmd.Flags().StringVar(&rootID, "root", "", "component seeded at the top rank (default: user)")

	return cmd
}

// runServe starts the preview server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, input, addr, stylesPath, rootID string) error {
	runner := c.newRunner(stylesPath)
	s := &previewServer{
		runner: runner,
		opts: pipeline.Options{
			ModelPath:  input,
			StylesPath: stylesPath,
			RootID:     rootID,
			Logger:     c.Logger,
		},
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printSuccess("Serving %s", input)
	printKeyValue("address", "http://"+addr)
	printKeyValue("model", input)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// previewServer renders the model fresh on every request.
type previewServer struct {
	runner *pipeline.Runner
	opts   pipeline.Options
}

func (s *previewServer) routes(logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggerMiddleware(logger))

	r.Get("/", s.handleIndex)
	r.Get("/diagrams/{view}", s.handleDiagram)
	r.Get("/svg", s.handleSVG)
	return r
}

// loggerMiddleware attaches the CLI logger to the request context so
// handlers can log without holding a reference to the server.
func loggerMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
		})
	}
}

// execute runs the pipeline with the given diagram and format selection.
func (s *previewServer) execute(ctx context.Context, diagrams []string, format string) (*pipeline.Result, error) {
	opts := s.opts
	opts.Diagrams = diagrams
	opts.Format = format
	return s.runner.Execute(ctx, opts)
}

func (s *previewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	result, err := s.execute(r.Context(), nil, pipeline.FormatMermaid)
	if err != nil {
		httpError(w, r, err)
		return
	}

	data := indexData{Model: s.opts.ModelPath}
	for _, view := range []string{pipeline.DiagramComponents, pipeline.DiagramControls, pipeline.DiagramRisks} {
		data.Diagrams = append(data.Diagrams, indexDiagram{
			Name:   view,
			Source: string(result.Artifacts[view]),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		loggerFromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *previewServer) handleDiagram(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	if err := pipeline.ValidateDiagram(view); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	result, err := s.execute(r.Context(), []string{view}, pipeline.FormatMermaid)
	if err != nil {
		httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(result.Artifacts[view])
}

func (s *previewServer) handleSVG(w http.ResponseWriter, r *http.Request) {
	result, err := s.execute(r.Context(), []string{pipeline.DiagramComponents}, pipeline.FormatSVG)
	if err != nil {
		httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.Artifacts[pipeline.DiagramComponents])
}

func httpError(w http.ResponseWriter, r *http.Request, err error) {
	loggerFromContext(r.Context()).Error("pipeline failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

type indexDiagram struct {
	Name   string
	Source string
}

type indexData struct {
	Model    string
	Diagrams []indexDiagram
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>secmap · {{.Model}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
h2 { border-bottom: 1px solid #ddd; padding-bottom: .3rem; }
</style>
</head>
<body>
<h1>{{.Model}}</h1>
{{range .Diagrams}}
<h2>{{.Name}}</h2>
<pre class="mermaid">{{.Source}}</pre>
{{end}}
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true, maxEdges: 2000 });
</script>
</body>
</html>
`))
