package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toyz/metamodel/internal/source"
	"github.com/toyz/metamodel/internal/utils"
	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/inspect"
	"github.com/toyz/metamodel/pkg/meta/inspect/adapters"
)

// Runner executes the CLI commands against one configuration
type Runner struct {
	config   Config
	console  *utils.Console
	reporter *DiagnosticReporter
	logger   *slog.Logger
	registry *prometheus.Registry
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithOutput redirects progress to out and errors to errOut
func WithOutput(out, errOut io.Writer) RunnerOption {
	return func(r *Runner) {
		r.console.SetOutput(out)
		r.reporter = NewDiagnosticReporter(errOut, r.config.Verbose)
		r.logger = newLogger(errOut, r.config.Verbose)
	}
}

// NewRunner creates a runner writing to the standard streams
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	level := utils.Normal
	if cfg.Verbose {
		level = utils.Verbose
	}
	r := &Runner{
		config:   cfg,
		console:  utils.NewConsole(level),
		reporter: NewDiagnosticReporter(os.Stderr, cfg.Verbose),
		logger:   newLogger(os.Stderr, cfg.Verbose),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Report prints err with the diagnostic reporter
func (r *Runner) Report(err error) {
	r.reporter.ReportError(err)
}

// Config returns the runner configuration
func (r *Runner) Config() Config { return r.config }

// Load scans the configured directories and bootstraps a metamodel over them.
// The metamodel is returned along with a bootstrap error so that an invalid
// model can still be inspected; it is nil when the scan itself failed.
func (r *Runner) Load(ctx context.Context) (*source.Live, *meta.MetaModel, error) {
	r.console.Header("building metamodel", r.config.Directories...)

	scanner := source.NewScanner(
		source.WithExcludes(r.config.Excludes...),
		source.WithLogger(r.logger))

	r.console.Phase("Scanning")
	live, err := source.NewLive(scanner, r.config.Directories...)
	if err != nil {
		return nil, nil, err
	}
	res := live.Result()
	if res.Module != "" {
		r.console.Step("Module %s", res.Module)
	}
	r.console.Step("Scanned %d packages (%d files)", len(res.Packages), res.Files)
	r.console.Step("Described %d object types", res.Table.Len())
	for _, name := range res.Table.Names() {
		r.console.Detail("object type %s", name)
	}

	mm, err := meta.New(live,
		meta.WithConfig(r.config.MetaModel),
		meta.WithLogger(r.logger),
		meta.WithRegisterer(r.registry))
	if err != nil {
		return nil, nil, err
	}

	r.console.Phase("Introspecting")
	if err := mm.Bootstrap(ctx); err != nil {
		return live, mm, err
	}
	r.console.Step("Built %d specifications", specificationCount(mm))
	return live, mm, nil
}

func specificationCount(mm *meta.MetaModel) int {
	specs, _ := mm.Specifications()
	return len(specs)
}

func specificationViews(mm *meta.MetaModel) []*inspect.SpecificationView {
	specs, err := mm.Specifications()
	if err != nil {
		return nil
	}
	views := make([]*inspect.SpecificationView, len(specs))
	for i, s := range specs {
		v := inspect.DescribeSpecification(s)
		views[i] = &v
	}
	return views
}

// Validate builds the metamodel and reports every failure
func (r *Runner) Validate(ctx context.Context) error {
	live, mm, err := r.Load(ctx)
	if err != nil {
		return err
	}
	r.summarize(live, mm)
	r.console.Done("metamodel is valid")
	return nil
}

func (r *Runner) summarize(live *source.Live, mm *meta.MetaModel) {
	members, removals := 0, 0
	views := specificationViews(mm)
	for _, v := range views {
		members += len(v.Properties) + len(v.Collections) + len(v.Actions)
		removals += len(v.Removals)
	}
	r.console.Summary("Summary:",
		utils.Stat{Name: "Packages", Value: len(live.Result().Packages)},
		utils.Stat{Name: "Files", Value: live.Result().Files},
		utils.Stat{Name: "Specifications", Value: len(views)},
		utils.Stat{Name: "Members", Value: members},
		utils.Stat{Name: "Supporting methods", Value: removals},
	)
}

func (r *Runner) format() (inspect.Format, error) {
	return inspect.ParseFormat(r.config.Format)
}

// Describe writes the specifications named, or all of them, to w
func (r *Runner) Describe(ctx context.Context, w io.Writer, names ...string) error {
	format, err := r.format()
	if err != nil {
		return err
	}
	_, mm, err := r.Load(ctx)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		views := specificationViews(mm)
		return inspect.Encode(w, format, views)
	}
	views := make([]inspect.SpecificationView, 0, len(names))
	for _, name := range names {
		s, err := mm.Specification(ctx, name)
		if err != nil {
			return err
		}
		views = append(views, inspect.DescribeSpecification(s))
	}
	if len(views) == 1 {
		return inspect.Encode(w, format, views[0])
	}
	return inspect.Encode(w, format, views)
}

// Export writes the whole model to w. An invalid model is still written,
// with its failures, and its error returned.
func (r *Runner) Export(ctx context.Context, w io.Writer) error {
	format, err := r.format()
	if err != nil {
		return err
	}
	_, mm, err := r.Load(ctx)
	if mm == nil {
		return err
	}
	if encErr := inspect.Encode(w, format, inspect.DescribeModel(mm)); encErr != nil {
		return encErr
	}
	return err
}

// NewServer creates the configured inspection server with the routes of mm
func (r *Runner) NewServer(mm *meta.MetaModel) (inspect.Server, error) {
	server, err := adapters.New(r.config.Server.Framework)
	if err != nil {
		return nil, err
	}
	inspect.NewService(mm,
		inspect.WithGatherer(r.registry),
		inspect.WithLogger(r.logger)).Register(server)
	return server, nil
}

// Serve runs the inspection server until ctx is done. An invalid model is
// served as not ready. With watch set, the model is rebuilt on source changes.
func (r *Runner) Serve(ctx context.Context, watch bool) error {
	live, mm, err := r.Load(ctx)
	if mm == nil {
		return err
	}
	if err != nil {
		r.reporter.ReportError(err)
		r.reporter.ReportWarning("serving an invalid metamodel", "GET /failures lists what has to be fixed")
	}

	server, err := r.NewServer(mm)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watch {
		go func() {
			if err := r.Watch(ctx, live, mm); err != nil {
				r.reporter.ReportError(err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(r.config.Server.Addr)
	}()
	r.console.Success("%s server listening on %s", server.Name(), r.config.Server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, stop := context.WithTimeout(context.Background(), r.config.Server.ShutdownTimeout)
	defer stop()
	r.console.Info("shutting down %s server", server.Name())
	return server.Stop(stopCtx)
}

// Watch rebuilds mm whenever Go files under the configured directories change,
// until ctx is done
func (r *Runner) Watch(ctx context.Context, live *source.Live, mm *meta.MetaModel) error {
	w, err := NewWatcher(r.config.Directories, r.config.Watch.Debounce, r.logger,
		func(ctx context.Context, paths []string) {
			r.Rebuild(ctx, live, mm, paths)
		})
	if err != nil {
		return err
	}
	r.console.Info("watching for changes")
	return w.Run(ctx)
}

// Rebuild rescans live and rebuilds mm. A failed rescan keeps the current model.
func (r *Runner) Rebuild(ctx context.Context, live *source.Live, mm *meta.MetaModel, changed []string) {
	r.console.Info("%d files changed, rebuilding", len(changed))
	for _, path := range changed {
		r.console.Detail("changed %s", path)
	}
	if _, err := live.Refresh(); err != nil {
		r.reporter.ReportError(err)
		return
	}
	if err := mm.Rebuild(ctx); err != nil {
		r.reporter.ReportError(err)
		return
	}
	r.console.Success("metamodel rebuilt with %d specifications", specificationCount(mm))
}
