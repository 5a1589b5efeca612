package spec

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// Option configures a Loader
type Option func(*Loader)

// WithReporter routes failures found while introspecting to r
func WithReporter(r factory.Reporter) Option {
	return func(l *Loader) { l.reporter = r }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithParallelism bounds the number of types LoadAll introspects at once
func WithParallelism(n int) Option {
	return func(l *Loader) { l.parallelism = n }
}

// WithValueTypes resolves the named types to value specifications in
// addition to the built-in ones, e.g. "uuid.UUID" or "decimal.Decimal"
func WithValueTypes(names ...string) Option {
	return func(l *Loader) {
		for _, name := range names {
			l.values[descriptor.BaseTypeName(name)] = true
		}
	}
}

// entry is one cached specification. done is closed once the build finished;
// deps is written only by the build and read only after done is closed.
type entry struct {
	spec *ObjectSpecification
	done chan struct{}
	deps []*entry
}

// Loader builds object specifications on demand and caches them. Each type is
// introspected exactly once; a skeleton is published before introspection
// starts so recursive references resolve to the same instance.
type Loader struct {
	source      descriptor.Source
	model       *factory.ProgrammingModel
	reporter    factory.Reporter
	logger      *slog.Logger
	parallelism int
	values      map[string]bool

	mu      sync.Mutex
	entries map[string]*entry
}

// NewLoader creates a loader over source that runs model against every type
func NewLoader(source descriptor.Source, model *factory.ProgrammingModel, opts ...Option) *Loader {
	l := &Loader{
		source:  source,
		model:   model,
		values:  make(map[string]bool),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.model == nil {
		l.model = factory.Default()
	}
	if l.reporter == nil {
		logger := l.logger
		l.reporter = factory.ReporterFunc(func(id ident.Identifier, format string, args ...any) {
			logger.Warn("metamodel failure", "identifier", id.String(), "failure", fmt.Sprintf(format, args...))
		})
	}
	if l.parallelism <= 0 {
		l.parallelism = 4
	}
	return l
}

// LoadSpecification returns the specification of the named type once it and
// every specification it references are fully introspected
func (l *Loader) LoadSpecification(ctx context.Context, name string) (*ObjectSpecification, error) {
	e, err := l.entryFor(descriptor.BaseTypeName(name))
	if err != nil {
		return nil, err
	}
	if err := l.await(ctx, e); err != nil {
		return nil, err
	}
	return e.spec, nil
}

// LoadAll introspects every type of the source
func (l *Loader) LoadAll(ctx context.Context) ([]*ObjectSpecification, error) {
	names := l.source.Names()
	specs := make([]*ObjectSpecification, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, name := range names {
		g.Go(func() error {
			s, err := l.LoadSpecification(ctx, name)
			if err != nil {
				return err
			}
			specs[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return specs, nil
}

// Cached returns the specification of name if it was ever requested,
// without waiting for its introspection
func (l *Loader) Cached(name string) (*ObjectSpecification, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[descriptor.BaseTypeName(name)]
	if !ok {
		return nil, false
	}
	return e.spec, true
}

// Specifications returns the introspected domain specifications sorted by name
func (l *Loader) Specifications() []*ObjectSpecification {
	l.mu.Lock()
	specs := make([]*ObjectSpecification, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.spec.IsValue() && e.spec.IsIntrospected() {
			specs = append(specs, e.spec)
		}
	}
	l.mu.Unlock()

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name() < specs[j].Name() })
	return specs
}

// IsValueType reports whether name resolves to a value specification without
// consulting the descriptor source
func (l *Loader) IsValueType(name string) bool {
	name = descriptor.BaseTypeName(name)
	return l.values[name] || IsValueType(name)
}

// Reset discards every cached specification. It must not be called while
// loads are in flight: their builds keep registering dependencies in the new
// cache.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

// entryFor returns the cached entry of name, starting its build when it is
// requested for the first time. It never blocks on a build.
func (l *Loader) entryFor(name string) (*entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[name]; ok {
		return e, nil
	}

	if l.IsValueType(name) {
		return l.resolved(name, newValueSpecification(name)), nil
	}

	typ, ok := l.source.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if a, ok := typ.Annotations.Get("value"); ok {
		return l.resolved(name, newDeclaredValueSpecification(typ, a)), nil
	}

	e := &entry{spec: newSpecification(name, typ), done: make(chan struct{})}
	l.entries[name] = e
	go l.build(e)
	return e, nil
}

// resolved caches a specification that needs no introspection. l.mu must be held.
func (l *Loader) resolved(name string, s *ObjectSpecification) *entry {
	e := &entry{spec: s, done: make(chan struct{})}
	close(e.done)
	l.entries[name] = e
	return e
}

// await waits for e and every entry reachable through build dependencies
func (l *Loader) await(ctx context.Context, root *entry) error {
	visited := make(map[*entry]bool)
	stack := []*entry{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[e] {
			continue
		}
		visited[e] = true

		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		stack = append(stack, e.deps...)
	}
	return nil
}

func (l *Loader) build(e *entry) {
	defer close(e.done)
	defer func() {
		if r := recover(); r != nil {
			l.reporter.AddFailure(e.spec.Identifier(), "%s: introspection failed: %v", e.spec.Name(), r)
			l.logger.Error("introspection panicked", "type", e.spec.Name(), "error", r)
		}
	}()

	l.logger.Debug("introspecting", "type", e.spec.Name())
	newIntrospector(l, e).introspect()
}
