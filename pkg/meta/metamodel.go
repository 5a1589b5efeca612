// Package meta assembles a metamodel from domain type descriptors and answers
// visibility, usability, validity and invocation requests against it.
package meta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/interaction"
	"github.com/toyz/metamodel/pkg/meta/spec"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

// ErrNotReady is returned by queries against a metamodel that was not
// bootstrapped or failed validation
var ErrNotReady = errors.New("metamodel is not ready")

// Option configures a MetaModel
type Option func(*MetaModel)

// WithConfig replaces the default engine options
func WithConfig(cfg Config) Option {
	return func(m *MetaModel) { m.config = cfg }
}

// WithLogger sets the logger handed to every component
func WithLogger(logger *slog.Logger) Option {
	return func(m *MetaModel) { m.logger = logger }
}

// WithProgrammingModel sets the factory pipeline; newModel is called on every
// bootstrap so rebuilds start from fresh factories
func WithProgrammingModel(newModel func() *factory.ProgrammingModel) Option {
	return func(m *MetaModel) { m.newModel = newModel }
}

// WithRules registers validation rules in addition to the configured ones
func WithRules(rules ...validate.Rule) Option {
	return func(m *MetaModel) { m.rules = append(m.rules, rules...) }
}

// WithRegisterer registers interaction metrics with reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *MetaModel) { m.registerer = reg }
}

// WithFaultHandler receives failures raised inside imperative facets
func WithFaultHandler(h consent.FaultHandler) Option {
	return func(m *MetaModel) { m.faults = h }
}

// MetaModel is the context object owning the loader, evaluator and
// invocation machine of one metamodel
type MetaModel struct {
	source     descriptor.Source
	config     Config
	logger     *slog.Logger
	newModel   func() *factory.ProgrammingModel
	rules      []validate.Rule
	registerer prometheus.Registerer
	faults     consent.FaultHandler

	evaluator *consent.Evaluator
	bus       *interaction.Bus
	metrics   *interaction.Metrics
	machine   *interaction.Machine

	// building serializes bootstraps so publishes happen in call order
	building sync.Mutex

	mu       sync.RWMutex
	loader   *spec.Loader
	failures *validate.Failures
	err      error
	ready    bool
}

// New creates a metamodel over source. Call Bootstrap before querying it.
func New(source descriptor.Source, opts ...Option) (*MetaModel, error) {
	if source == nil {
		return nil, fmt.Errorf("metamodel requires a descriptor source")
	}
	m := &MetaModel{
		source:   source,
		config:   DefaultConfig(),
		newModel: factory.Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.config.Validate(); err != nil {
		return nil, err
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	evaluatorOpts := []consent.Option{consent.WithLogger(m.logger)}
	if m.faults != nil {
		evaluatorOpts = append(evaluatorOpts, consent.WithFaultHandler(m.faults))
	}
	m.evaluator = consent.NewEvaluator(evaluatorOpts...)
	m.bus = interaction.NewBus(m.logger)
	m.metrics = interaction.NewMetrics(m.registerer)
	m.machine = interaction.NewMachine(m.evaluator,
		interaction.WithPublisher(m.bus),
		interaction.WithMetrics(m.metrics),
		interaction.WithLogger(m.logger))
	m.err = ErrNotReady
	return m, nil
}

// Bootstrap introspects every type of the source and validates the result.
// It returns *validate.InvalidError when the metamodel is invalid. The
// previously published graph keeps answering queries until the new one is
// published.
func (m *MetaModel) Bootstrap(ctx context.Context) error {
	m.building.Lock()
	defer m.building.Unlock()

	failures := validate.NewFailures()
	loader := spec.NewLoader(m.source, m.newModel(),
		spec.WithReporter(failures),
		spec.WithLogger(m.logger),
		spec.WithParallelism(m.config.Parallelism),
		spec.WithValueTypes(m.config.ValueTypes...))

	m.logger.InfoContext(ctx, "bootstrapping metamodel", "types", len(m.source.Names()))
	if _, err := loader.LoadAll(ctx); err != nil {
		m.publish(loader, failures, false, err)
		return err
	}

	var opts []validate.Option
	if m.config.Validation.FailFast {
		opts = append(opts, validate.WithFailFast())
	}
	opts = append(opts, validate.WithLogger(m.logger))
	rules := append(m.config.Rules(), m.rules...)
	err := validate.NewComposite(rules, opts...).Validate(loader, failures)

	m.publish(loader, failures, err == nil, err)
	if err != nil {
		m.logger.ErrorContext(ctx, "metamodel is invalid", "failures", failures.Len())
		return err
	}
	m.logger.InfoContext(ctx, "metamodel ready", "specifications", len(loader.Specifications()))
	return nil
}

// Rebuild introspects the source again into a fresh graph and swaps it in
// once validated. Readers see either the old graph or the new one.
func (m *MetaModel) Rebuild(ctx context.Context) error {
	return m.Bootstrap(ctx)
}

func (m *MetaModel) publish(loader *spec.Loader, failures *validate.Failures, ready bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loader = loader
	m.failures = failures
	m.ready = ready
	m.err = err
}

// Ready reports whether the metamodel bootstrapped and validated
func (m *MetaModel) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Err returns the error of the last bootstrap, ErrNotReady before the first one
func (m *MetaModel) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Failures returns the failures of the last bootstrap
func (m *MetaModel) Failures() []validate.Failure {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failures == nil {
		return nil
	}
	return m.failures.List()
}

func (m *MetaModel) readyLoader() (*spec.Loader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		if m.err == nil || errors.Is(m.err, ErrNotReady) {
			return nil, ErrNotReady
		}
		return nil, fmt.Errorf("%w: %w", ErrNotReady, m.err)
	}
	return m.loader, nil
}

// Specification returns the specification of the named type from the
// published graph. Types added to the source since the last bootstrap are
// not found until the next one.
func (m *MetaModel) Specification(ctx context.Context, name string) (*spec.ObjectSpecification, error) {
	loader, err := m.readyLoader()
	if err != nil {
		return nil, err
	}
	if s, ok := loader.Cached(name); ok {
		return s, nil
	}
	if loader.IsValueType(name) {
		return loader.LoadSpecification(ctx, name)
	}
	return nil, &spec.NotFoundError{Name: descriptor.BaseTypeName(name)}
}

// Specifications returns every domain specification sorted by name
func (m *MetaModel) Specifications() ([]*spec.ObjectSpecification, error) {
	loader, err := m.readyLoader()
	if err != nil {
		return nil, err
	}
	return loader.Specifications(), nil
}

// Config returns the engine options
func (m *MetaModel) Config() Config { return m.config }

// Bus returns the event bus listeners subscribe to
func (m *MetaModel) Bus() *interaction.Bus { return m.bus }

// Metrics returns the interaction metrics
func (m *MetaModel) Metrics() *interaction.Metrics { return m.metrics }

// Evaluator returns the consent evaluator
func (m *MetaModel) Evaluator() *consent.Evaluator { return m.evaluator }

func interactionFor(h facet.Holder, req interaction.Request) *consent.Interaction {
	return &consent.Interaction{
		Identifier: h.Identifier(),
		Target:     req.Target,
		Subject:    req.Subject,
		Initiator:  req.Initiator,
	}
}

// IsVisible asks whether h may be seen
func (m *MetaModel) IsVisible(ctx context.Context, h facet.Holder, req interaction.Request) consent.Consent {
	return m.evaluator.IsVisible(ctx, h, interactionFor(h, req))
}

// IsUsable asks whether h may be used
func (m *MetaModel) IsUsable(ctx context.Context, h facet.Holder, req interaction.Request) consent.Consent {
	return m.evaluator.IsUsable(ctx, h, interactionFor(h, req))
}

// IsValid asks whether proposed is an acceptable value for h
func (m *MetaModel) IsValid(ctx context.Context, h facet.Holder, proposed any, req interaction.Request) consent.Consent {
	return m.evaluator.IsValid(ctx, h, proposed, interactionFor(h, req))
}

// InvokeAction runs a through the invocation phases
func (m *MetaModel) InvokeAction(ctx context.Context, a *spec.Action, req interaction.Request, args ...any) (*interaction.Outcome, error) {
	if _, err := m.readyLoader(); err != nil {
		return nil, err
	}
	return m.machine.InvokeAction(ctx, a, req, args)
}

// UpdateProperty runs a property update through the invocation phases
func (m *MetaModel) UpdateProperty(ctx context.Context, p *spec.Property, req interaction.Request, value any) (*interaction.Outcome, error) {
	if _, err := m.readyLoader(); err != nil {
		return nil, err
	}
	return m.machine.UpdateProperty(ctx, p, req, value)
}
