package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
	"github.com/toyz/metamodel/pkg/meta/spec"
)

// ErrArgumentCount is returned when an action is invoked with the wrong number of arguments
var ErrArgumentCount = errors.New("wrong number of arguments")

// Request carries who invokes a member, and on which instance
type Request struct {
	Target    any
	Subject   consent.Subject
	Initiator consent.Initiator
}

// Outcome is the result of one invocation
type Outcome struct {
	ID         uuid.UUID
	Identifier ident.Identifier
	State      State
	// Consent holds the veto when State is StateAborted
	Consent consent.Consent
	// VetoedAt is the phase that vetoed, meaningful only when aborted
	VetoedAt State
	Result   any
	// Trace lists the states visited, in order
	Trace []State
}

// Aborted reports whether a veto stopped the invocation
func (o *Outcome) Aborted() bool { return o.State == StateAborted }

// Option configures a Machine
type Option func(*Machine)

// WithPublisher sets the hook every event is handed to
func WithPublisher(p Publisher) Option {
	return func(m *Machine) { m.publisher = p }
}

// WithMetrics records phases, vetoes and durations
func WithMetrics(metrics *Metrics) Option {
	return func(m *Machine) { m.metrics = metrics }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// Machine drives action invocations and property updates through their phases.
// Phases of one invocation run sequentially on the caller goroutine.
type Machine struct {
	evaluator *consent.Evaluator
	publisher Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// NewMachine creates a machine asking evaluator for consent
func NewMachine(evaluator *consent.Evaluator, opts ...Option) *Machine {
	m := &Machine{evaluator: evaluator}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.evaluator == nil {
		m.evaluator = consent.NewEvaluator(consent.WithLogger(m.logger))
	}
	return m
}

type invocation struct {
	id         uuid.UUID
	identifier ident.Identifier
	topic      string
	kind       string
	req        Request
	started    time.Time
	outcome    *Outcome
}

func (m *Machine) start(h facet.Holder, kind string, req Request) *invocation {
	inv := &invocation{
		id:         uuid.New(),
		identifier: h.Identifier(),
		kind:       kind,
		req:        req,
		started:    time.Now(),
	}
	if topic, ok := facet.Lookup[*facets.DomainEventFacet](h, facets.DomainEventKind); ok {
		inv.topic = topic.Topic()
	}
	inv.outcome = &Outcome{ID: inv.id, Identifier: inv.identifier, Consent: consent.Allow()}
	return inv
}

func (inv *invocation) interaction() *consent.Interaction {
	return &consent.Interaction{
		Identifier: inv.identifier,
		Target:     inv.req.Target,
		Subject:    inv.req.Subject,
		Initiator:  inv.req.Initiator,
	}
}

// enter moves the invocation into phase
func (m *Machine) enter(inv *invocation, phase State) {
	inv.outcome.State = phase
	inv.outcome.Trace = append(inv.outcome.Trace, phase)
	m.metrics.phase(inv.kind, phase)
}

// gate runs one consent phase: the facet check first, then the listeners.
// It reports false when the invocation was aborted.
func (m *Machine) gate(ctx context.Context, inv *invocation, phase State, check func() consent.Consent) bool {
	m.enter(inv, phase)
	if c := check(); c.IsVetoed() {
		m.abort(ctx, inv, phase, c)
		return false
	}
	e := newEvent(inv, phase)
	m.publish(ctx, e)
	if c, vetoed := e.Vetoed(); vetoed {
		m.abort(ctx, inv, phase, c)
		return false
	}
	return true
}

func (m *Machine) abort(ctx context.Context, inv *invocation, phase State, c consent.Consent) {
	inv.outcome.Consent = c
	inv.outcome.VetoedAt = phase
	m.enter(inv, StateAborted)
	m.metrics.veto(inv.kind, phase)
	m.metrics.observe(inv.kind, StateAborted, inv.started)
	m.logger.DebugContext(ctx, "invocation aborted",
		"identifier", inv.identifier.String(),
		"phase", phase.String(),
		"reason", c.Reason())
}

func (m *Machine) publish(ctx context.Context, e *Event) {
	if m.publisher != nil {
		m.publisher.Publish(ctx, e)
	}
}

// execute runs the executing and executed phases around invoke
func (m *Machine) execute(ctx context.Context, inv *invocation, args []any, invoke func([]any) (any, error)) (*Outcome, error) {
	m.enter(inv, StateExecuting)
	executing := newEvent(inv, StateExecuting)
	executing.args = append([]any(nil), args...)
	m.publish(ctx, executing)
	if c, vetoed := executing.Vetoed(); vetoed {
		m.abort(ctx, inv, StateExecuting, c)
		return inv.outcome, nil
	}

	result, err := invoke(executing.args)
	if err != nil {
		m.metrics.observe(inv.kind, StateExecuting, inv.started)
		m.logger.WarnContext(ctx, "invocation failed",
			"identifier", inv.identifier.String(),
			"error", err)
		return inv.outcome, fmt.Errorf("%s: %w", inv.identifier, err)
	}

	m.enter(inv, StateExecuted)
	executed := newEvent(inv, StateExecuted)
	executed.args = executing.args
	executed.result = result
	m.publish(ctx, executed)

	inv.outcome.Result = executed.result
	m.metrics.observe(inv.kind, StateExecuted, inv.started)
	return inv.outcome, nil
}

// InvokeAction invokes a on req.Target with args. A veto is reported through
// the outcome; an error is returned only when the arguments do not match the
// action or the action itself fails, in which case the outcome stays executing.
func (m *Machine) InvokeAction(ctx context.Context, a *spec.Action, req Request, args []any) (*Outcome, error) {
	params := a.Parameters()
	if len(args) != len(params) {
		return nil, fmt.Errorf("%s: expected %d, got %d: %w", a.Identifier(), len(params), len(args), ErrArgumentCount)
	}

	inv := m.start(a, a.FeatureType().String(), req)
	ic := inv.interaction()

	if !m.gate(ctx, inv, StateHide, func() consent.Consent { return m.evaluator.IsVisible(ctx, a, ic) }) {
		return inv.outcome, nil
	}
	if !m.gate(ctx, inv, StateDisable, func() consent.Consent { return m.evaluator.IsUsable(ctx, a, ic) }) {
		return inv.outcome, nil
	}
	validate := func() consent.Consent {
		for i, p := range params {
			pic := *ic
			pic.Identifier = p.Identifier()
			pic.Args = args
			if c := m.evaluator.IsValid(ctx, p, args[i], &pic); c.IsVetoed() {
				return c
			}
		}
		aic := *ic
		aic.Args = args
		return m.evaluator.IsValid(ctx, a, nil, &aic)
	}
	if !m.gate(ctx, inv, StateValidate, validate) {
		return inv.outcome, nil
	}

	return m.execute(ctx, inv, args, func(args []any) (any, error) {
		return a.Invoke(req.Target, args)
	})
}

// UpdateProperty sets p on req.Target to value through the same phases as an
// action; the executed result is the value written
func (m *Machine) UpdateProperty(ctx context.Context, p *spec.Property, req Request, value any) (*Outcome, error) {
	inv := m.start(p, p.FeatureType().String(), req)
	ic := inv.interaction()

	if !m.gate(ctx, inv, StateHide, func() consent.Consent { return m.evaluator.IsVisible(ctx, p, ic) }) {
		return inv.outcome, nil
	}
	if !m.gate(ctx, inv, StateDisable, func() consent.Consent { return m.evaluator.IsUsable(ctx, p, ic) }) {
		return inv.outcome, nil
	}
	if !m.gate(ctx, inv, StateValidate, func() consent.Consent { return m.evaluator.IsValid(ctx, p, value, ic) }) {
		return inv.outcome, nil
	}

	return m.execute(ctx, inv, []any{value}, func(args []any) (any, error) {
		if err := p.Set(req.Target, args[0]); err != nil {
			return nil, err
		}
		return args[0], nil
	})
}
