package consent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/toyz/metamodel/pkg/meta/facet"
)

// FaultHandler receives failures raised inside advisors
type FaultHandler interface {
	HandleFault(ctx context.Context, ic *Interaction, advisor facet.Facet, err error)
}

// FaultHandlerFunc adapts a function to FaultHandler
type FaultHandlerFunc func(ctx context.Context, ic *Interaction, advisor facet.Facet, err error)

func (f FaultHandlerFunc) HandleFault(ctx context.Context, ic *Interaction, advisor facet.Facet, err error) {
	f(ctx, ic, advisor, err)
}

// LogFaults returns a FaultHandler that logs through logger
func LogFaults(logger *slog.Logger) FaultHandler {
	return FaultHandlerFunc(func(ctx context.Context, ic *Interaction, advisor facet.Facet, err error) {
		logger.ErrorContext(ctx, "advisor failed",
			"identifier", ic.Identifier.String(),
			"interaction", ic.Kind.String(),
			"facet", string(advisor.Kind()),
			"error", err)
	})
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithFaultHandler routes advisor failures to h
func WithFaultHandler(h FaultHandler) Option {
	return func(e *Evaluator) { e.faults = h }
}

// WithLogger sets the logger used for tracing and the default fault handler
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// Evaluator answers visibility, usability and validity questions for facet holders
type Evaluator struct {
	faults FaultHandler
	logger *slog.Logger
}

// NewEvaluator creates an evaluator
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.faults == nil {
		e.faults = LogFaults(e.logger)
	}
	return e
}

// IsVisible chains every VisibilityAdvisor on h; the first veto wins
func (e *Evaluator) IsVisible(ctx context.Context, h facet.Holder, ic *Interaction) Consent {
	ic = e.prepare(h, ic, Visibility)
	return evaluate(ctx, e, h, ic, func(a VisibilityAdvisor) Consent { return a.Hides(ctx, ic) })
}

// IsUsable chains every UsabilityAdvisor on h; the first veto wins
func (e *Evaluator) IsUsable(ctx context.Context, h facet.Holder, ic *Interaction) Consent {
	ic = e.prepare(h, ic, Usability)
	return evaluate(ctx, e, h, ic, func(a UsabilityAdvisor) Consent { return a.Disables(ctx, ic) })
}

// IsValid chains every ValidityAdvisor on h against proposed; the first veto wins
func (e *Evaluator) IsValid(ctx context.Context, h facet.Holder, proposed any, ic *Interaction) Consent {
	ic = e.prepare(h, ic, Validity)
	ic.Proposed = proposed
	return evaluate(ctx, e, h, ic, func(a ValidityAdvisor) Consent { return a.Invalidates(ctx, ic) })
}

func (e *Evaluator) prepare(h facet.Holder, ic *Interaction, kind Kind) *Interaction {
	var c Interaction
	if ic != nil {
		c = *ic
	}
	c.Kind = kind
	if c.Identifier.IsZero() {
		c.Identifier = h.Identifier()
	}
	return &c
}

func evaluate[A facet.Facet](ctx context.Context, e *Evaluator, h facet.Holder, ic *Interaction, ask func(A) Consent) Consent {
	if ic.Initiator == ByFramework {
		return Allow()
	}
	for _, f := range h.Facets() {
		advisor, ok := f.(A)
		if !ok {
			continue
		}
		c := consult(ctx, e, ic, advisor, ask)
		if c.IsVetoed() {
			e.logger.DebugContext(ctx, "vetoed",
				"identifier", ic.Identifier.String(),
				"interaction", ic.Kind.String(),
				"facet", string(f.Kind()),
				"reason", c.Reason())
			return c
		}
	}
	return Allow()
}

func consult[A facet.Facet](ctx context.Context, e *Evaluator, ic *Interaction, advisor A, ask func(A) Consent) (c Consent) {
	defer func() {
		if r := recover(); r != nil {
			c = Fault(fmt.Errorf("%s advisor panicked: %v", advisor.Kind(), r))
		}
		if c.Err() != nil {
			e.faults.HandleFault(ctx, ic, advisor, c.Err())
			c = c.withoutFault()
		}
	}()
	return ask(advisor)
}
