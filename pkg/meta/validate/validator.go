package validate

import (
	"fmt"
	"log/slog"

	"github.com/toyz/metamodel/pkg/meta/ident"
	"github.com/toyz/metamodel/pkg/meta/spec"
)

// Graph is the assembled metamodel a validator visits
type Graph interface {
	Specifications() []*spec.ObjectSpecification
}

// Rule checks one aspect of the metamodel
type Rule interface {
	Name() string
	Validate(g Graph, failures *Failures)
}

// RuleFunc adapts a function to Rule
type RuleFunc struct {
	RuleName string
	Check    func(g Graph, failures *Failures)
}

func (r RuleFunc) Name() string                         { return r.RuleName }
func (r RuleFunc) Validate(g Graph, failures *Failures) { r.Check(g, failures) }

// Option configures a Composite
type Option func(*Composite)

// WithFailFast stops after the first rule that reports a failure
func WithFailFast() Option {
	return func(c *Composite) { c.failFast = true }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composite) { c.logger = logger }
}

// Composite runs independently registered rules against a graph
type Composite struct {
	rules    []Rule
	failFast bool
	logger   *slog.Logger
}

// NewComposite creates a validator running rules in order
func NewComposite(rules []Rule, opts ...Option) *Composite {
	c := &Composite{rules: append([]Rule(nil), rules...)}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Add appends a rule
func (c *Composite) Add(r Rule) {
	c.rules = append(c.rules, r)
}

// Rules returns the registered rules in order
func (c *Composite) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Validate runs every rule, reporting into failures, and returns the
// aggregate error when any failure was recorded, including failures
// recorded before Validate was called
func (c *Composite) Validate(g Graph, failures *Failures) error {
	for _, r := range c.rules {
		before := failures.Len()
		c.run(r, g, failures)
		found := failures.Len() - before
		c.logger.Debug("validation rule finished", "rule", r.Name(), "failures", found)
		if c.failFast && found > 0 {
			break
		}
	}
	return failures.Err()
}

func (c *Composite) run(r Rule, g Graph, failures *Failures) {
	defer func() {
		if rec := recover(); rec != nil {
			failures.Add(ident.Identifier{}, fmt.Sprintf("validation rule %s failed: %v", r.Name(), rec))
			c.logger.Error("validation rule panicked", "rule", r.Name(), "error", rec)
		}
	}()
	r.Validate(g, failures)
}
