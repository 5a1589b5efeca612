package interaction

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// ErrPhaseViolation is returned when a listener changes an event in a phase
// that does not allow the change
var ErrPhaseViolation = errors.New("not allowed in this phase")

// Event is published once per phase of an invocation
type Event struct {
	// ID is shared by every event of one invocation
	ID         uuid.UUID
	Identifier ident.Identifier
	Phase      State
	// Topic is the domain event topic of the member, empty when none is declared
	Topic   string
	Target  any
	Subject consent.Subject

	args   []any
	result any
	veto   consent.Consent
}

func newEvent(inv *invocation, phase State) *Event {
	return &Event{
		ID:         inv.id,
		Identifier: inv.identifier,
		Phase:      phase,
		Topic:      inv.topic,
		Target:     inv.req.Target,
		Subject:    inv.req.Subject,
		veto:       consent.Allow(),
	}
}

// Args returns the arguments; only executing and executed events carry them
func (e *Event) Args() []any {
	return append([]any(nil), e.args...)
}

// SetArg replaces the argument at index, only while executing
func (e *Event) SetArg(index int, value any) error {
	if e.Phase != StateExecuting {
		return fmt.Errorf("set argument during %s: %w", e.Phase, ErrPhaseViolation)
	}
	if index < 0 || index >= len(e.args) {
		return fmt.Errorf("argument index %d out of range [0,%d)", index, len(e.args))
	}
	e.args[index] = value
	return nil
}

// Result returns the value returned by the invocation; only executed events carry it
func (e *Event) Result() any { return e.result }

// SetResult replaces the value returned to the caller, only once executed
func (e *Event) SetResult(value any) error {
	if e.Phase != StateExecuted {
		return fmt.Errorf("set result during %s: %w", e.Phase, ErrPhaseViolation)
	}
	e.result = value
	return nil
}

// Veto aborts the invocation. Executed invocations cannot be vetoed.
func (e *Event) Veto(reason string) error {
	if !e.Phase.canVeto() {
		return fmt.Errorf("veto during %s: %w", e.Phase, ErrPhaseViolation)
	}
	if e.veto.IsAllowed() {
		e.veto = consent.Veto(reason)
	}
	return nil
}

// Vetoed returns the first veto raised by a listener
func (e *Event) Vetoed() (consent.Consent, bool) {
	return e.veto, e.veto.IsVetoed()
}
