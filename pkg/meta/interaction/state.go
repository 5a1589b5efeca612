// Package interaction runs member invocations through the hide, disable,
// validate, executing and executed phases, publishing an event per phase.
package interaction

import "fmt"

// State is a phase of an invocation, or its terminal state
type State int

const (
	StateHide State = iota
	StateDisable
	StateValidate
	StateExecuting
	StateExecuted
	// StateAborted is reached on the first veto before execution
	StateAborted
)

var stateNames = map[State]string{
	StateHide:      "hide",
	StateDisable:   "disable",
	StateValidate:  "validate",
	StateExecuting: "executing",
	StateExecuted:  "executed",
	StateAborted:   "aborted",
}

// String returns the string representation of the state
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no phase follows
func (s State) IsTerminal() bool {
	return s == StateExecuted || s == StateAborted
}

// canVeto reports whether listeners may veto during the phase
func (s State) canVeto() bool {
	return s <= StateExecuting
}
