// Package consent evaluates whether a metamodel element may be seen, used or
// given a value, by chaining the advisory facets attached to it.
package consent

import "fmt"

// DefaultVetoReason replaces an empty veto reason
const DefaultVetoReason = "Not allowed"

// FaultReason is the user-facing reason when an advisor fails unexpectedly
const FaultReason = "Unavailable"

// Consent is the outcome of a visibility, usability or validity check
type Consent struct {
	vetoed bool
	reason string
	fault  error
}

// Allow grants consent
func Allow() Consent { return Consent{} }

// Veto refuses consent with a user-presentable reason
func Veto(reason string) Consent {
	if reason == "" {
		reason = DefaultVetoReason
	}
	return Consent{vetoed: true, reason: reason}
}

// Vetof refuses consent with a formatted reason
func Vetof(format string, args ...any) Consent {
	return Veto(fmt.Sprintf(format, args...))
}

// Fault refuses consent because the advisor itself failed. The evaluator reports
// err to its fault handler and hands the caller a generic veto.
func Fault(err error) Consent {
	return Consent{vetoed: true, reason: FaultReason, fault: err}
}

// FromReason treats an empty reason as consent and anything else as a veto
func FromReason(reason string) Consent {
	if reason == "" {
		return Allow()
	}
	return Veto(reason)
}

func (c Consent) IsAllowed() bool { return !c.vetoed }
func (c Consent) IsVetoed() bool  { return c.vetoed }

// Reason returns the veto reason, empty when allowed
func (c Consent) Reason() string { return c.reason }

// Err returns the fault behind a faulted veto
func (c Consent) Err() error { return c.fault }

func (c Consent) String() string {
	if !c.vetoed {
		return "Allow"
	}
	return fmt.Sprintf("Veto(%q)", c.reason)
}

// withoutFault drops the fault so it never leaks past the evaluator
func (c Consent) withoutFault() Consent {
	c.fault = nil
	return c
}
