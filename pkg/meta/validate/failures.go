// Package validate checks an assembled metamodel and aggregates every
// failure found into one fatal error.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/toyz/metamodel/pkg/meta/ident"
)

// ErrMetaModelInvalid is matched by the aggregate error of an invalid metamodel
var ErrMetaModelInvalid = errors.New("metamodel is invalid")

// Failure is one problem found in the metamodel
type Failure struct {
	Identifier ident.Identifier `json:"identifier" yaml:"identifier"`
	Message    string           `json:"message" yaml:"message"`
}

// Failures collects failures in insertion order, dropping repeated messages.
// It is safe for concurrent use and implements factory.Reporter.
type Failures struct {
	mu       sync.Mutex
	failures []Failure
	seen     map[string]bool
}

// NewFailures creates an empty collector
func NewFailures() *Failures {
	return &Failures{seen: make(map[string]bool)}
}

// Add records a failure unless one with the same message is already recorded
func (f *Failures) Add(id ident.Identifier, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[message] {
		return false
	}
	f.seen[message] = true
	f.failures = append(f.failures, Failure{Identifier: id, Message: message})
	return true
}

// AddFailure records a formatted failure
func (f *Failures) AddFailure(id ident.Identifier, format string, args ...any) {
	f.Add(id, fmt.Sprintf(format, args...))
}

// Len returns the number of recorded failures
func (f *Failures) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.failures)
}

// List returns the failures in insertion order
func (f *Failures) List() []Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Failure(nil), f.failures...)
}

// Messages returns the failure messages in insertion order
func (f *Failures) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := make([]string, len(f.failures))
	for i, failure := range f.failures {
		messages[i] = failure.Message
	}
	return messages
}

// Err returns an *InvalidError listing every failure, or nil when there are none
func (f *Failures) Err() error {
	failures := f.List()
	if len(failures) == 0 {
		return nil
	}
	return &InvalidError{Failures: failures}
}

// InvalidError is the single fatal error of an invalid metamodel
type InvalidError struct {
	Failures []Failure
}

// Error lists the failures numbered from 1, one per line
func (e *InvalidError) Error() string {
	var b strings.Builder
	for i, f := range e.Failures {
		fmt.Fprintf(&b, "%d: %s\n", i+1, f.Message)
	}
	return b.String()
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrMetaModelInvalid
}
