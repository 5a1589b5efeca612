package factory

import (
	"sync"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// Removal records which factory claimed a member
type Removal struct {
	Member string
	By     string
}

// MethodRemover tracks the members of one type that have not yet been claimed.
// Removal is idempotent and the first claim wins.
type MethodRemover struct {
	mu        sync.Mutex
	remaining []descriptor.Member
	removed   map[string]string
	log       []Removal
}

// NewMethodRemover starts with every member unclaimed
func NewMethodRemover(members []descriptor.Member) *MethodRemover {
	return &MethodRemover{
		remaining: append([]descriptor.Member(nil), members...),
		removed:   make(map[string]string),
	}
}

// Find returns the unclaimed member with the name
func (r *MethodRemover) Find(name string) (descriptor.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.remaining {
		if m.Name == name {
			return m, true
		}
	}
	return descriptor.Member{}, false
}

// FindMethod returns the unclaimed method with the name
func (r *MethodRemover) FindMethod(name string) (descriptor.Member, bool) {
	m, ok := r.Find(name)
	if !ok || !m.IsMethod() {
		return descriptor.Member{}, false
	}
	return m, true
}

// Remove claims the member for by. It reports false when the member was
// already claimed or does not exist.
func (r *MethodRemover) Remove(name, by string) (descriptor.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.remaining {
		if m.Name == name {
			r.remaining = append(r.remaining[:i:i], r.remaining[i+1:]...)
			r.removed[name] = by
			r.log = append(r.log, Removal{Member: name, By: by})
			return m, true
		}
	}
	return descriptor.Member{}, false
}

// RemoveIf claims every unclaimed member matching pred
func (r *MethodRemover) RemoveIf(pred func(descriptor.Member) bool, by string) []descriptor.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []descriptor.Member
	kept := r.remaining[:0:0]
	for _, m := range r.remaining {
		if pred(m) {
			claimed = append(claimed, m)
			r.removed[m.Name] = by
			r.log = append(r.log, Removal{Member: m.Name, By: by})
			continue
		}
		kept = append(kept, m)
	}
	r.remaining = kept
	return claimed
}

// IsRemoved reports whether the member was claimed, and by whom
func (r *MethodRemover) IsRemoved(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	by, ok := r.removed[name]
	return by, ok
}

// Remaining returns the unclaimed members in declaration order
func (r *MethodRemover) Remaining() []descriptor.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]descriptor.Member(nil), r.remaining...)
}

// Log returns the removals in the order they happened
func (r *MethodRemover) Log() []Removal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Removal(nil), r.log...)
}
