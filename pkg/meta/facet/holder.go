package facet

import (
	"sync"

	"github.com/toyz/metamodel/pkg/meta/ident"
)

// Holder is any element of the metamodel that carries facets
type Holder interface {
	Identifier() ident.Identifier
	// AddFacet attaches f, resolving conflicts with the active facet of the same kind
	AddFacet(f Facet)
	// RemoveFacet detaches f; removing the active facet lets the strongest shadow take over
	RemoveFacet(f Facet) bool
	// Facet returns the active facet of the kind, or nil
	Facet(kind Kind) Facet
	HasFacet(kind Kind) bool
	// Facets returns the active facets in attachment order
	Facets() []Facet
	// ForEachContributedFacet visits the shadowed contributions of the kind in contribution order
	ForEachContributedFacet(kind Kind, fn func(Facet))
}

// HolderBase implements Holder and is embedded by specifications, members and parameters
type HolderBase struct {
	mu          sync.RWMutex
	id          ident.Identifier
	order       []Kind
	active      map[Kind]Facet
	contributed map[Kind][]Facet
}

// InitHolder sets the identifier of an embedded holder
func (h *HolderBase) InitHolder(id ident.Identifier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = id
	h.ensure()
}

// NewHolder creates a standalone holder
func NewHolder(id ident.Identifier) *HolderBase {
	h := &HolderBase{}
	h.InitHolder(id)
	return h
}

// Identifier returns the identifier of the holder
func (h *HolderBase) Identifier() ident.Identifier { return h.id }

// AddFacet attaches f under its kind
func (h *HolderBase) AddFacet(f Facet) {
	if f == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensure()

	kind := f.Kind()
	existing, ok := h.active[kind]
	if !ok {
		h.active[kind] = f
		h.order = append(h.order, kind)
		return
	}
	if existing == f {
		return
	}
	if f.AlwaysReplace() || f.Precedence() > existing.Precedence() {
		h.contributed[kind] = append(h.contributed[kind], existing)
		h.active[kind] = f
		return
	}
	h.contributed[kind] = append(h.contributed[kind], f)
}

// RemoveFacet detaches f from the holder, reporting whether it was attached
func (h *HolderBase) RemoveFacet(f Facet) bool {
	if f == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensure()

	kind := f.Kind()
	shadows := h.contributed[kind]
	if h.active[kind] != f {
		for i, s := range shadows {
			if s == f {
				h.contributed[kind] = append(shadows[:i:i], shadows[i+1:]...)
				return true
			}
		}
		return false
	}

	if len(shadows) == 0 {
		delete(h.active, kind)
		for i, k := range h.order {
			if k == kind {
				h.order = append(h.order[:i:i], h.order[i+1:]...)
				break
			}
		}
		return true
	}

	// the latest contribution wins among equals
	best := len(shadows) - 1
	for i := len(shadows) - 2; i >= 0; i-- {
		if shadows[i].Precedence() > shadows[best].Precedence() {
			best = i
		}
	}
	h.active[kind] = shadows[best]
	h.contributed[kind] = append(shadows[:best:best], shadows[best+1:]...)
	return true
}

// Facet returns the active facet of the kind, or nil
func (h *HolderBase) Facet(kind Kind) Facet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active[kind]
}

// HasFacet reports whether a facet of the kind is active
func (h *HolderBase) HasFacet(kind Kind) bool {
	return h.Facet(kind) != nil
}

// Facets returns the active facets in attachment order
func (h *HolderBase) Facets() []Facet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Facet, 0, len(h.order))
	for _, k := range h.order {
		out = append(out, h.active[k])
	}
	return out
}

// ForEachContributedFacet visits the shadowed facets of the kind
func (h *HolderBase) ForEachContributedFacet(kind Kind, fn func(Facet)) {
	h.mu.RLock()
	shadows := append([]Facet(nil), h.contributed[kind]...)
	h.mu.RUnlock()
	for _, f := range shadows {
		fn(f)
	}
}

func (h *HolderBase) ensure() {
	if h.active == nil {
		h.active = make(map[Kind]Facet)
	}
	if h.contributed == nil {
		h.contributed = make(map[Kind][]Facet)
	}
}

// Lookup returns the active facet of the kind typed as T
func Lookup[T Facet](h Holder, kind Kind) (T, bool) {
	var zero T
	if h == nil {
		return zero, false
	}
	f := h.Facet(kind)
	if f == nil {
		return zero, false
	}
	t, ok := f.(T)
	return t, ok
}

// Contributions returns the active facet followed by its shadows
func Contributions(h Holder, kind Kind) []Facet {
	var out []Facet
	if f := h.Facet(kind); f != nil {
		out = append(out, f)
	}
	h.ForEachContributedFacet(kind, func(f Facet) {
		out = append(out, f)
	})
	return out
}
