package facets

import (
	"strconv"
	"strings"

	"github.com/toyz/metamodel/pkg/meta/facet"
)

// ImmutableFacet marks a domain type whose properties may not be changed
type ImmutableFacet struct {
	facet.Base
	reason string
}

// NewImmutable creates an immutable facet
func NewImmutable(h facet.Holder, reason string, p facet.Precedence) *ImmutableFacet {
	if reason == "" {
		reason = ImmutableReason
	}
	return &ImmutableFacet{Base: facet.NewBase(ImmutableKind, h, p), reason: reason}
}

func (f *ImmutableFacet) Reason() string { return f.reason }

func (f *ImmutableFacet) Attributes() map[string]any {
	return map[string]any{"reason": f.reason}
}

// MemberOrderFacet places a member by a dotted sequence such as "1.2"
type MemberOrderFacet struct {
	facet.Base
	sequence string
}

// NewMemberOrder creates a member order facet
func NewMemberOrder(h facet.Holder, sequence string, p facet.Precedence) *MemberOrderFacet {
	return &MemberOrderFacet{Base: facet.NewBase(MemberOrderKind, h, p), sequence: sequence}
}

func (f *MemberOrderFacet) Sequence() string { return f.sequence }

func (f *MemberOrderFacet) Attributes() map[string]any {
	return map[string]any{"sequence": f.sequence}
}

// CompareSequence orders dotted sequences component by component, numerically where possible
func CompareSequence(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareComponent(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func compareComponent(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}

// Action semantics
const (
	Safe          = "safe"
	Idempotent    = "idempotent"
	NonIdempotent = "non-idempotent"
)

// ActionSemanticsFacet tells whether an action changes state and can be repeated
type ActionSemanticsFacet struct {
	facet.Base
	semantics string
}

// NewActionSemantics creates a semantics facet
func NewActionSemantics(h facet.Holder, semantics string, p facet.Precedence) *ActionSemanticsFacet {
	return &ActionSemanticsFacet{Base: facet.NewBase(ActionSemanticsKind, h, p), semantics: semantics}
}

func (f *ActionSemanticsFacet) Semantics() string { return f.semantics }

// IsSafe reports whether the action leaves state unchanged
func (f *ActionSemanticsFacet) IsSafe() bool { return f.semantics == Safe }

func (f *ActionSemanticsFacet) Attributes() map[string]any {
	return map[string]any{"semantics": f.semantics}
}

// DomainEventFacet names the topic under which interaction events of a member are published
type DomainEventFacet struct {
	facet.Base
	topic string
}

// NewDomainEvent creates a domain event facet
func NewDomainEvent(h facet.Holder, topic string, p facet.Precedence) *DomainEventFacet {
	return &DomainEventFacet{Base: facet.NewBase(DomainEventKind, h, p), topic: topic}
}

func (f *DomainEventFacet) Topic() string { return f.topic }

func (f *DomainEventFacet) Attributes() map[string]any {
	return map[string]any{"topic": f.topic}
}
