package facets

import (
	"fmt"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
)

// PropertyAccessorFacet reads a property or collection from the target
type PropertyAccessorFacet struct {
	facet.Base
	get descriptor.Invoker
}

// NewPropertyAccessor creates an accessor facet
func NewPropertyAccessor(h facet.Holder, get descriptor.Invoker) *PropertyAccessorFacet {
	return &PropertyAccessorFacet{Base: facet.NewBase(PropertyAccessorKind, h, facet.PrecedenceExplicit), get: get}
}

// Get returns the current value of the property on target
func (f *PropertyAccessorFacet) Get(target any) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("%s: no target", f.Holder().Identifier())
	}
	return f.get(target, nil)
}

// PropertySetterFacet writes a property on the target
type PropertySetterFacet struct {
	facet.Base
	method string
	set    descriptor.Assigner
}

// NewPropertySetter creates a setter facet; method is empty for direct field assignment
func NewPropertySetter(h facet.Holder, method string, set descriptor.Assigner) *PropertySetterFacet {
	return &PropertySetterFacet{
		Base:   facet.NewBase(PropertySetterKind, h, facet.PrecedenceExplicit),
		method: method,
		set:    set,
	}
}

// Set assigns value to the property on target
func (f *PropertySetterFacet) Set(target, value any) error {
	if target == nil {
		return fmt.Errorf("%s: no target", f.Holder().Identifier())
	}
	return f.set(target, value)
}

func (f *PropertySetterFacet) Attributes() map[string]any {
	if f.method == "" {
		return map[string]any{"field": true}
	}
	return map[string]any{"method": f.method}
}

// ActionInvocationFacet calls the action method
type ActionInvocationFacet struct {
	facet.Base
	invoke       descriptor.Invoker
	returnType   string
	returnsError bool
}

// NewActionInvocation creates an invocation facet
func NewActionInvocation(h facet.Holder, invoke descriptor.Invoker, returnType string, returnsError bool) *ActionInvocationFacet {
	return &ActionInvocationFacet{
		Base:         facet.NewBase(ActionInvocationKind, h, facet.PrecedenceExplicit),
		invoke:       invoke,
		returnType:   returnType,
		returnsError: returnsError,
	}
}

// ReturnType is the result type name, empty for actions without a result
func (f *ActionInvocationFacet) ReturnType() string { return f.returnType }

// Invoke runs the action on target with args
func (f *ActionInvocationFacet) Invoke(target any, args []any) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("%s: no target", f.Holder().Identifier())
	}
	if f.invoke == nil {
		return nil, fmt.Errorf("%s: action has no invoker", f.Holder().Identifier())
	}
	return f.invoke(target, args)
}

func (f *ActionInvocationFacet) Attributes() map[string]any {
	return map[string]any{"returns": f.returnType, "error": f.returnsError}
}

// DefaultedFacet supplies a default value through a Default<Member>() method
type DefaultedFacet struct {
	facet.Base
	supporting
}

// NewDefaulted creates a facet backed by the named supporting method
func NewDefaulted(h facet.Holder, method string, invoke descriptor.Invoker) *DefaultedFacet {
	return &DefaultedFacet{
		Base:       facet.NewBase(DefaultedKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

// Default returns the default value for target
func (f *DefaultedFacet) Default(target any) (any, error) {
	if target == nil {
		return nil, nil
	}
	return f.call(target)
}

func (f *DefaultedFacet) Attributes() map[string]any { return f.attributes() }

// ChoicesFacet supplies the values a property or parameter may take through a Choices<Member>() method
type ChoicesFacet struct {
	facet.Base
	supporting
}

// NewChoices creates a facet backed by the named supporting method
func NewChoices(h facet.Holder, method string, invoke descriptor.Invoker) *ChoicesFacet {
	return &ChoicesFacet{
		Base:       facet.NewBase(ChoicesKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

// Choices returns the choices offered for target
func (f *ChoicesFacet) Choices(target any) ([]any, error) {
	if target == nil {
		return nil, nil
	}
	out, err := f.call(target)
	if err != nil {
		return nil, err
	}
	choices, err := toSlice(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.method, err)
	}
	return choices, nil
}

func (f *ChoicesFacet) Attributes() map[string]any { return f.attributes() }

// TypeOfFacet records the element type of a collection
type TypeOfFacet struct {
	facet.Base
	elem string
}

// NewTypeOf creates a type-of facet
func NewTypeOf(h facet.Holder, elem string, p facet.Precedence) *TypeOfFacet {
	return &TypeOfFacet{Base: facet.NewBase(TypeOfKind, h, p), elem: elem}
}

func (f *TypeOfFacet) ElemType() string { return f.elem }

func (f *TypeOfFacet) Attributes() map[string]any {
	return map[string]any{"elem": f.elem}
}

// ValueFacet marks a specification as a built-in value type
type ValueFacet struct {
	facet.Base
	goType string
}

// NewValue creates a value facet
func NewValue(h facet.Holder, goType string) *ValueFacet {
	return &ValueFacet{Base: facet.NewBase(ValueKind, h, facet.PrecedenceExplicit), goType: goType}
}

func (f *ValueFacet) GoType() string { return f.goType }
