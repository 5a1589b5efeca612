package factory

import (
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// claimSupporting removes the named supporting method. ok is false when the
// method does not exist; valid is false when its signature was rejected and
// a failure reported.
func claimSupporting(r *MethodRemover, rep Reporter, typeName, name, by string, id ident.Identifier,
	check func(descriptor.Member) bool, expected string) (m descriptor.Member, ok, valid bool) {
	m, ok = r.FindMethod(name)
	if !ok {
		return m, false, false
	}
	r.Remove(name, by)
	if !check(m) {
		rep.AddFailure(id, "%s#%s: supporting method must %s", typeName, name, expected)
		return m, true, false
	}
	return m, true, true
}

func noParamsReturning(typ string) func(descriptor.Member) bool {
	return func(m descriptor.Member) bool { return len(m.Params) == 0 && m.Type == typ }
}

func paramsReturning(n int, typ string) func(descriptor.Member) bool {
	return func(m descriptor.Member) bool { return len(m.Params) == n && m.Type == typ }
}

func noParamsWithResult(m descriptor.Member) bool { return len(m.Params) == 0 && m.Type != "" }

// HideMethodFactory installs Hide<Member>() bool methods
type HideMethodFactory struct{}

func (HideMethodFactory) Name() string                     { return "hide-method" }
func (HideMethodFactory) FeatureTypes() ident.FeatureTypes { return ident.Members }

func (f HideMethodFactory) ProcessMethod(ctx *ProcessMethodContext) {
	name := SupportingName(HidePrefix, ctx.Member.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), noParamsReturning("bool"), "take no parameters and return bool")
	if valid {
		ctx.Holder.AddFacet(facets.NewHideForContext(ctx.Holder, name, m.Invoke))
	}
}

// DisableMethodFactory installs Disable<Member>() string methods
type DisableMethodFactory struct{}

func (DisableMethodFactory) Name() string                     { return "disable-method" }
func (DisableMethodFactory) FeatureTypes() ident.FeatureTypes { return ident.Members }

func (f DisableMethodFactory) ProcessMethod(ctx *ProcessMethodContext) {
	name := SupportingName(DisablePrefix, ctx.Member.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), noParamsReturning("string"), "take no parameters and return string")
	if valid {
		ctx.Holder.AddFacet(facets.NewDisableForContext(ctx.Holder, name, m.Invoke))
	}
}

// ValidateMethodFactory installs Validate<Property>(v) string,
// Validate<Action>(args...) string and Validate<N><Action>(v) string methods
type ValidateMethodFactory struct{}

func (ValidateMethodFactory) Name() string { return "validate-method" }
func (ValidateMethodFactory) FeatureTypes() ident.FeatureTypes {
	return ident.PropertiesAndActions | ident.ParametersOnly
}

func (f ValidateMethodFactory) ProcessMethod(ctx *ProcessMethodContext) {
	name := SupportingName(ValidatePrefix, ctx.Member.Name)
	if ctx.FeatureType.IsAction() {
		n := len(ctx.Member.Params)
		m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
			ctx.Holder.Identifier(), paramsReturning(n, "string"), "take the parameters of the action and return string")
		if valid {
			ctx.Holder.AddFacet(facets.NewActionValidation(ctx.Holder, name, m.Invoke))
		}
		return
	}
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), paramsReturning(1, "string"), "take the proposed value and return string")
	if valid {
		ctx.Holder.AddFacet(facets.NewValidateForContext(ctx.Holder, name, m.Invoke))
	}
}

func (f ValidateMethodFactory) ProcessParameter(ctx *ProcessParameterContext) {
	name := ParameterSupportingName(ValidatePrefix, ctx.Index, ctx.Action.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), paramsReturning(1, "string"), "take the proposed argument and return string")
	if valid {
		ctx.Holder.AddFacet(facets.NewValidateForContext(ctx.Holder, name, m.Invoke))
	}
}

// DefaultMethodFactory installs Default<Property>() and Default<N><Action>() methods
type DefaultMethodFactory struct{}

func (DefaultMethodFactory) Name() string                     { return "default-method" }
func (DefaultMethodFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndParameters }

func (f DefaultMethodFactory) ProcessMethod(ctx *ProcessMethodContext) {
	name := SupportingName(DefaultPrefix, ctx.Member.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), noParamsWithResult, "take no parameters and return a value")
	if valid {
		ctx.Holder.AddFacet(facets.NewDefaulted(ctx.Holder, name, m.Invoke))
	}
}

func (f DefaultMethodFactory) ProcessParameter(ctx *ProcessParameterContext) {
	name := ParameterSupportingName(DefaultPrefix, ctx.Index, ctx.Action.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), noParamsWithResult, "take no parameters and return a value")
	if valid {
		ctx.Holder.AddFacet(facets.NewDefaulted(ctx.Holder, name, m.Invoke))
	}
}

// ChoicesMethodFactory installs Choices<Property>() and Choices<N><Action>() methods
type ChoicesMethodFactory struct{}

func (ChoicesMethodFactory) Name() string                     { return "choices-method" }
func (ChoicesMethodFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndParameters }

func returnsSlice(m descriptor.Member) bool {
	return len(m.Params) == 0 && descriptor.ElementType(m.Type) != ""
}

func (f ChoicesMethodFactory) ProcessMethod(ctx *ProcessMethodContext) {
	name := SupportingName(ChoicesPrefix, ctx.Member.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), returnsSlice, "take no parameters and return a slice")
	if valid {
		ctx.Holder.AddFacet(facets.NewChoices(ctx.Holder, name, m.Invoke))
	}
}

func (f ChoicesMethodFactory) ProcessParameter(ctx *ProcessParameterContext) {
	name := ParameterSupportingName(ChoicesPrefix, ctx.Index, ctx.Action.Name)
	m, _, valid := claimSupporting(ctx.Remover, ctx.Reporter, ctx.Type.Name, name, f.Name(),
		ctx.Holder.Identifier(), returnsSlice, "take no parameters and return a slice")
	if valid {
		ctx.Holder.AddFacet(facets.NewChoices(ctx.Holder, name, m.Invoke))
	}
}
