// Package factory contains the facet factory pipeline: an ordered programming
// model of factories that each inspect a type descriptor and attach facets.
package factory

import (
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// Factory contributes facets to the elements of the feature types it declares.
// A factory implements at least one of ClassProcessor, MethodProcessor and
// ParameterProcessor.
type Factory interface {
	Name() string
	FeatureTypes() ident.FeatureTypes
}

// ClassProcessor processes the type itself
type ClassProcessor interface {
	Factory
	ProcessClass(ctx *ProcessClassContext)
}

// MethodProcessor processes properties, collections and actions
type MethodProcessor interface {
	Factory
	ProcessMethod(ctx *ProcessMethodContext)
}

// ParameterProcessor processes action parameters
type ParameterProcessor interface {
	Factory
	ProcessParameter(ctx *ProcessParameterContext)
}

// Reporter receives malformed contributions found while processing
type Reporter interface {
	AddFailure(id ident.Identifier, format string, args ...any)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(id ident.Identifier, format string, args ...any)

func (f ReporterFunc) AddFailure(id ident.Identifier, format string, args ...any) {
	f(id, format, args...)
}

// Discard is a Reporter that drops every failure
var Discard Reporter = ReporterFunc(func(ident.Identifier, string, ...any) {})

// ProcessClassContext is handed to class processors
type ProcessClassContext struct {
	Type     *descriptor.Type
	Holder   facet.Holder
	Remover  *MethodRemover
	Reporter Reporter
}

// ProcessMethodContext is handed to method processors for one member
type ProcessMethodContext struct {
	Type        *descriptor.Type
	Member      descriptor.Member
	FeatureType ident.FeatureType
	Holder      facet.Holder
	// Owner is the holder of the type the member belongs to
	Owner    facet.Holder
	Remover  *MethodRemover
	Reporter Reporter
}

// ProcessParameterContext is handed to parameter processors for one action parameter
type ProcessParameterContext struct {
	Type     *descriptor.Type
	Action   descriptor.Member
	Index    int
	Param    descriptor.Param
	Holder   facet.Holder
	Owner    facet.Holder
	Remover  *MethodRemover
	Reporter Reporter
}

// Annotations returns the annotations of the member being processed
func (c *ProcessMethodContext) Annotations() descriptor.Annotations { return c.Member.Annotations }

// Annotations returns the annotations of the parameter being processed
func (c *ProcessParameterContext) Annotations() descriptor.Annotations { return c.Param.Annotations }

// Annotations returns the annotations of the type being processed
func (c *ProcessClassContext) Annotations() descriptor.Annotations { return c.Type.Annotations }
