package factory

import (
	"fmt"

	"github.com/toyz/metamodel/internal/utils"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// ProgrammingModel is the ordered set of factories run against every type.
// Factories run in registration order.
type ProgrammingModel struct {
	factories *utils.Registry[string, Factory]
}

// NewProgrammingModel creates a programming model from factories, in order
func NewProgrammingModel(factories ...Factory) (*ProgrammingModel, error) {
	registry := utils.NewRegistry("programming model",
		utils.NonZeroKey[string, Factory]("factory name"),
		utils.Unique[string, Factory]("factory"),
		func(name string, f Factory, _ bool) error {
			if f == nil {
				return fmt.Errorf("factory %s is nil", name)
			}
			switch f.(type) {
			case ClassProcessor, MethodProcessor, ParameterProcessor:
				return nil
			}
			return fmt.Errorf("factory %s processes neither classes, methods nor parameters", name)
		},
	)

	m := &ProgrammingModel{factories: registry}
	for _, f := range factories {
		if err := m.Add(f); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustProgrammingModel is like NewProgrammingModel but panics on error
func MustProgrammingModel(factories ...Factory) *ProgrammingModel {
	m, err := NewProgrammingModel(factories...)
	if err != nil {
		panic(err)
	}
	return m
}

// Add appends a factory to the end of the model
func (m *ProgrammingModel) Add(f Factory) error {
	var name string
	if f != nil {
		name = f.Name()
	}
	return m.factories.Register(name, f)
}

// Remove drops the named factory
func (m *ProgrammingModel) Remove(name string) bool {
	return m.factories.Remove(name)
}

// Factories returns all factories in order
func (m *ProgrammingModel) Factories() []Factory {
	return m.factories.Values()
}

// FactoriesFor returns the factories declaring the feature type, in order
func (m *ProgrammingModel) FactoriesFor(ft ident.FeatureType) []Factory {
	var out []Factory
	for _, f := range m.factories.All() {
		if f.FeatureTypes().Contains(ft) {
			out = append(out, f)
		}
	}
	return out
}

// ProcessClass runs every class processor declaring objects
func (m *ProgrammingModel) ProcessClass(ctx *ProcessClassContext) {
	for _, f := range m.FactoriesFor(ident.Object) {
		if p, ok := f.(ClassProcessor); ok {
			p.ProcessClass(ctx)
		}
	}
}

// ProcessMethod runs every method processor declaring ctx.FeatureType
func (m *ProgrammingModel) ProcessMethod(ctx *ProcessMethodContext) {
	for _, f := range m.FactoriesFor(ctx.FeatureType) {
		if p, ok := f.(MethodProcessor); ok {
			p.ProcessMethod(ctx)
		}
	}
}

// ProcessParameter runs every parameter processor declaring action parameters
func (m *ProgrammingModel) ProcessParameter(ctx *ProcessParameterContext) {
	for _, f := range m.FactoriesFor(ident.ActionParameter) {
		if p, ok := f.(ParameterProcessor); ok {
			p.ProcessParameter(ctx)
		}
	}
}
