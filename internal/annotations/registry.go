package annotations

import (
	"fmt"
	"slices"
	"sync"

	"github.com/toyz/metamodel/internal/utils"
)

// Registry holds the schema of every annotation the parser accepts
type Registry struct {
	schemas *utils.Registry[AnnotationType, AnnotationSchema]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: utils.NewRegistry("annotation schemas",
		utils.Unique[AnnotationType, AnnotationSchema]("annotation"),
		func(_ AnnotationType, s AnnotationSchema, _ bool) error {
			return s.wellFormed()
		},
	)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in schemas
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := defaultRegistry.Register(BuiltinSchemas()...); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds schemas under their own annotation types
func (r *Registry) Register(schemas ...AnnotationSchema) error {
	for _, s := range schemas {
		if err := r.schemas.Register(s.Type, s); err != nil {
			return err
		}
	}
	return nil
}

// Schema returns the schema of t
func (r *Registry) Schema(t AnnotationType) (AnnotationSchema, bool) {
	return r.schemas.Get(t)
}

// Types returns the registered annotation types in declaration order
func (r *Registry) Types() []AnnotationType {
	types := r.schemas.Keys()
	slices.Sort(types)
	return types
}

// wellFormed checks that s can be used to parse annotations
func (s AnnotationSchema) wellFormed() error {
	if s.Targets == 0 {
		return fmt.Errorf("%s: schema allows no targets", s.Type)
	}
	for name, p := range s.Parameters {
		if name == "" {
			return fmt.Errorf("%s: parameter with empty name", s.Type)
		}
		if p.Type < StringType || p.Type > StringSliceType {
			return fmt.Errorf("%s -%s: invalid parameter type %d", s.Type, name, p.Type)
		}
		if p.DefaultValue != nil && !p.Type.accepts(p.DefaultValue) {
			return fmt.Errorf("%s -%s: default %v is not a %s", s.Type, name, p.DefaultValue, p.Type)
		}
	}
	for _, name := range s.Positional {
		if _, ok := s.Parameters[name]; !ok {
			return fmt.Errorf("%s: positional parameter %s is not declared", s.Type, name)
		}
	}
	return nil
}
