package factory

// Default returns a new programming model with the built-in factories:
// fallbacks first, then member discovery and supporting methods, then
// declarative annotations, then inferred and derived facets
func Default() *ProgrammingModel {
	factories := []Factory{
		FallbackFactory{},
		IgnoredMethodsFactory{},
		ProgrammaticFactory{},
		ObjectAnnotationsFactory{},
		TitleFactory{},
		PropertyAccessorFactory{},
		PropertySetterFactory{},
		CollectionTypeOfFactory{},
		ActionInvocationFactory{},
		HideMethodFactory{},
		DisableMethodFactory{},
		ValidateMethodFactory{},
		DefaultMethodFactory{},
		ChoicesMethodFactory{},
	}
	factories = append(factories, AnnotationFactories()...)
	factories = append(factories, InferredOptionalityFactory{}, ImmutableFactory{})
	return MustProgrammingModel(factories...)
}
