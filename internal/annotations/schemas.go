package annotations

import "fmt"

// Built-in annotation schemas

// ObjectAnnotationSchema defines the schema for //meta::object annotations
var ObjectAnnotationSchema = AnnotationSchema{
	Type:        ObjectAnnotation,
	Description: "Marks a struct as a domain type that the metamodel introspects",
	Targets:     TypeTarget,
	Parameters: map[string]ParameterSpec{
		"Named":     {Type: StringType, Description: "Display name of the type"},
		"Described": {Type: StringType, Description: "Description of the type"},
		"Immutable": {Type: BoolType, DefaultValue: true, Description: "Disables every property of the type"},
	},
	Examples: []string{
		"//meta::object",
		"//meta::object -Named=\"Sales Invoice\"",
		"//meta::object -Immutable",
	},
}

// HiddenAnnotationSchema defines the schema for //meta::hidden annotations
var HiddenAnnotationSchema = AnnotationSchema{
	Type:        HiddenAnnotation,
	Description: "Hides a member or parameter unconditionally",
	Targets:     MemberTargets | ParamTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//meta::hidden"},
}

// DisabledAnnotationSchema defines the schema for //meta::disabled annotations
var DisabledAnnotationSchema = AnnotationSchema{
	Type:        DisabledAnnotation,
	Description: "Disables a member unconditionally",
	Targets:     MemberTargets,
	Positional:  []string{"Reason"},
	Parameters: map[string]ParameterSpec{
		"Reason": reasonParam("Always disabled"),
	},
	Examples: []string{
		"//meta::disabled",
		"//meta::disabled \"Locked by finance\"",
		"//meta::disabled -Reason=\"Locked by finance\"",
	},
}

// MandatoryAnnotationSchema defines the schema for //meta::mandatory annotations
var MandatoryAnnotationSchema = AnnotationSchema{
	Type:        MandatoryAnnotation,
	Description: "Requires a value for a property or parameter",
	Targets:     FieldTarget | MethodTarget | ParamTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//meta::mandatory"},
}

// OptionalAnnotationSchema defines the schema for //meta::optional annotations
var OptionalAnnotationSchema = AnnotationSchema{
	Type:        OptionalAnnotation,
	Description: "Allows a property or parameter to be left empty",
	Targets:     FieldTarget | MethodTarget | ParamTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//meta::optional"},
}

// MaxLengthAnnotationSchema defines the schema for //meta::maxlength annotations
var MaxLengthAnnotationSchema = AnnotationSchema{
	Type:        MaxLengthAnnotation,
	Description: "Limits the length of string values",
	Targets:     FieldTarget | MethodTarget | ParamTarget,
	Positional:  []string{"Value"},
	Parameters: map[string]ParameterSpec{
		"Value": {
			Type:        IntType,
			Required:    true,
			Description: "Maximum number of characters",
			Validator:   positive,
		},
	},
	Examples: []string{"//meta::maxlength 20", "//meta::maxlength -Value=20"},
}

// RegexAnnotationSchema defines the schema for //meta::regex annotations
var RegexAnnotationSchema = AnnotationSchema{
	Type:        RegexAnnotation,
	Description: "Requires string values to match a regular expression",
	Targets:     FieldTarget | MethodTarget | ParamTarget,
	Positional:  []string{"Pattern"},
	Parameters: map[string]ParameterSpec{
		"Pattern": {
			Type:        StringType,
			Required:    true,
			Description: "Regular expression the whole value must match",
			Validator:   pattern,
		},
		"Reason": reasonParam("Doesn't match pattern"),
	},
	Examples: []string{
		"//meta::regex \"^[A-Z]{3}-[0-9]+$\"",
		"//meta::regex -Pattern=\"^[a-z]+$\" -Reason=\"Lowercase letters only\"",
	},
}

// NamedAnnotationSchema defines the schema for //meta::named annotations
var NamedAnnotationSchema = AnnotationSchema{
	Type:        NamedAnnotation,
	Description: "Overrides the display name of a type, member or parameter",
	Targets:     AnyTarget,
	Positional:  []string{"Value"},
	Parameters: map[string]ParameterSpec{
		"Value": textParam("Display name"),
	},
	Examples: []string{"//meta::named \"Total Amount\""},
}

// DescribedAnnotationSchema defines the schema for //meta::described annotations
var DescribedAnnotationSchema = AnnotationSchema{
	Type:        DescribedAnnotation,
	Description: "Adds a description to a type, member or parameter",
	Targets:     AnyTarget,
	Positional:  []string{"Value"},
	Parameters: map[string]ParameterSpec{
		"Value": textParam("Description text"),
	},
	Examples: []string{"//meta::described \"Amount due in cents\""},
}

// RolesAnnotationSchema defines the schema for //meta::roles annotations
var RolesAnnotationSchema = AnnotationSchema{
	Type:        RolesAnnotation,
	Description: "Restricts viewing and using a member to subjects holding one of the roles",
	Targets:     MemberTargets,
	Parameters: map[string]ParameterSpec{
		"View": rolesParam("Roles allowed to see the member"),
		"Use":  rolesParam("Roles allowed to change or invoke the member"),
	},
	Validators: []CustomValidator{
		func(a *ParsedAnnotation) error {
			if !a.Has("View") && !a.Has("Use") {
				return fmt.Errorf("roles annotation requires -View or -Use")
			}
			return nil
		},
	},
	Examples: []string{
		"//meta::roles -View=clerk,admin -Use=admin",
		"//meta::roles -Use=admin",
	},
}

// PropertyAnnotationSchema defines the schema for //meta::property annotations
var PropertyAnnotationSchema = AnnotationSchema{
	Type:        PropertyAnnotation,
	Description: "Exposes a getter method as a property",
	Targets:     MethodTarget,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//meta::property"},
}

// CollectionAnnotationSchema defines the schema for //meta::collection annotations
var CollectionAnnotationSchema = AnnotationSchema{
	Type:        CollectionAnnotation,
	Description: "Exposes a field or getter method as a collection",
	Targets:     MemberTargets,
	Parameters: map[string]ParameterSpec{
		"TypeOf": {Type: StringType, Description: "Element type when it cannot be inferred"},
	},
	Examples: []string{"//meta::collection", "//meta::collection -TypeOf=demo.Line"},
}

// ActionAnnotationSchema defines the schema for //meta::action annotations
var ActionAnnotationSchema = AnnotationSchema{
	Type:        ActionAnnotation,
	Description: "Declares a method as an action and sets its semantics",
	Targets:     MethodTarget,
	Parameters: map[string]ParameterSpec{
		"Semantics": {
			Type:         StringType,
			DefaultValue: "non-idempotent",
			Description:  "One of safe, idempotent, non-idempotent",
			Validator:    semantics,
		},
		"Event": {Type: StringType, Description: "Topic of the domain events published while invoking"},
	},
	Examples: []string{
		"//meta::action",
		"//meta::action -Semantics=safe",
		"//meta::action -Event=InvoicePaid",
	},
}

// EventAnnotationSchema defines the schema for //meta::event annotations
var EventAnnotationSchema = AnnotationSchema{
	Type:        EventAnnotation,
	Description: "Publishes domain events under a topic when a property is changed or an action invoked",
	Targets:     MemberTargets,
	Positional:  []string{"Name"},
	Parameters: map[string]ParameterSpec{
		"Name": textParam("Event topic"),
	},
	Examples: []string{"//meta::event AmountChanged"},
}

// ProgrammaticAnnotationSchema defines the schema for //meta::programmatic annotations
var ProgrammaticAnnotationSchema = AnnotationSchema{
	Type:        ProgrammaticAnnotation,
	Description: "Excludes a member from the metamodel",
	Targets:     MemberTargets,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//meta::programmatic"},
}

// TitleAnnotationSchema defines the schema for //meta::title annotations
var TitleAnnotationSchema = AnnotationSchema{
	Type:        TitleAnnotation,
	Description: "Contributes a property value to the title of its object",
	Targets:     FieldTarget | MethodTarget,
	Parameters: map[string]ParameterSpec{
		"Sequence": {Type: IntType, DefaultValue: 1, Description: "Position within the title"},
	},
	Examples: []string{"//meta::title", "//meta::title -Sequence=2"},
}

// OrderAnnotationSchema defines the schema for //meta::order annotations
var OrderAnnotationSchema = AnnotationSchema{
	Type:        OrderAnnotation,
	Description: "Positions a member relative to the others",
	Targets:     MemberTargets,
	Positional:  []string{"Sequence"},
	Parameters: map[string]ParameterSpec{
		"Sequence": {
			Type:        StringType,
			Required:    true,
			Description: "Dot separated sequence, e.g. 1.2",
			Validator:   sequence,
		},
	},
	Examples: []string{"//meta::order 1.2", "//meta::order -Sequence=3"},
}

// ImmutableAnnotationSchema defines the schema for //meta::immutable annotations
var ImmutableAnnotationSchema = AnnotationSchema{
	Type:        ImmutableAnnotation,
	Description: "Disables every property of a type",
	Targets:     TypeTarget,
	Positional:  []string{"Reason"},
	Parameters: map[string]ParameterSpec{
		"Reason": reasonParam("Immutable"),
	},
	Examples: []string{"//meta::immutable"},
}

// ValueAnnotationSchema defines the schema for //meta::value annotations
var ValueAnnotationSchema = AnnotationSchema{
	Type:        ValueAnnotation,
	Description: "Marks a type as a value: it is referenced by properties and parameters but never introspected",
	Targets:     TypeTarget,
	Parameters: map[string]ParameterSpec{
		"Named":     {Type: StringType, Description: "Display name of the type"},
		"Described": {Type: StringType, Description: "Description of the type"},
	},
	Examples: []string{
		"//meta::value",
		"//meta::value -Named=\"Money\"",
	},
}

// BuiltinSchemas returns every built-in schema
func BuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ObjectAnnotationSchema,
		HiddenAnnotationSchema,
		DisabledAnnotationSchema,
		MandatoryAnnotationSchema,
		OptionalAnnotationSchema,
		MaxLengthAnnotationSchema,
		RegexAnnotationSchema,
		NamedAnnotationSchema,
		DescribedAnnotationSchema,
		RolesAnnotationSchema,
		PropertyAnnotationSchema,
		CollectionAnnotationSchema,
		ActionAnnotationSchema,
		EventAnnotationSchema,
		ProgrammaticAnnotationSchema,
		TitleAnnotationSchema,
		OrderAnnotationSchema,
		ImmutableAnnotationSchema,
		ValueAnnotationSchema,
	}
}
