package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// Prefix introduces an annotation inside a Go comment
const Prefix = "meta::"

// annotationLine is the root of the grammar: one or more annotations separated by semicolons
type annotationLine struct {
	Prefix  bool               `parser:"@Prefix?"`
	Entries []*annotationEntry `parser:"@@ ( Semi @@? )*"`
}

// annotationEntry is a single annotation with its positional and named arguments
type annotationEntry struct {
	Pos    lexer.Position
	Name   string             `parser:"@Word"`
	Args   []string           `parser:"@( Word | String )*"`
	Params []*annotationParam `parser:"@@*"`
}

// annotationParam is a -Key or -Key=Value[,Value...] argument
type annotationParam struct {
	Key    string   `parser:"Dash @Word"`
	Assign bool     `parser:"( @Equals"`
	Values []string `parser:"  @( Word | String ) ( Comma @( Word | String ) )* )?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*meta::`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Word", Pattern: `[^\s,;="\-][^\s,;=]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses //meta:: comments and meta struct tags into typed annotations
type Parser struct {
	parser   *participle.Parser[annotationLine]
	registry *Registry
}

// NewParser creates a parser that validates against the registry
func NewParser(registry *Registry) *Parser {
	return &Parser{
		parser: participle.MustBuild[annotationLine](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line carries a meta annotation
func IsAnnotation(comment string) bool {
	s := strings.TrimSpace(comment)
	if !strings.HasPrefix(s, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(s[2:]), Prefix)
}

// ParseComment parses a //meta:: comment line
func (p *Parser) ParseComment(comment string, location SourceLocation) ([]*ParsedAnnotation, error) {
	if !IsAnnotation(comment) {
		return nil, &Error{
			Kind: SyntaxKind,
			Msg:  "annotation must start with //" + Prefix,
			Loc:  location,
			Hint: "Write annotations as //meta::name [arguments]",
		}
	}
	return p.parse(comment, location)
}

// ParseTag parses the value of a meta struct tag, e.g. "mandatory; maxlength 20"
func (p *Parser) ParseTag(tag string, location SourceLocation) ([]*ParsedAnnotation, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}
	return p.parse(tag, location)
}

// ParseDescriptors parses a struct tag straight into descriptor annotations
func (p *Parser) ParseDescriptors(tag string, location SourceLocation) (descriptor.Annotations, error) {
	parsed, err := p.ParseTag(tag, location)
	if err != nil {
		return nil, err
	}
	return ToDescriptors(parsed), nil
}

// ParseFor parses a struct tag written on target and drops annotations that
// may not be written there. Every problem is reported in the returned error.
func (p *Parser) ParseFor(tag string, location SourceLocation, target Target) (descriptor.Annotations, error) {
	parsed, err := p.ParseTag(tag, location)
	if err != nil {
		return nil, err
	}
	kept, err := p.FilterTargets(parsed, target)
	return ToDescriptors(kept), err
}

// FilterTargets keeps the annotations allowed on target and collects a
// TargetKind error for each one that is not
func (p *Parser) FilterTargets(parsed []*ParsedAnnotation, target Target) ([]*ParsedAnnotation, error) {
	errs := &ErrorList{}
	kept := make([]*ParsedAnnotation, 0, len(parsed))
	for _, a := range parsed {
		if err := p.CheckTarget(a, target); err != nil {
			errs.Add(err)
			continue
		}
		kept = append(kept, a)
	}
	return kept, errs.Err()
}

// ToDescriptors converts parsed annotations into descriptor annotations
func ToDescriptors(parsed []*ParsedAnnotation) descriptor.Annotations {
	out := make(descriptor.Annotations, 0, len(parsed))
	for _, a := range parsed {
		out = append(out, a.Descriptor())
	}
	return out
}

// CheckTarget verifies that the annotation may be written on the given element
func (p *Parser) CheckTarget(annotation *ParsedAnnotation, target Target) error {
	schema, ok := p.registry.Schema(annotation.Type)
	if !ok {
		return unknownAnnotation(annotation.Type.String(), annotation.Location)
	}
	if !schema.Targets.Allows(target) {
		return targetError(annotation.Type, target, schema.Targets, annotation.Location)
	}
	return nil
}

func (p *Parser) parse(input string, location SourceLocation) ([]*ParsedAnnotation, error) {
	line, err := p.parser.ParseString(location.File, input)
	if err != nil {
		loc := location
		msg := err.Error()
		var perr participle.Error
		if errors.As(err, &perr) {
			msg = perr.Message()
			loc.Column = location.Column + perr.Position().Column - 1
		}
		return nil, syntaxError(loc, msg, input)
	}

	errs := &ErrorList{}
	result := make([]*ParsedAnnotation, 0, len(line.Entries))
	for _, entry := range line.Entries {
		loc := location
		loc.Column = location.Column + entry.Pos.Column - 1
		annotation, entryErrs := p.build(entry, loc, input)
		errs.Errors = append(errs.Errors, entryErrs...)
		if annotation != nil && len(entryErrs) == 0 {
			result = append(result, annotation)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Parser) build(entry *annotationEntry, loc SourceLocation, raw string) (*ParsedAnnotation, []AnnotationError) {
	annotationType, err := ParseAnnotationType(strings.ToLower(entry.Name))
	if err != nil {
		return nil, []AnnotationError{unknownAnnotation(entry.Name, loc)}
	}
	schema, ok := p.registry.Schema(annotationType)
	if !ok {
		e := unknownAnnotation(entry.Name, loc)
		e.Hint = "Register a schema for the annotation before parsing"
		return nil, []AnnotationError{e}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]any),
		Location:   loc,
		Raw:        raw,
	}

	var errs []AnnotationError
	set := func(name string, spec ParameterSpec, values []string) {
		value, err := spec.Type.convert(values)
		if err != nil {
			e := paramError(annotationType, name, loc, "expected %s, got %s", spec.Type, strconv.Quote(strings.Join(values, ",")))
			if spec.Type == BoolType {
				e.Hint = "Use true or false"
			}
			errs = append(errs, e)
			return
		}
		parsed.Parameters[name] = value
	}

	for i, arg := range entry.Args {
		if i >= len(schema.Positional) {
			e := paramError(annotationType, "", loc, "takes at most %d positional argument(s), got %s", len(schema.Positional), strconv.Quote(arg))
			e.Hint = "Quote values that contain spaces"
			errs = append(errs, e)
			continue
		}
		name := schema.Positional[i]
		set(name, schema.Parameters[name], []string{arg})
	}

	for _, param := range entry.Params {
		name, known := schema.canonicalParameter(param.Key)
		switch {
		case !known:
			e := paramError(annotationType, "", loc, "unknown parameter '%s'", param.Key)
			e.Hint = schema.parameterHint()
			errs = append(errs, e)
			continue
		case parsed.Has(name):
			errs = append(errs, paramError(annotationType, name, loc, "given more than once"))
			continue
		}

		spec := schema.Parameters[name]
		if param.Assign {
			set(name, spec, param.Values)
			continue
		}
		switch {
		case spec.Type == BoolType:
			parsed.Parameters[name] = true
		case spec.DefaultValue != nil:
			parsed.Parameters[name] = spec.DefaultValue
		default:
			e := paramError(annotationType, name, loc, "flag without value, expected a %s", spec.Type)
			e.Hint = fmt.Sprintf("Write -%s=<value>", name)
			errs = append(errs, e)
		}
	}

	if len(errs) == 0 {
		errs = schema.check(parsed)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return parsed, nil
}
