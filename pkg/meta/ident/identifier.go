package ident

import (
	"fmt"
	"strings"
)

// Type classifies what an Identifier points at
type Type int

const (
	ClassIdentifier Type = iota
	PropertyOrCollectionIdentifier
	ActionIdentifier
	ParameterIdentifier
)

// String returns the string representation of the identifier type
func (t Type) String() string {
	switch t {
	case ClassIdentifier:
		return "class"
	case PropertyOrCollectionIdentifier:
		return "property-or-collection"
	case ActionIdentifier:
		return "action"
	case ParameterIdentifier:
		return "parameter"
	default:
		return "unknown"
	}
}

// Identifier is the immutable identity of a type, member or action parameter.
// It is comparable and safe to use as a map key.
type Identifier struct {
	typ        Type
	className  string
	memberName string
	paramTypes string // joined with paramSep, kept as a string so the struct stays comparable
	paramIndex int
}

// paramSep never occurs in a printed Go type; struct and interface literals
// use both commas and semicolons
const paramSep = "\x00"

// ForClass creates the identifier of a type
func ForClass(className string) Identifier {
	return Identifier{typ: ClassIdentifier, className: className, paramIndex: -1}
}

// ForProperty creates the identifier of a property or collection
func ForProperty(className, memberName string) Identifier {
	return Identifier{
		typ:        PropertyOrCollectionIdentifier,
		className:  className,
		memberName: memberName,
		paramIndex: -1,
	}
}

// ForAction creates the identifier of an action with its parameter types
func ForAction(className, memberName string, paramTypes ...string) Identifier {
	return Identifier{
		typ:        ActionIdentifier,
		className:  className,
		memberName: memberName,
		paramTypes: strings.Join(paramTypes, paramSep),
		paramIndex: -1,
	}
}

// ForParameter creates the identifier of the index-th parameter of an action
func ForParameter(action Identifier, index int) Identifier {
	id := action
	id.typ = ParameterIdentifier
	id.paramIndex = index
	return id
}

// Type returns what the identifier points at
func (id Identifier) Type() Type { return id.typ }

// ClassName returns the owning type name
func (id Identifier) ClassName() string { return id.className }

// MemberName returns the member name, empty for class identifiers
func (id Identifier) MemberName() string { return id.memberName }

// ParameterTypes returns a copy of the action parameter types
func (id Identifier) ParameterTypes() []string {
	if id.paramTypes == "" {
		return nil
	}
	return strings.Split(id.paramTypes, paramSep)
}

// ParameterIndex returns the parameter index and whether the identifier has one
func (id Identifier) ParameterIndex() (int, bool) {
	if id.typ != ParameterIdentifier {
		return 0, false
	}
	return id.paramIndex, true
}

// IsZero reports whether the identifier was never initialised
func (id Identifier) IsZero() bool {
	return id.className == "" && id.memberName == ""
}

// MemberIdentifier returns the identifier of the owning member for a parameter,
// and the identifier itself otherwise
func (id Identifier) MemberIdentifier() Identifier {
	if id.typ != ParameterIdentifier {
		return id
	}
	id.typ = ActionIdentifier
	id.paramIndex = -1
	return id
}

// ClassIdentifier returns the identifier of the owning type
func (id Identifier) ClassIdentifier() Identifier {
	return ForClass(id.className)
}

// MemberNaturalName returns the member name split into words, "DueDate" becomes "Due Date"
func (id Identifier) MemberNaturalName() string {
	return NaturalName(id.memberName)
}

// String returns the full identity, e.g. "demo.Invoice#Pay(int,string)[0]"
func (id Identifier) String() string {
	var b strings.Builder
	b.WriteString(id.className)
	if id.typ == ClassIdentifier {
		return b.String()
	}
	b.WriteByte('#')
	b.WriteString(id.memberName)
	if id.typ == ActionIdentifier || id.typ == ParameterIdentifier {
		b.WriteByte('(')
		b.WriteString(strings.ReplaceAll(id.paramTypes, paramSep, ","))
		b.WriteByte(')')
	}
	if id.typ == ParameterIdentifier {
		fmt.Fprintf(&b, "[%d]", id.paramIndex)
	}
	return b.String()
}

// MarshalText encodes the identifier as its full identity
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// ShortString returns "Class#member" without parameter details
func (id Identifier) ShortString() string {
	if id.typ == ClassIdentifier {
		return id.className
	}
	return id.className + "#" + id.memberName
}

// NaturalName turns an exported Go name into words, keeping acronyms together
func NaturalName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && isUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && isLower(runes[i+1])
			if isLower(prev) || isDigit(prev) || (isUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		if i == 0 && isLower(r) {
			r = r - 'a' + 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
