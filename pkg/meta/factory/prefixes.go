package factory

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Supporting method prefixes
const (
	HidePrefix     = "Hide"
	DisablePrefix  = "Disable"
	ValidatePrefix = "Validate"
	DefaultPrefix  = "Default"
	ChoicesPrefix  = "Choices"
	SetPrefix      = "Set"
)

// SupportingPrefixes are the prefixes of methods that support another member
// rather than being actions themselves
var SupportingPrefixes = []string{HidePrefix, DisablePrefix, ValidatePrefix, DefaultPrefix, ChoicesPrefix}

// SupportingPrefix returns the supporting prefix of name. "Validate" alone or
// "Hideous" are not prefixed: the prefix must be followed by an upper case
// letter or a digit.
func SupportingPrefix(name string) (string, bool) {
	for _, prefix := range SupportingPrefixes {
		if hasPrefix(name, prefix) {
			return prefix, true
		}
	}
	return "", false
}

func hasPrefix(name, prefix string) bool {
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[len(prefix):])
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// SupportingName returns the supporting method name for a member, e.g. HideTotal
func SupportingName(prefix, member string) string {
	return prefix + member
}

// ParameterSupportingName returns the supporting method name for the index-th
// parameter of an action, e.g. Validate0Pay
func ParameterSupportingName(prefix string, index int, action string) string {
	return prefix + strconv.Itoa(index) + action
}
