package spec

import "strings"

// valueTypes are resolved to value specifications instead of being looked up
// in the descriptor source
var valueTypes = map[string]bool{
	"string": true, "bool": true, "byte": true, "rune": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"any": true, "interface{}": true, "interface {}": true,
	"time.Time": true, "time.Duration": true,
}

// IsValueType reports whether name resolves to a value specification: Go
// builtins, time values and composite type literals
func IsValueType(name string) bool {
	if valueTypes[name] {
		return true
	}
	for _, prefix := range []string{"[", "map[", "func(", "chan ", "chan<- ", "<-chan ", "struct{", "struct {", "interface{", "interface {"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
