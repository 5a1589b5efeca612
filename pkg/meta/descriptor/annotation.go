package descriptor

import (
	"strconv"
	"strings"
)

// Annotation is one piece of declarative metadata attached to a type, member or parameter
type Annotation struct {
	Name   string
	Params map[string]string
}

// A creates an annotation from alternating key/value pairs
func A(name string, kv ...string) Annotation {
	a := Annotation{Name: name}
	if len(kv) > 0 {
		a.Params = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			a.Params[kv[i]] = kv[i+1]
		}
	}
	return a
}

// Has reports whether the parameter is present
func (a Annotation) Has(key string) bool {
	_, ok := a.Params[key]
	return ok
}

// String returns a string parameter value with optional default
func (a Annotation) String(key string, defaultValue ...string) string {
	if v, ok := a.Params[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// Bool returns a boolean parameter value with optional default
func (a Annotation) Bool(key string, defaultValue ...bool) bool {
	if v, ok := a.Params[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// Int returns an integer parameter value with optional default
func (a Annotation) Int(key string, defaultValue ...int) int {
	if v, ok := a.Params[key]; ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// Strings returns a comma separated parameter as a slice
func (a Annotation) Strings(key string) []string {
	v, ok := a.Params[key]
	if !ok || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Annotations is an ordered list of annotations
type Annotations []Annotation

// Get returns the first annotation with the name
func (as Annotations) Get(name string) (Annotation, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Has reports whether an annotation with the name is present
func (as Annotations) Has(name string) bool {
	_, ok := as.Get(name)
	return ok
}
