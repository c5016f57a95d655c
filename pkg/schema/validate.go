package schema

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// Violation codes.
const (
	CodeInvalidType = "invalid_type"
	CodeRequired    = "required"
	CodeUnknownKey  = "unknown_key"
	CodeInvalidEnum = "invalid_enum"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodePattern     = "pattern"
)

// Violation is one place where a value breaks its schema.
type Violation struct {
	Path    string `json:"path"` // JSON Pointer, "" for the root
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return pointerOrRoot(v.Path) + ": " + v.Message
}

// Validate checks n against s. Scalars are checked with their resolved
// types and aliases are followed. A nil schema accepts everything.
func Validate(n node.Node, s *Schema) []Violation {
	if s == nil {
		return nil
	}

	var out []Violation

	s.validate(n.Interface(), "", &out)

	return out
}

func (s *Schema) validate(v any, at string, out *[]Violation) {
	if len(s.Type) > 0 && !slices.ContainsFunc(s.Type, func(name string) bool { return hasType(v, name) }) {
		*out = append(*out, Violation{
			Path:    at,
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("expected %s, got %s", strings.Join(s.Type, " or "), typeOf(v)),
		})

		return
	}

	if len(s.Enum) > 0 && !slices.ContainsFunc(s.Enum, func(e any) bool { return equalValues(e, v) }) {
		*out = append(*out, Violation{
			Path:    at,
			Code:    CodeInvalidEnum,
			Message: fmt.Sprintf("value %v is not one of %v", v, s.Enum),
		})
	}

	switch typed := v.(type) {
	case string:
		if s.pattern != nil && !s.pattern.MatchString(typed) {
			*out = append(*out, Violation{
				Path:    at,
				Code:    CodePattern,
				Message: fmt.Sprintf("%q does not match %q", typed, s.Pattern),
			})
		}
	case []any:
		s.validateArray(typed, at, out)
	case map[string]any:
		s.validateObject(typed, at, out)
	}
}

func (s *Schema) validateArray(items []any, at string, out *[]Violation) {
	if s.MinItems != nil && len(items) < *s.MinItems {
		*out = append(*out, Violation{
			Path:    at,
			Code:    CodeTooShort,
			Message: fmt.Sprintf("has %d items, want at least %d", len(items), *s.MinItems),
		})
	}

	if s.MaxItems != nil && len(items) > *s.MaxItems {
		*out = append(*out, Violation{
			Path:    at,
			Code:    CodeTooLong,
			Message: fmt.Sprintf("has %d items, want at most %d", len(items), *s.MaxItems),
		})
	}

	if s.Items == nil {
		return
	}

	for i, item := range items {
		s.Items.validate(item, at+"/"+strconv.Itoa(i), out)
	}
}

func (s *Schema) validateObject(obj map[string]any, at string, out *[]Violation) {
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			*out = append(*out, Violation{
				Path:    at + "/" + escapePointer(name),
				Code:    CodeRequired,
				Message: "required key is missing",
			})
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		child := at + "/" + escapePointer(k)

		if sub, ok := s.Properties[k]; ok {
			if sub != nil {
				sub.validate(obj[k], child, out)
			}

			continue
		}

		switch {
		case s.AdditionalProperties == nil:
		case s.AdditionalProperties.Schema != nil:
			s.AdditionalProperties.Schema.validate(obj[k], child, out)
		case !s.AdditionalProperties.Allowed:
			*out = append(*out, Violation{
				Path:    child,
				Code:    CodeUnknownKey,
				Message: "key is not allowed",
			})
		}
	}
}

func hasType(v any, name string) bool {
	switch name {
	case "integer":
		switch typed := v.(type) {
		case int64:
			return true
		case float64:
			return typed == math.Trunc(typed) && !math.IsInf(typed, 0)
		}

		return false
	case "number":
		switch v.(type) {
		case int64, float64:
			return true
		}

		return false
	default:
		return typeOf(v) == name
	}
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// equalValues compares a schema value with a document value, treating
// numbers by value.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	switch typed := v.(type) {
	case int64:
		return float64(typed)
	case int:
		return float64(typed)
	case uint64:
		return float64(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = normalize(item)
		}

		return out
	default:
		return v
	}
}

func escapePointer(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}

	return p
}
