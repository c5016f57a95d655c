// Package schema validates front matter against a JSON Schema subset and
// decides which schema applies to a document.
//
// Supported keywords: type, required, properties, additionalProperties,
// items, enum, minItems, maxItems, pattern. Other keywords are accepted and
// ignored.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"
)

// Errors returned while loading schemas.
var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrSchemaRead    = errors.New("cannot read schema")
)

// Schema is one schema node.
type Schema struct {
	Type                 Types              `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Additional        `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`

	pattern *regexp.Regexp
}

// Types is the "type" keyword: one name or a list of names.
type Types []string

// UnmarshalJSON accepts "string" as well as ["string", "null"].
func (t *Types) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}

		*t = Types{one}

		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}

	*t = many

	return nil
}

// Additional is the "additionalProperties" keyword: a boolean or a schema.
type Additional struct {
	Allowed bool
	Schema  *Schema
}

// UnmarshalJSON accepts true, false or a schema object.
func (a *Additional) UnmarshalJSON(data []byte) error {
	var allowed bool
	if err := json.Unmarshal(data, &allowed); err == nil {
		*a = Additional{Allowed: allowed}

		return nil
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*a = Additional{Allowed: true, Schema: &s}

	return nil
}

var typeNames = map[string]bool{
	"null": true, "boolean": true, "integer": true, "number": true,
	"string": true, "array": true, "object": true,
}

// Parse decodes a schema document and compiles its patterns.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	if err := s.compile(""); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Schema) compile(at string) error {
	for _, name := range s.Type {
		if !typeNames[name] {
			return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidSchema, pointerOrRoot(at), name)
		}
	}

	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: pattern: %w", ErrInvalidSchema, pointerOrRoot(at), err)
		}

		s.pattern = re
	}

	if s.MinItems != nil && *s.MinItems < 0 || s.MaxItems != nil && *s.MaxItems < 0 {
		return fmt.Errorf("%w: %s: negative item bound", ErrInvalidSchema, pointerOrRoot(at))
	}

	for name, sub := range s.Properties {
		if sub == nil {
			continue
		}

		if err := sub.compile(at + "/properties/" + escapePointer(name)); err != nil {
			return err
		}
	}

	if s.Items != nil {
		if err := s.Items.compile(at + "/items"); err != nil {
			return err
		}
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		if err := s.AdditionalProperties.Schema.compile(at + "/additionalProperties"); err != nil {
			return err
		}
	}

	return nil
}
