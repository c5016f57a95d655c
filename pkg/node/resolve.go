package node

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ScalarType is the YAML 1.2 core-schema type a scalar resolves to.
type ScalarType uint8

// ScalarType values.
const (
	TypeString ScalarType = iota
	TypeNull
	TypeBool
	TypeInt
	TypeFloat
	TypeTimestamp
)

func (t ScalarType) String() string {
	switch t {
	case TypeString:
		return "str"
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Tag returns the shorthand YAML tag for the type, e.g. "!!int".
func (t ScalarType) Tag() string {
	return "!!" + t.String()
}

var (
	decimalInt = regexp.MustCompile(`^[-+]?[0-9]+$`)
	octalInt   = regexp.MustCompile(`^0o[0-7]+$`)
	hexInt     = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	floatNum   = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9]+(\.[0-9]*)?)([eE][-+]?[0-9]+)?$`)
	dateLike   = regexp.MustCompile(`^[0-9]{4}-[0-9]{1,2}-[0-9]{1,2}`)
)

var timestampLayouts = []string{
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

// Type resolves the scalar's type. Quoted and block scalars are always
// strings; plain and unspecified scalars resolve from their text. Non-scalars
// report TypeString.
func (n Node) Type() ScalarType {
	if n.kind != KindScalar || n.style.Quoted() {
		return TypeString
	}

	return ResolvePlain(n.text)
}

// ResolvePlain returns the type text would have if written as a plain scalar.
func ResolvePlain(text string) ScalarType {
	switch text {
	case "", "~", "null", "Null", "NULL":
		return TypeNull
	case "true", "True", "TRUE", "false", "False", "FALSE":
		return TypeBool
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF", "-.inf", "-.Inf", "-.INF",
		".nan", ".NaN", ".NAN":
		return TypeFloat
	}

	if decimalInt.MatchString(text) || octalInt.MatchString(text) || hexInt.MatchString(text) {
		return TypeInt
	}

	if floatNum.MatchString(text) {
		return TypeFloat
	}

	if dateLike.MatchString(text) && parseTimestamp(text) {
		return TypeTimestamp
	}

	return TypeString
}

// AmbiguousPlain reports whether text must be quoted to stay a string: it
// resolves to a non-string type, or it is a YAML 1.1 boolean or number form
// that other parsers would read differently.
func AmbiguousPlain(text string) bool {
	if ResolvePlain(text) != TypeString {
		return true
	}

	switch text {
	case "y", "Y", "yes", "Yes", "YES", "n", "N", "no", "No", "NO",
		"on", "On", "ON", "off", "Off", "OFF", "=", "<<":
		return true
	}

	if strings.Contains(text, "_") {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil {
			return true
		}
	}

	if strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "+0b") || strings.HasPrefix(text, "-0b") {
		return true
	}

	return false
}

func parseTimestamp(text string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return true
		}
	}

	return false
}

// Interface converts n to plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Timestamps stay strings. Aliases resolve
// against anchors defined anywhere in n; unresolvable or cyclic aliases
// become nil.
func (n Node) Interface() any {
	anchors := make(map[string]Node)
	n.collectAnchors(anchors)

	return n.toInterface(anchors, nil)
}

func (n Node) collectAnchors(anchors map[string]Node) {
	if n.anchor != "" {
		anchors[n.anchor] = n
	}

	switch n.kind {
	case KindSequence:
		for _, item := range n.items {
			item.collectAnchors(anchors)
		}
	case KindMapping:
		for _, p := range n.mapping.pairs {
			p.Key.collectAnchors(anchors)
			p.Value.collectAnchors(anchors)
		}
	}
}

func (n Node) toInterface(anchors map[string]Node, active []string) any {
	switch n.kind {
	case KindScalar:
		return n.scalarValue()
	case KindAlias:
		target, ok := anchors[n.text]
		if !ok || slices.Contains(active, n.text) {
			return nil
		}

		return target.toInterface(anchors, append(active, n.text))
	case KindSequence:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.toInterface(anchors, active)
		}

		return out
	case KindMapping:
		out := make(map[string]any, n.mapping.Len())
		for _, p := range n.mapping.pairs {
			out[p.Key.sortText()] = p.Value.toInterface(anchors, active)
		}

		return out
	default:
		return nil
	}
}

func (n Node) scalarValue() any {
	switch n.Type() {
	case TypeNull:
		return nil
	case TypeBool:
		return strings.EqualFold(n.text, "true")
	case TypeInt:
		if decimalInt.MatchString(n.text) {
			if v, err := strconv.ParseInt(n.text, 10, 64); err == nil {
				return v
			}

			f, _ := strconv.ParseFloat(n.text, 64)

			return f
		}

		v, err := strconv.ParseInt(n.text, 0, 64)
		if err != nil {
			return n.text
		}

		return v
	case TypeFloat:
		lower := strings.ToLower(n.text)
		switch {
		case strings.HasSuffix(lower, ".nan"):
			return math.NaN()
		case strings.HasSuffix(lower, ".inf"):
			if strings.HasPrefix(lower, "-") {
				return math.Inf(-1)
			}

			return math.Inf(1)
		}

		f, err := strconv.ParseFloat(n.text, 64)
		if err != nil {
			return n.text
		}

		return f
	default:
		return n.text
	}
}

// FromValue converts plain Go values into nodes. Maps are emitted with keys
// sorted so the result is deterministic. Strings that would resolve to a
// non-string type are double-quoted.
func FromValue(v any) Node {
	switch typed := v.(type) {
	case nil:
		return StyledScalar("null", StylePlain)
	case Node:
		return typed
	case bool:
		return StyledScalar(strconv.FormatBool(typed), StylePlain)
	case int:
		return StyledScalar(strconv.Itoa(typed), StylePlain)
	case int32:
		return StyledScalar(strconv.FormatInt(int64(typed), 10), StylePlain)
	case int64:
		return StyledScalar(strconv.FormatInt(typed, 10), StylePlain)
	case uint:
		return StyledScalar(strconv.FormatUint(uint64(typed), 10), StylePlain)
	case uint64:
		return StyledScalar(strconv.FormatUint(typed, 10), StylePlain)
	case float32:
		return StyledScalar(formatFloat(float64(typed)), StylePlain)
	case float64:
		return StyledScalar(formatFloat(typed), StylePlain)
	case string:
		if AmbiguousPlain(typed) {
			return StyledScalar(typed, StyleDoubleQuoted)
		}

		return Scalar(typed)
	case time.Time:
		return StyledScalar(typed.Format(time.RFC3339Nano), StylePlain)
	case []string:
		items := make([]Node, len(typed))
		for i, s := range typed {
			items[i] = FromValue(s)
		}

		return Sequence(items...)
	case []any:
		items := make([]Node, len(typed))
		for i, item := range typed {
			items[i] = FromValue(item)
		}

		return Sequence(items...)
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		var m Mapping
		for _, k := range keys {
			m.Set(Scalar(k), FromValue(typed[k]))
		}

		return FromMapping(m)
	default:
		return Scalar(fmt.Sprint(typed))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}

	return s
}
