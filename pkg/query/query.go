// Package query evaluates expressions against a front matter preamble.
//
// Expressions use the expr language (github.com/expr-lang/expr). Top-level
// keys are variables; keys that are not identifiers are reachable through
// $env["pub-date"]. Missing keys evaluate to nil. Scalars carry their
// resolved types, so `draft == false` and `count > 2` compare as expected.
//
// A top-level key named like an expr builtin (count, len, map, ...) hides
// that builtin in documents that have the key, so `count + 1` reads the
// key. Two helpers walk dotted paths, with numeric segments indexing
// sequences:
//
//	path("author.links.0")   // value or nil
//	exists("author.name")    // bool
package query

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/vm"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// Errors returned by the evaluator.
var (
	ErrCompile = errors.New("invalid query")
	ErrEval    = errors.New("query failed")
	ErrNotBool = errors.New("query did not return a boolean")
)

// Program is a compiled expression, reusable across documents. Evaluations
// of one Program are serialized.
type Program struct {
	source string

	mu       sync.Mutex
	env      map[string]any         // environment of the running evaluation
	programs map[string]*vm.Program // keyed by the builtins a document hides
}

// Compile parses src once for repeated evaluation. A source that only
// type-checks once document keys hide builtins, such as `count + 1`, is
// accepted; it is checked again against each document in Eval.
func Compile(src string) (*Program, error) {
	p := &Program{source: src, programs: map[string]*vm.Program{}}

	program, err := expr.Compile(src, p.options()...)
	if err == nil {
		p.programs[""] = program

		return p, nil
	}

	opts := p.options()
	for _, name := range builtinWords(src) {
		opts = append(opts, expr.DisableBuiltin(name))
	}

	if _, retryErr := expr.Compile(src, opts...); retryErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	return p, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the source expression.
func (p *Program) String() string {
	return p.source
}

// Eval runs the program with preamble as the environment. The result is a
// plain Go value (nil, bool, int64, float64, string, []any, map[string]any,
// or whatever an expression builtin returns).
func (p *Program) Eval(preamble node.Mapping) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.env = Env(preamble)
	defer func() { p.env = nil }()

	program, err := p.programFor(p.env)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEval, p.source, err)
	}

	out, err := expr.Run(program, p.env)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEval, p.source, err)
	}

	return out, nil
}

// Match runs the program and requires a boolean result.
func (p *Program) Match(preamble node.Mapping) (bool, error) {
	out, err := p.Eval(preamble)
	if err != nil {
		return false, err
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s returned %T", ErrNotBool, p.source, out)
	}

	return matched, nil
}

// Eval compiles src and evaluates it against n, which must be a mapping.
func Eval(n node.Node, src string) (any, error) {
	p, err := Compile(src)
	if err != nil {
		return nil, err
	}

	return p.Eval(n.Mapping())
}

// Match compiles src and reports whether it holds for n.
func Match(n node.Node, src string) (bool, error) {
	p, err := Compile(src)
	if err != nil {
		return false, err
	}

	return p.Match(n.Mapping())
}

// Env converts a preamble to the expression environment.
func Env(preamble node.Mapping) map[string]any {
	env, _ := node.FromMapping(preamble).Interface().(map[string]any)
	if env == nil {
		env = map[string]any{}
	}

	return env
}

// programFor returns the program to run against env. Keys that share a
// builtin's name need a build with that builtin disabled, so they resolve
// to the document value.
func (p *Program) programFor(env map[string]any) (*vm.Program, error) {
	var hidden []string

	for key := range env {
		if _, ok := builtin.Index[key]; ok {
			hidden = append(hidden, key)
		}
	}

	slices.Sort(hidden)
	cacheKey := strings.Join(hidden, ",")

	if program, ok := p.programs[cacheKey]; ok {
		return program, nil
	}

	opts := p.options()
	for _, name := range hidden {
		opts = append(opts, expr.DisableBuiltin(name))
	}

	program, err := expr.Compile(p.source, opts...)
	if err != nil {
		return nil, err
	}

	p.programs[cacheKey] = program

	return program, nil
}

// builtinWords returns the builtin names that appear as words in src.
func builtinWords(src string) []string {
	var names []string

	words := strings.FieldsFunc(src, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		if _, ok := builtin.Index[w]; ok && !slices.Contains(names, w) {
			names = append(names, w)
		}
	}

	return names
}

func (p *Program) options() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("path", func(params ...any) (any, error) {
			v, _ := lookup(p.env, params[0].(string))

			return v, nil
		},
			new(func(string) any)),
		expr.Function("exists", func(params ...any) (any, error) {
			_, ok := lookup(p.env, params[0].(string))

			return ok, nil
		},
			new(func(string) bool)),
	}
}

// lookup walks a dotted path through maps and slices.
func lookup(root map[string]any, path string) (any, bool) {
	var cur any = root

	for _, seg := range strings.Split(path, ".") {
		switch typed := cur.(type) {
		case map[string]any:
			v, ok := typed[seg]
			if !ok {
				return nil, false
			}

			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(typed) {
				return nil, false
			}

			cur = typed[i]
		default:
			return nil, false
		}
	}

	return cur, true
}
