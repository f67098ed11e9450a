// Package transform implements the engine's declarative Transformation
// chain: an ordered sequence of named operators applied to a value, each
// consuming the previous operator's output.
package transform

import (
	"github.com/mauritsl/restapir"
)

// Dialect selects which pointer/path operator family a Transformation
// accepts. The two families are never silently merged: a Transformation
// built with DialectPointer rejects single/multiple, and one built with
// DialectJSONPath rejects get.
type Dialect int

const (
	// DialectPointer is the current dialect: RFC-6901 JSON Pointers via get.
	DialectPointer Dialect = iota
	// DialectJSONPath is the legacy dialect: JSONPath via single/multiple.
	DialectJSONPath
)

// Step is one named operator invocation with its raw (JSON-shaped) argument.
type Step struct {
	Operator string
	Arg      any
}

// Template is an ordered chain of Steps. Order matters: operators execute in
// this order, each consuming the previous one's output.
type Template []Step

// Transformation is a compiled Template bound to a Dialect.
type Transformation struct {
	template Template
	dialect  Dialect
	extra    map[string]OperatorFunc
}

// New builds a Transformation from an explicit, already-ordered Template.
func New(template Template, dialect Dialect) *Transformation {
	return &Transformation{template: template, dialect: dialect}
}

// NewWithOperators builds a Transformation that additionally recognizes the
// given extra operators (checked before the dialect's registry), and
// propagates them into every nested sub-transformation it evaluates. The
// Script runtime uses this to wire eval/script back into the shared
// operator set without the transform package depending on script.
func NewWithOperators(template Template, dialect Dialect, extra map[string]OperatorFunc) *Transformation {
	return &Transformation{template: template, dialect: dialect, extra: extra}
}

// Compile parses a mapping (as produced by JSON-decoding an object, e.g.
// map[string]any together with a separately-preserved key order) is not
// enough on its own to preserve operator order, since Go maps are unordered.
// Callers that already hold an ordered Template should use New directly;
// Compile exists for the common case of a single-operator mapping with one
// key, where order is moot.
func Compile(spec map[string]any, dialect Dialect) (*Transformation, error) {
	if len(spec) != 1 {
		return nil, restapir.New(restapir.ParseError, "transform: a bare mapping template must have exactly one operator key; use an ordered Template for chains")
	}
	tmpl := make(Template, 0, 1)
	for k, v := range spec {
		tmpl = append(tmpl, Step{Operator: k, Arg: v})
	}
	return New(tmpl, dialect), nil
}

// Transform runs the chain against input, applying the template's null-bail
// semantics: a null input short-circuits to a null result, and any operator
// that returns null stops the remainder of the chain.
func (t *Transformation) Transform(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	cur := input
	ex := &Exec{dialect: t.dialect, extra: t.extra}
	for _, step := range t.template {
		h, ok := ex.lookup(step.Operator)
		if !ok {
			return nil, restapir.Newf(restapir.UnknownOperator, "transform: unknown operator %q", step.Operator).WithData(step.Operator)
		}
		out, err := h(ex, step.Arg, cur)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, nil
		}
		cur = out
	}
	return cur, nil
}

// Exec is the per-evaluation context handed to operator functions, carrying
// the dialect so nested sub-transformations (object, map, array, filter...)
// stay consistent with the parent chain.
type Exec struct {
	dialect Dialect
	extra   map[string]OperatorFunc
}

// EvalSub evaluates spec — itself possibly a shorthand string, array or
// mapping — as a sub-transformation against input, propagating any extra
// operators this Exec was built with.
func (e *Exec) EvalSub(spec any, input any) (any, error) {
	tmpl, err := Shorthand(spec, e.dialect)
	if err != nil {
		return nil, err
	}
	return NewWithOperators(tmpl, e.dialect, e.extra).Transform(input)
}

func (e *Exec) lookup(name string) (OperatorFunc, bool) {
	if e.extra != nil {
		if h, ok := e.extra[name]; ok {
			return h, true
		}
	}
	return lookupOperator(e.dialect, name)
}

// OperatorFunc implements one named operator. arg is the raw JSON-shaped
// argument for the step; input is the value flowing through the chain.
type OperatorFunc func(ex *Exec, arg any, input any) (any, error)

// decodeArg round-trips arg through the engine's Marshaler into out, letting
// operators accept struct-shaped arguments (e.g. {start, length}) without
// hand-rolling type assertions for every field.
func decodeArg(arg any, out any) error {
	if arg == nil {
		return nil
	}
	data, err := restapir.DefaultMarshaler.Marshal(arg)
	if err != nil {
		return restapir.Newf(restapir.InvalidOperatorArgument, "transform: encoding operator argument: %v", err)
	}
	if err := restapir.DefaultMarshaler.Unmarshal(data, out); err != nil {
		return restapir.Newf(restapir.InvalidOperatorArgument, "transform: decoding operator argument: %v", err)
	}
	return nil
}

func argError(operator string, format string, args ...any) error {
	return restapir.Newf(restapir.InvalidOperatorArgument, "transform: %s: "+format, append([]any{operator}, args...)...)
}
