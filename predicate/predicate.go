// Package predicate compiles the small access-predicate language Context
// uses to decide row- and field-level permissions: expressions over two
// variables, u (the caller's user record) and i (the item being accessed).
package predicate

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Evaluator holds a compiled predicate expression over u (user) and i
// (item), returning a boolean verdict.
type Evaluator struct {
	Expression string
	program    cel.Program
}

// NewEvaluator compiles expression, a CEL expression referencing u and i as
// map[string]any variables, and returns an Evaluator.
func NewEvaluator(expression string) (*Evaluator, error) {
	if expression == "" {
		return nil, fmt.Errorf("predicate: expression can't be empty")
	}

	env, err := cel.NewEnv(
		cel.Variable("u", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("i", cel.MapType(cel.StringType, cel.AnyType)),
	)
	if err != nil {
		return nil, fmt.Errorf("predicate: creating CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("predicate: compiling expression %q: %w", expression, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("predicate: building program: %w", err)
	}
	return &Evaluator{Expression: expression, program: prg}, nil
}

// Evaluate runs the compiled predicate against the given user and item maps
// and returns its boolean verdict. A nil user is presented to the
// expression as an empty map so predicates like `u.id == i.ownerId` fail
// closed rather than panicking.
func (e *Evaluator) Evaluate(user map[string]any, item map[string]any) (bool, error) {
	if user == nil {
		user = map[string]any{}
	}
	if item == nil {
		item = map[string]any{}
	}
	out, _, err := e.program.Eval(map[string]any{
		"u": user,
		"i": item,
	})
	if err != nil {
		return false, fmt.Errorf("predicate: evaluating %q: %w", e.Expression, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate: expression %q did not evaluate to a bool, got %T", e.Expression, out.Value())
	}
	return b, nil
}
