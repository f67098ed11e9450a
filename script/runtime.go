package script

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/pointer"
	"github.com/mauritsl/restapir/storage"
	"github.com/mauritsl/restapir/transform"
)

// Runtime is a compiled Definition bound to a Storage backend and an
// optional Registry of named scripts (for the script() operator). At most
// one activation runs at a time; concurrent Run calls reject immediately
// rather than queueing.
type Runtime struct {
	def      Definition
	storage  storage.Storage
	registry *Registry
	labels   map[string]int
	running  atomic.Bool
}

// NewRuntime validates def and compiles its label table.
func NewRuntime(def Definition, store storage.Storage, registry *Registry) (*Runtime, error) {
	if def.Name == "" {
		return nil, restapir.New(restapir.MissingName, "script: name is required")
	}
	if len(def.Steps) == 0 {
		return nil, restapir.New(restapir.MissingSteps, "script: steps are required")
	}
	labels := make(map[string]int)
	for i, step := range def.Steps {
		if step.Label != "" {
			labels[step.Label] = i
		}
	}
	return &Runtime{def: def, storage: store, registry: registry, labels: labels}, nil
}

// Run executes the script once against input (or an empty state if input is
// nil), returning the final state.
func (r *Runtime) Run(ctx context.Context, authCtx *authctx.Context, input map[string]any) (map[string]any, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, restapir.Newf(restapir.ConcurrentRun, "script: %q is already running", r.def.Name)
	}
	defer r.running.Store(false)

	state := map[string]any{}
	if input != nil {
		state = cloneState(input)
	}

	pc := 0
	stepCount := 0
	maxSteps := r.def.maxSteps()

	for pc < len(r.def.Steps) {
		step := r.def.Steps[pc]
		stepCount++
		if stepCount > maxSteps {
			return nil, restapir.Newf(restapir.StepBudgetExceeded, "script: %q exceeded %d steps", r.def.Name, maxSteps)
		}

		nextPC := pc + 1

		if step.Query != nil {
			out, err := r.runQuery(ctx, authCtx, step.Query, state)
			if err != nil {
				return nil, err
			}
			state = writeResult(state, step.ResultProperty, out)
		}

		if step.Request != nil {
			out, err := r.runRequest(ctx, step.Request, state)
			if err != nil {
				return nil, err
			}
			state = writeResult(state, step.ResultProperty, out)
		}

		if step.Transform != nil {
			out, err := r.evalTransform(step.Transform, state)
			if err != nil {
				return nil, err
			}
			if m, ok := out.(map[string]any); ok {
				state = m
			} else {
				state = map[string]any{"value": out}
			}
		}

		if step.Increment != "" {
			state = incrementState(state, step.Increment)
		}

		if step.Jump != nil {
			taken, target, err := r.evalJump(step.Jump, state)
			if err != nil {
				return nil, err
			}
			if taken {
				idx, ok := r.labels[target]
				if !ok {
					return nil, restapir.Newf(restapir.ParseError, "script: jump to unknown label %q", target)
				}
				nextPC = idx
			}
		}

		if r.def.Delay > 0 {
			restapir.Sleep(ctx, r.def.Delay)
		}

		pc = nextPC
	}

	return state, nil
}

func cloneState(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// writeResult writes value under resultProperty (default "/result"; a
// pointer to "" means the state root).
func writeResult(state map[string]any, resultProperty *string, value any) map[string]any {
	ptr := "/result"
	if resultProperty != nil {
		ptr = *resultProperty
	}
	if ptr == "" {
		if m, ok := value.(map[string]any); ok {
			return m
		}
		return map[string]any{"value": value}
	}
	return pointer.Set(state, ptr, value).(map[string]any)
}

func incrementState(state map[string]any, ptr string) map[string]any {
	cur := pointer.Get(state, ptr)
	if cur == nil {
		return pointer.Set(state, ptr, 0.0).(map[string]any)
	}
	n := 0.0
	if f, ok := cur.(float64); ok {
		n = f
	}
	return pointer.Set(state, ptr, n+1).(map[string]any)
}

// evalTransform runs spec (shorthand-coercible) against state, with the
// extra eval/script operators wired in for nested scripts.
func (r *Runtime) evalTransform(spec any, state map[string]any) (any, error) {
	tmpl, err := transform.Shorthand(spec, transform.DialectPointer)
	if err != nil {
		return nil, err
	}
	tr := transform.NewWithOperators(tmpl, transform.DialectPointer, r.extraOperators())
	return tr.Transform(state)
}

func (r *Runtime) runQuery(ctx context.Context, authCtx *authctx.Context, q *QuerySubstep, state map[string]any) (any, error) {
	args, err := r.resolveArguments(q.Arguments, state)
	if err != nil {
		return nil, err
	}
	runCtx := authCtx
	if !q.RunInContext {
		runCtx = authctx.Admin()
	}
	return r.storage.Query(ctx, runCtx, q.Query, args)
}

func (r *Runtime) resolveArguments(spec any, state map[string]any) (any, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			val, err := r.evalTransform(item, state)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			val, err := r.evalTransform(item, state)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	default:
		return nil, restapir.Newf(restapir.InvalidOperatorArgument, "script: query arguments must be an array or mapping, got %T", spec)
	}
}

// evalJump resolves a Jump's Left/Right operands against state and compares
// them with Operator, returning whether the jump is taken and its target
// label. A string operand starting with "/" is a JSON pointer into state;
// any other value (including a non-pointer string) is a literal. Left and
// Right both default to true, and Operator defaults to "==", so a bare
// {To: "loop"} jump is unconditional.
func (r *Runtime) evalJump(j *Jump, state map[string]any) (bool, string, error) {
	left := resolveOperand(j.Left, state)
	right := resolveOperand(j.Right, state)
	taken, err := compareOperands(left, right, j.Operator)
	if err != nil {
		return false, "", err
	}
	return taken, j.To, nil
}

func resolveOperand(v any, state map[string]any) any {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.HasPrefix(s, "/") {
		return pointer.Get(state, s)
	}
	return v
}

// extraOperators returns the eval/script operator set bound to this
// Runtime's storage and script registry, used for every sub-transformation
// the runtime evaluates (step transforms, query arguments, request bodies).
func (r *Runtime) extraOperators() map[string]transform.OperatorFunc {
	return map[string]transform.OperatorFunc{
		"eval":   r.opEval,
		"script": r.opScript,
	}
}

func compareOperands(left, right any, operator string) (bool, error) {
	switch operator {
	case "", "==":
		return fmt.Sprint(left) == fmt.Sprint(right), nil
	case "===":
		return equalStrict(left, right), nil
	case "!=":
		return fmt.Sprint(left) != fmt.Sprint(right), nil
	case "!==":
		return !equalStrict(left, right), nil
	case "<", ">", "<=", ">=":
		lf, lok := toNumber(left)
		rf, rok := toNumber(right)
		if !lok || !rok {
			return false, nil
		}
		switch operator {
		case "<":
			return lf < rf, nil
		case ">":
			return lf > rf, nil
		case "<=":
			return lf <= rf, nil
		case ">=":
			return lf >= rf, nil
		}
	case "in":
		arr, ok := right.([]any)
		if !ok {
			return false, restapir.New(restapir.InvalidOperatorArgument, "script: jump operator 'in' requires an array right-hand side")
		}
		for _, item := range arr {
			if equalStrict(item, left) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func equalStrict(a, b any) bool {
	af, aok := toNumber(a)
	bf, bok := toNumber(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func toNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
