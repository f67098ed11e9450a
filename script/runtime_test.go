package script

import (
	"context"
	"testing"

	"github.com/mauritsl/restapir/query"
	"github.com/mauritsl/restapir/storage/memory"
)

func newTestStorage() *memory.Storage {
	registry := query.NewRegistry()
	counters := memory.NewModel("Counter", nil)
	counters.Seed(map[string]any{"id": "c1", "value": 0.0})
	registry.Register(counters)
	return memory.New(registry)
}

func TestRuntime_ForLoop(t *testing.T) {
	def := Definition{
		Name:     "for-loop",
		MaxSteps: 100,
		Steps: []Step{
			{Label: "loop"},
			{
				Increment: "/count",
			},
			{
				Jump: &Jump{To: "loop", Left: "/count", Right: 5.0, Operator: "<"},
			},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["count"] != 5.0 {
		t.Fatalf("expected count=5, got %#v", out["count"])
	}
}

func TestRuntime_UnconditionalJump(t *testing.T) {
	def := Definition{
		Name:     "goto",
		MaxSteps: 10,
		Steps: []Step{
			{Jump: &Jump{To: "end"}},
			{Increment: "/never"},
			{Label: "end"},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := out["never"]; ok {
		t.Fatalf("expected the skipped step to never run, got %#v", out)
	}
}

func TestRuntime_StepBudgetExceeded(t *testing.T) {
	def := Definition{
		Name:     "infinite",
		MaxSteps: 5,
		Steps: []Step{
			{Label: "loop"},
			{Jump: &Jump{To: "loop"}},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if _, err := rt.Run(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected a step budget error")
	}
}

func TestRuntime_MissingNameAndSteps(t *testing.T) {
	if _, err := NewRuntime(Definition{Steps: []Step{{}}}, newTestStorage(), nil); err == nil {
		t.Fatalf("expected MissingName error")
	}
	if _, err := NewRuntime(Definition{Name: "x"}, newTestStorage(), nil); err == nil {
		t.Fatalf("expected MissingSteps error")
	}
}

func TestRuntime_Query(t *testing.T) {
	store := newTestStorage()
	def := Definition{
		Name:     "read-counter",
		MaxSteps: 10,
		Steps: []Step{
			{
				Query: &QuerySubstep{
					Query:     `{ counter: readCounter(id:$id) { id value } }`,
					Arguments: map[string]any{"id": "/id"},
				},
			},
		},
	}
	rt, err := NewRuntime(def, store, nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, map[string]any{"id": "c1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["result"] == nil {
		t.Fatalf("expected a result, got %#v", out)
	}
}

func TestRuntime_Transform(t *testing.T) {
	def := Definition{
		Name:     "double",
		MaxSteps: 10,
		Steps: []Step{
			{Transform: map[string]any{"object": map[string]any{"n": map[string]any{"get": "/n"}}}},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, map[string]any{"n": 42.0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["n"] != 42.0 {
		t.Fatalf("unexpected transform result: %#v", out)
	}
}

// S3: [label:start, increment:/i, jump{left:/i,op:'>=',right:/n,to:end},
// jump{to:start}, end] run with {n:10} -> state {i:10, n:10}.
func TestScenario_ForLoop(t *testing.T) {
	def := Definition{
		Name:     "s3-for-loop",
		MaxSteps: 100,
		Steps: []Step{
			{Label: "start"},
			{Increment: "/i"},
			{Jump: &Jump{Left: "/i", Operator: ">=", Right: "/n", To: "end"}},
			{Jump: &Jump{To: "start"}},
			{Label: "end"},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, map[string]any{"n": 10.0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["i"] != 10.0 || out["n"] != 10.0 {
		t.Fatalf("expected {i:10, n:10}, got %#v", out)
	}
}

// S4: [jump{to:last}, object{foo:'bar'}, last, object{foo:'/foo', bar:'baz'}]
// -> {foo:null, bar:'baz'}.
func TestScenario_UnconditionalJumpSkipsStep(t *testing.T) {
	def := Definition{
		Name:     "s4-unconditional-jump",
		MaxSteps: 10,
		Steps: []Step{
			{Jump: &Jump{To: "last"}},
			{Transform: map[string]any{"object": map[string]any{"foo": "bar"}}},
			{Label: "last"},
			{Transform: map[string]any{"object": map[string]any{"foo": "/foo", "bar": "baz"}}},
		},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["foo"] != nil || out["bar"] != "baz" {
		t.Fatalf("expected {foo:nil, bar:baz}, got %#v", out)
	}
}

func TestRuntime_ConcurrentRunRejected(t *testing.T) {
	def := Definition{
		Name:     "concurrent",
		MaxSteps: 10,
		Steps:    []Step{{}},
	}
	rt, err := NewRuntime(def, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if !rt.running.CompareAndSwap(false, true) {
		t.Fatalf("expected to set running flag")
	}
	defer rt.running.Store(false)
	if _, err := rt.Run(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected ConcurrentRun error")
	}
}
