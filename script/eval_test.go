package script

import (
	"context"
	"testing"

	"github.com/mauritsl/restapir/transform"
)

func TestOpEval_RunsNestedScript(t *testing.T) {
	rt, err := NewRuntime(Definition{Name: "outer", MaxSteps: 10, Steps: []Step{{}}}, newTestStorage(), nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	arg := map[string]any{
		"name":     "inner",
		"maxSteps": 10,
		"steps": []any{
			map[string]any{"increment": "/n"},
		},
	}
	ex := &transform.Exec{}
	out, err := rt.opEval(ex, arg, map[string]any{"n": 1.0})
	if err != nil {
		t.Fatalf("opEval: %v", err)
	}
	state, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %#v", out)
	}
	if state["n"] != 2.0 {
		t.Fatalf("expected n=2, got %#v", state["n"])
	}
}

func TestOpScript_UnknownName(t *testing.T) {
	rt, err := NewRuntime(Definition{Name: "outer", MaxSteps: 10, Steps: []Step{{}}}, newTestStorage(), NewRegistry())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	ex := &transform.Exec{}
	if _, err := rt.opScript(ex, "missing", map[string]any{}); err == nil {
		t.Fatalf("expected an error for an unregistered script")
	}
}

func TestOpScript_RunsRegisteredScript(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Definition{
		Name:     "bump",
		MaxSteps: 10,
		Steps:    []Step{{Increment: "/n"}},
	})
	rt, err := NewRuntime(Definition{Name: "outer", MaxSteps: 10, Steps: []Step{{}}}, newTestStorage(), registry)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	ex := &transform.Exec{}
	out, err := rt.opScript(ex, "bump", map[string]any{"n": 1.0})
	if err != nil {
		t.Fatalf("opScript: %v", err)
	}
	state := out.(map[string]any)
	if state["n"] != 2.0 {
		t.Fatalf("expected n=2, got %#v", state["n"])
	}
}

func TestRuntime_ExtraOperatorsWireIntoTransform(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Definition{
		Name:     "bump",
		MaxSteps: 10,
		Steps:    []Step{{Increment: "/n"}},
	})
	rt, err := NewRuntime(Definition{
		Name:     "caller",
		MaxSteps: 10,
		Steps: []Step{
			{Transform: map[string]any{"script": "bump"}},
		},
	}, newTestStorage(), registry)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	out, err := rt.Run(context.Background(), nil, map[string]any{"n": 1.0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out["n"] != 2.0 {
		t.Fatalf("expected n=2, got %#v", out["n"])
	}
}
