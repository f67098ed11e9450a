package transform

import (
	"reflect"
	"testing"
)

// S1: {object:{baz:'/foo'}} on {foo:'bar'} -> {baz:'bar'}.
func TestScenario_ObjectShorthandGet(t *testing.T) {
	tr := New(Template{
		{Operator: "object", Arg: map[string]any{"baz": "/foo"}},
	}, DialectPointer)
	out, err := tr.Transform(map[string]any{"foo": "bar"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := map[string]any{"baz": "bar"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Transform = %#v, want %#v", out, want)
	}
}

// S2: {get:'/unknown', hash:{algorithm:'md5'}} on {} -> null (chain bails on
// the first null result).
func TestScenario_ChainBailsOnNull(t *testing.T) {
	tr := New(Template{
		{Operator: "get", Arg: "/unknown"},
		{Operator: "hash", Arg: map[string]any{"algorithm": "md5"}},
	}, DialectPointer)
	out, err := tr.Transform(map[string]any{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != nil {
		t.Fatalf("Transform = %#v, want nil", out)
	}
}

func TestTransform_NullInputShortCircuits(t *testing.T) {
	tr := New(Template{{Operator: "static", Arg: "x"}}, DialectPointer)
	out, err := tr.Transform(nil)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != nil {
		t.Fatalf("Transform(nil) = %#v, want nil", out)
	}
}

func TestTransform_UnknownOperatorFailsFast(t *testing.T) {
	tr := New(Template{{Operator: "bogus", Arg: nil}}, DialectPointer)
	_, err := tr.Transform("x")
	if err == nil {
		t.Fatalf("expected an error for an unknown operator")
	}
}

func TestTransform_DialectsAreNotMerged(t *testing.T) {
	tr := New(Template{{Operator: "single", Arg: "$.foo"}}, DialectPointer)
	if _, err := tr.Transform(map[string]any{"foo": "bar"}); err == nil {
		t.Fatalf("expected single to be rejected under the pointer dialect")
	}

	tr2 := New(Template{{Operator: "get", Arg: "/foo"}}, DialectJSONPath)
	if _, err := tr2.Transform(map[string]any{"foo": "bar"}); err == nil {
		t.Fatalf("expected get to be rejected under the legacy dialect")
	}
}

func TestTransform_JSONPathDialect(t *testing.T) {
	tr := New(Template{{Operator: "single", Arg: "$.foo"}}, DialectJSONPath)
	out, err := tr.Transform(map[string]any{"foo": "bar"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != "bar" {
		t.Fatalf("Transform = %#v, want bar", out)
	}
}

func TestOpMap_AppliesToEachElement(t *testing.T) {
	tr := New(Template{{Operator: "map", Arg: "/name"}}, DialectPointer)
	out, err := tr.Transform([]any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := []any{"a", "b"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Transform = %#v, want %#v", out, want)
	}
}

func TestOpFilter_RemovesFalsy(t *testing.T) {
	tr := New(Template{{Operator: "filter", Arg: nil}}, DialectPointer)
	out, err := tr.Transform([]any{"a", "", "b", nil, false})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := []any{"a", "b"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Transform = %#v, want %#v", out, want)
	}
}

func TestOpCase_DefaultFallback(t *testing.T) {
	tr := New(Template{{Operator: "case", Arg: map[string]any{"a": 1.0, "default": -1.0}}}, DialectPointer)
	out, err := tr.Transform("z")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != -1.0 {
		t.Fatalf("Transform = %#v, want -1", out)
	}
}

func TestOpSubstring(t *testing.T) {
	start := 1
	length := 3
	tr := New(Template{{Operator: "substring", Arg: map[string]any{"start": float64(start), "length": float64(length)}}}, DialectPointer)
	out, err := tr.Transform("hello")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != "ell" {
		t.Fatalf("Transform = %#v, want ell", out)
	}
}

func TestOpHash_NonStringInputIsSerialized(t *testing.T) {
	tr := New(Template{{Operator: "hash", Arg: map[string]any{"algorithm": "sha256"}}}, DialectPointer)
	out, err := tr.Transform(map[string]any{"a": 1.0})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	s, ok := out.(string)
	if !ok || len(s) != 64 {
		t.Fatalf("Transform = %#v, want a 64-char hex digest", out)
	}
}

func TestOpPickOmit(t *testing.T) {
	doc := map[string]any{"a": 1.0, "b": 2.0, "c": 3.0}

	tr := New(Template{{Operator: "pick", Arg: []any{"a", "c"}}}, DialectPointer)
	out, err := tr.Transform(doc)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := map[string]any{"a": 1.0, "c": 3.0}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("pick = %#v, want %#v", out, want)
	}

	tr2 := New(Template{{Operator: "omit", Arg: []any{"b"}}}, DialectPointer)
	out2, err := tr2.Transform(doc)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want2 := map[string]any{"a": 1.0, "c": 3.0}
	if !reflect.DeepEqual(out2, want2) {
		t.Fatalf("omit = %#v, want %#v", out2, want2)
	}
}

func TestOpChangedAndChange(t *testing.T) {
	changedTr := New(Template{{Operator: "changed", Arg: map[string]any{
		"left":  map[string]any{"a": 1.0, "b": 2.0},
		"right": map[string]any{"a": 1.0, "b": 3.0, "c": 4.0},
	}}}, DialectPointer)
	diff, err := changedTr.Transform(map[string]any{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	wantDiff := map[string]any{"b": 3.0, "c": 4.0}
	if !reflect.DeepEqual(diff, wantDiff) {
		t.Fatalf("changed = %#v, want %#v", diff, wantDiff)
	}

	changeTr := New(Template{{Operator: "change", Arg: map[string]any{
		"target":  map[string]any{"a": 1.0, "b": 2.0},
		"changes": map[string]any{"b": nil, "c": 4.0},
	}}}, DialectPointer)
	out, err := changeTr.Transform(map[string]any{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := map[string]any{"a": 1.0, "c": 4.0}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("change = %#v, want %#v", out, want)
	}
}

func TestShorthand_ArrayOfSingleKeySteps(t *testing.T) {
	tmpl, err := Shorthand([]any{
		map[string]any{"get": "/value"},
		map[string]any{"upperCase": map[string]any{}},
	}, DialectPointer)
	if err != nil {
		t.Fatalf("Shorthand: %v", err)
	}
	out, err := New(tmpl, DialectPointer).Transform(map[string]any{"value": "ab"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != "AB" {
		t.Fatalf("Transform = %#v, want AB", out)
	}
}
