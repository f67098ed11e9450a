package predicate

import "testing"

func TestEvaluate_OwnerMatch(t *testing.T) {
	e, err := NewEvaluator(`u["id"] == i["ownerId"]`)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(map[string]any{"id": "u1"}, map[string]any{"ownerId": "u1"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Fatalf("expected owner match to be true")
	}
}

func TestEvaluate_NoMatch(t *testing.T) {
	e, err := NewEvaluator(`u["id"] == i["ownerId"]`)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(map[string]any{"id": "u1"}, map[string]any{"ownerId": "u2"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ok {
		t.Fatalf("expected no match")
	}
}

func TestEvaluate_NilUserFailsClosed(t *testing.T) {
	e, err := NewEvaluator(`has(u.id) && u["id"] == i["ownerId"]`)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(nil, map[string]any{"ownerId": "u2"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ok {
		t.Fatalf("expected a nil user to fail the predicate")
	}
}

func TestNewEvaluator_EmptyExpression(t *testing.T) {
	if _, err := NewEvaluator(""); err == nil {
		t.Fatalf("expected an error for an empty expression")
	}
}

func TestNewEvaluator_InvalidExpression(t *testing.T) {
	if _, err := NewEvaluator("u[[["); err == nil {
		t.Fatalf("expected a compile error for invalid CEL")
	}
}
