package query

import (
	"context"
	"testing"

	"github.com/mauritsl/restapir/authctx"
)

type fakeModel struct {
	name string
	rows map[string]map[string]any
}

func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) Schema() map[string]FieldSchema {
	if m.name == "Post" {
		return map[string]FieldSchema{"author": {References: "User"}}
	}
	return nil
}

func (m *fakeModel) Execute(ctx *authctx.Context, operation string, params map[string]any, fields []string) (any, error) {
	switch operation {
	case "list":
		out := make([]any, 0, len(m.rows))
		for _, row := range m.rows {
			out = append(out, row)
		}
		return out, nil
	default:
		id, _ := params["id"].(string)
		row, ok := m.rows[id]
		if !ok {
			return nil, nil
		}
		return row, nil
	}
}

func TestDispatch_SimpleRead(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeModel{name: "User", rows: map[string]map[string]any{
		"u1": {"id": "u1", "name": "Ada"},
	}})

	doc, err := Parse(`{ me: readUser(id:"u1") { id name } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := Dispatch(context.Background(), authctx.Admin(), doc, registry)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	row, ok := out["me"].(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %#v", out["me"])
	}
	if row["name"] != "Ada" {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestDispatch_UnknownEntity(t *testing.T) {
	registry := NewRegistry()
	doc, err := Parse(`{ x: readNowhere(id:"1") { id } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Dispatch(context.Background(), authctx.Admin(), doc, registry); err == nil {
		t.Fatalf("expected an UnknownEntity error")
	}
}

func TestDispatch_ReferenceExpansion(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeModel{name: "User", rows: map[string]map[string]any{
		"u1": {"id": "u1", "name": "Ada"},
	}})
	registry.Register(&fakeModel{name: "Post", rows: map[string]map[string]any{
		"p1": {"id": "p1", "title": "Hello", "author": "u1"},
	}})

	doc, err := Parse(`{ p: readPost(id:"p1") { id title author { id name } } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Dispatch(context.Background(), authctx.Admin(), doc, registry)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	row := out["p"].(map[string]any)
	author, ok := row["author"].(map[string]any)
	if !ok {
		t.Fatalf("expected an expanded author map, got %#v", row["author"])
	}
	if author["name"] != "Ada" {
		t.Fatalf("unexpected author: %#v", author)
	}
}

type fakeCreatableModel struct {
	fakeModel
}

func (m *fakeCreatableModel) Execute(ctx *authctx.Context, operation string, params map[string]any, fields []string) (any, error) {
	if operation != "create" {
		return m.fakeModel.Execute(ctx, operation, params, fields)
	}
	id := params["id"]
	if id == nil {
		id = "generated-id"
		params["id"] = id
	}
	m.rows[id.(string)] = params
	return params, nil
}

// S6: Basic auth admin:secret + {createUser(name:"Alice",mail:"alice@example.com",password:"Welcome!"){id}}
// succeeds and the response carries createUser.id. The query is dispatched
// directly in admin mode (authctx.Admin()), which is what an admin Basic login
// resolves to; the HTTP and Basic-auth layers are not exercised here.
func TestScenario_AdminCreate(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeCreatableModel{fakeModel{name: "User", rows: map[string]map[string]any{}}})

	doc, err := Parse(`{ createUser(name:"Alice", mail:"alice@example.com", password:"Welcome!") { id } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := Dispatch(context.Background(), authctx.Admin(), doc, registry)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	row, ok := out["createUser"].(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %#v", out["createUser"])
	}
	if row["id"] == nil {
		t.Fatalf("expected createUser.id to be set, got %#v", row)
	}
}

func TestDispatch_PermissionDenied(t *testing.T) {
	policy, err := authctx.NewPolicy([]authctx.AccessRule{
		{Model: "User", Operation: "read", Predicate: "false"},
	})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	ctx := authctx.New(policy, map[string]any{"id": "u1"})

	registry := NewRegistry()
	registry.Register(&fakeModel{name: "User", rows: map[string]map[string]any{
		"u1": {"id": "u1", "name": "Ada"},
	}})

	doc, err := Parse(`{ me: readUser(id:"u1") { id name } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Dispatch(context.Background(), ctx, doc, registry); err == nil {
		t.Fatalf("expected a PermissionDenied error")
	}
}
