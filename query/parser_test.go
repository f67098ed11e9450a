package query

import "testing"

func TestSplitMethod(t *testing.T) {
	cases := map[string]struct {
		op, entity string
	}{
		"User":         {"read", "User"},
		"listPost":     {"list", "Post"},
		"createPost":   {"create", "Post"},
		"deletePost":   {"remove", "Post"},
		"countComment": {"count", "Comment"},
	}
	for method, want := range cases {
		op, entity, err := SplitMethod(method)
		if err != nil {
			t.Fatalf("SplitMethod(%q): %v", method, err)
		}
		if op != want.op || entity != want.entity {
			t.Errorf("SplitMethod(%q) = (%q, %q), want (%q, %q)", method, op, entity, want.op, want.entity)
		}
	}
}

func TestSplitMethod_InvalidName(t *testing.T) {
	if _, _, err := SplitMethod("nowhere"); err == nil {
		t.Fatalf("expected an error for a name with no Entity part")
	}
}

func TestParse_BareTopLevelField(t *testing.T) {
	doc, err := Parse("User")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Selections) != 1 || doc.Selections[0].Method != "User" {
		t.Fatalf("Parse = %#v", doc.Selections)
	}
}

func TestParse_AliasedCallWithNestedFields(t *testing.T) {
	doc, err := Parse(`{ me: User { id name posts: listPost(authorId:"u1") { id title } } }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Selections) != 1 {
		t.Fatalf("expected 1 top-level selection, got %d", len(doc.Selections))
	}
	sel := doc.Selections[0]
	if sel.Alias != "me" || sel.Method != "User" {
		t.Fatalf("unexpected top selection: %#v", sel)
	}
	if len(sel.Selections) != 3 {
		t.Fatalf("expected 3 nested fields, got %d: %#v", len(sel.Selections), sel.Selections)
	}
	posts := sel.Selections[2]
	if posts.Alias != "posts" || posts.Method != "listPost" {
		t.Fatalf("unexpected nested selection: %#v", posts)
	}
	if posts.Args["authorId"] != "u1" {
		t.Fatalf("unexpected args: %#v", posts.Args)
	}
	if len(posts.Selections) != 2 {
		t.Fatalf("expected 2 sub-fields on posts, got %#v", posts.Selections)
	}
}

func TestSubstitute_Positional(t *testing.T) {
	out, err := Substitute(`{ readUser(id: ?) { id } }`, []any{"u1"})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	want := `{ readUser(id: "u1") { id } }`
	if out != want {
		t.Fatalf("Substitute = %q, want %q", out, want)
	}
}

func TestSubstitute_Named(t *testing.T) {
	out, err := Substitute(`{ readUser(id: $userId) { id } }`, map[string]any{"userId": "u2"})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	want := `{ readUser(id: "u2") { id } }`
	if out != want {
		t.Fatalf("Substitute = %q, want %q", out, want)
	}
}

func TestSubstitute_IgnoresPlaceholdersInsideStringLiterals(t *testing.T) {
	out, err := Substitute(`{ readUser(note: "cost is ?") { id } }`, []any{"unused"})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	want := `{ readUser(note: "cost is ?") { id } }`
	if out != want {
		t.Fatalf("Substitute = %q, want %q", out, want)
	}
}
