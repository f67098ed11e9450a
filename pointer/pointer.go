// Package pointer implements RFC-6901-style JSON Pointer get/set over JSON
// value trees (map[string]any / []any / scalars), the component every other
// engine package builds on.
package pointer

import (
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// tokens splits a JSON pointer into its unescaped reference tokens. An empty
// pointer (or "/") yields the root. Token decoding (the "~1" -> "/" and
// "~0" -> "~" escapes, applied in that order per RFC 6901) is delegated to
// go-openapi/jsonpointer; only the map/array tree walk below is engine code,
// since that library's own Get/Set targets structs implementing
// JSONLookup/JSONSetable, not bare map[string]any/[]any trees.
func tokens(ptr string) []string {
	if ptr == "" || ptr == "/" {
		return nil
	}
	p, err := jsonpointer.New(ptr)
	if err != nil {
		// Fall back to a literal split; New only rejects pointers that
		// don't start with "/", which callers may still pass as a bare
		// field name shorthand elsewhere in the engine.
		return strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	}
	return p.DecodedTokens()
}

// Get resolves ptr against doc and returns the value found there, or nil if
// any segment is missing or descends into a nil value. An empty pointer
// returns doc itself.
func Get(doc any, ptr string) any {
	cur := doc
	for _, tok := range tokens(ptr) {
		if cur == nil {
			return nil
		}
		switch v := cur.(type) {
		case map[string]any:
			cur = v[tok]
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			cur = v[idx]
		default:
			return nil
		}
	}
	return cur
}

// Set writes value at ptr within doc, creating intermediate map[string]any
// nodes as needed, and returns the (possibly new) root document. An empty
// pointer replaces the root outright. Array segments index into existing
// arrays; Set does not grow arrays (an out-of-range array index is a no-op
// that returns doc unchanged), matching the spec's array-handling scope —
// only object traversal creates missing intermediates.
func Set(doc any, ptr string, value any) any {
	toks := tokens(ptr)
	if len(toks) == 0 {
		return value
	}
	if doc == nil {
		doc = map[string]any{}
	}
	root := doc
	setRec(&root, toks, value)
	return root
}

func setRec(node *any, toks []string, value any) {
	tok := toks[0]
	last := len(toks) == 1

	m, ok := (*node).(map[string]any)
	if !ok {
		if arr, isArr := (*node).([]any); isArr {
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(arr) {
				return
			}
			if last {
				arr[idx] = value
				return
			}
			child := arr[idx]
			setRec(&child, toks[1:], value)
			arr[idx] = child
			return
		}
		m = map[string]any{}
		*node = m
	}

	if last {
		m[tok] = value
		return
	}
	child, exists := m[tok]
	if !exists || child == nil {
		child = map[string]any{}
	}
	setRec(&child, toks[1:], value)
	m[tok] = child
}

// Valid reports whether ptr is a syntactically valid JSON Pointer: empty, or
// starting with "/".
func Valid(ptr string) bool {
	return ptr == "" || strings.HasPrefix(ptr, "/")
}
