// Package query implements the compact GraphQL-like query language:
// parsing, method-name resolution, and dispatch across models with access
// control, reference expansion and plugin field resolution.
package query

import "github.com/mauritsl/restapir/authctx"

// Model is implemented by every entity a query can target. Operation is one
// of list/read/create/update/remove/count (a "delete" method prefix arrives
// as "remove") or a model-specific extension;
// params carries the call's arguments and fields the requested field names.
type Model interface {
	Name() string
	Execute(ctx *authctx.Context, operation string, params map[string]any, fields []string) (any, error)
	// Schema returns the JSON-Schema-like field descriptors used for
	// reference expansion (a "references" key naming a target model) and
	// plugin-field detection (a "plugin" key naming a resolver).
	Schema() map[string]FieldSchema
}

// FieldSchema describes one field of a Model for the dispatcher's reference
// expansion and plugin resolution steps.
type FieldSchema struct {
	References string // target model name, or "" if this field isn't a reference
	Plugin     string // plugin resolver name, or "" if this field isn't a plugin field
}

// PluginResolver resolves one plugin field's value for a single row.
type PluginResolver func(ctx *authctx.Context, model Model, field string, id any) (any, error)
