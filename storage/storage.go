// Package storage declares the Storage interface the Script runtime and
// query boundary consume, with reference adapters exercising the
// dependency stack the rest of the engine does not itself need.
package storage

import (
	"context"

	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/query"
)

// Storage is the interface a Script's `query` substep and the HTTP
// boundary's /graphql handler both call through.
type Storage interface {
	// Query parses and dispatches queryString against the registered
	// models, substituting args (a positional slice or named mapping)
	// before parsing.
	Query(ctx context.Context, authCtx *authctx.Context, queryString string, args any) (map[string]any, error)
	// Model looks up a single registered model by entity name, for
	// callers (the HTTP file boundary, Script's non-query substeps) that
	// need direct CRUD access without going through the query language.
	Model(name string) (query.Model, bool)
	ModelsDir() string
	ScriptsDir() string
}
