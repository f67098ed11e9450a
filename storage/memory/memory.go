// Package memory is the in-memory reference Storage implementation used by
// the engine's own tests: no network, no persistence.
package memory

import (
	"context"
	"sync"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/query"
)

// Model is a generic, schema-described in-memory Model supporting the
// standard list/read/create/update/remove/count operations.
type Model struct {
	mu     sync.RWMutex
	name   string
	schema map[string]query.FieldSchema
	rows   map[string]map[string]any
}

// NewModel returns an empty in-memory Model named name with the given field
// schema (used for reference expansion and plugin field detection).
func NewModel(name string, schema map[string]query.FieldSchema) *Model {
	return &Model{name: name, schema: schema, rows: make(map[string]map[string]any)}
}

func (m *Model) Name() string                        { return m.name }
func (m *Model) Schema() map[string]query.FieldSchema { return m.schema }

// Seed inserts a row directly, bypassing access control, for test setup.
func (m *Model) Seed(row map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := row["id"].(string)
	if id == "" {
		id = restapir.NewUUID().String()
		row["id"] = id
	}
	m.rows[id] = row
}

func (m *Model) Execute(ctx *authctx.Context, operation string, params map[string]any, fields []string) (any, error) {
	switch operation {
	case "list":
		return m.list(), nil
	case "read":
		return m.read(params), nil
	case "create":
		return m.create(params), nil
	case "update":
		return m.update(params), nil
	case "remove":
		return m.remove(params), nil
	case "count":
		return m.count(), nil
	default:
		return nil, restapir.Newf(restapir.UnsupportedOperation, "memory: model %q does not support operation %q", m.name, operation)
	}
}

func (m *Model) list() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, cloneRow(row))
	}
	return out
}

func (m *Model) read(params map[string]any) any {
	id, _ := params["id"].(string)
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	return cloneRow(row)
}

func (m *Model) create(params map[string]any) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := cloneRow(params)
	id, _ := row["id"].(string)
	if id == "" {
		id = restapir.NewUUID().String()
		row["id"] = id
	}
	m.rows[id] = row
	return cloneRow(row)
}

func (m *Model) update(params map[string]any) any {
	id, _ := params["id"].(string)
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	for k, v := range params {
		row[k] = v
	}
	return cloneRow(row)
}

func (m *Model) remove(params map[string]any) any {
	id, _ := params["id"].(string)
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	delete(m.rows, id)
	return cloneRow(row)
}

func (m *Model) count() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(len(m.rows))
}

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Storage is the in-memory reference Storage implementation.
type Storage struct {
	registry   *query.Registry
	modelsDir  string
	scriptsDir string
}

// New builds a Storage around an already-populated query.Registry.
func New(registry *query.Registry) *Storage {
	return &Storage{registry: registry}
}

func (s *Storage) Query(ctx context.Context, authCtx *authctx.Context, queryString string, args any) (map[string]any, error) {
	substituted, err := query.Substitute(queryString, args)
	if err != nil {
		return nil, err
	}
	doc, err := query.Parse(substituted)
	if err != nil {
		return nil, err
	}
	return query.Dispatch(ctx, authCtx, doc, s.registry)
}

func (s *Storage) Model(name string) (query.Model, bool) {
	return s.registry.Lookup(name)
}

func (s *Storage) ModelsDir() string  { return s.modelsDir }
func (s *Storage) ScriptsDir() string { return s.scriptsDir }
