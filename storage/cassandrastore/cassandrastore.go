// Package cassandrastore adapts a Cassandra keyspace into a query.Model:
// each entity gets its own table of (id, data) rows, with data holding the
// row's JSON document. This trades Cassandra's column modeling for the
// schemaless flexibility the query layer's FieldSchema-driven models need.
package cassandrastore

import (
	"fmt"

	"github.com/gocql/gocql"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/cassandra"
	"github.com/mauritsl/restapir/query"
)

// Model is a Cassandra-backed query.Model storing one JSON document per row.
type Model struct {
	session  *gocql.Session
	keyspace string
	table    string
	name     string
	schema   map[string]query.FieldSchema
}

// NewModel ensures the entity's table exists and returns a Model over it.
func NewModel(conn *cassandra.Connection, name string, schema map[string]query.FieldSchema) (*Model, error) {
	m := &Model{
		session:  conn.Session,
		keyspace: conn.Keyspace,
		table:    tableName(name),
		name:     name,
		schema:   schema,
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s.%s (id text PRIMARY KEY, data text);",
		m.keyspace, m.table,
	)
	if err := m.session.Query(stmt).Exec(); err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: creating table for %q: %v", name, err)
	}
	return m, nil
}

func tableName(entity string) string {
	out := make([]rune, 0, len(entity)+4)
	for i, r := range entity {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

func (m *Model) Name() string                        { return m.name }
func (m *Model) Schema() map[string]query.FieldSchema { return m.schema }

func (m *Model) Execute(ctx *authctx.Context, operation string, params map[string]any, fields []string) (any, error) {
	switch operation {
	case "list":
		return m.list()
	case "read":
		return m.read(params)
	case "create":
		return m.upsert(params)
	case "update":
		return m.upsert(params)
	case "remove":
		return m.remove(params)
	case "count":
		return m.count()
	default:
		return nil, restapir.Newf(restapir.UnsupportedOperation, "cassandrastore: model %q does not support operation %q", m.name, operation)
	}
}

func (m *Model) list() (any, error) {
	iter := m.session.Query(fmt.Sprintf("SELECT data FROM %s.%s", m.keyspace, m.table)).Iter()
	var data string
	out := make([]any, 0, iter.NumRows())
	for iter.Scan(&data) {
		row, err := decodeRow(data)
		if err != nil {
			iter.Close()
			return nil, err
		}
		out = append(out, row)
	}
	if err := iter.Close(); err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: listing %q: %v", m.name, err)
	}
	return out, nil
}

func (m *Model) read(params map[string]any) (any, error) {
	id, _ := params["id"].(string)
	var data string
	err := m.session.Query(
		fmt.Sprintf("SELECT data FROM %s.%s WHERE id = ?", m.keyspace, m.table), id,
	).Scan(&data)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: reading %q: %v", m.name, err)
	}
	return decodeRow(data)
}

func (m *Model) upsert(params map[string]any) (any, error) {
	row := make(map[string]any, len(params))
	for k, v := range params {
		row[k] = v
	}
	id, _ := row["id"].(string)
	if id == "" {
		id = restapir.NewUUID().String()
		row["id"] = id
	}
	data, err := restapir.DefaultMarshaler.Marshal(row)
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: encoding %q row: %v", m.name, err)
	}
	err = m.session.Query(
		fmt.Sprintf("INSERT INTO %s.%s (id, data) VALUES (?, ?)", m.keyspace, m.table), id, string(data),
	).Exec()
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: writing %q row: %v", m.name, err)
	}
	return row, nil
}

func (m *Model) remove(params map[string]any) (any, error) {
	id, _ := params["id"].(string)
	existing, err := m.read(params)
	if err != nil || existing == nil {
		return existing, err
	}
	err = m.session.Query(
		fmt.Sprintf("DELETE FROM %s.%s WHERE id = ?", m.keyspace, m.table), id,
	).Exec()
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: removing %q: %v", m.name, err)
	}
	return existing, nil
}

func (m *Model) count() (any, error) {
	var n int64
	err := m.session.Query(fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", m.keyspace, m.table)).Scan(&n)
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: counting %q: %v", m.name, err)
	}
	return float64(n), nil
}

func decodeRow(data string) (map[string]any, error) {
	var row map[string]any
	if err := restapir.DefaultMarshaler.Unmarshal([]byte(data), &row); err != nil {
		return nil, restapir.Newf(restapir.Unknown, "cassandrastore: decoding row: %v", err)
	}
	return row, nil
}
