package query

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
)

// Registry looks entities and plugin resolvers up by name for Dispatch.
type Registry struct {
	models  map[string]Model
	plugins map[string]PluginResolver
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model), plugins: make(map[string]PluginResolver)}
}

// Register adds a Model, keyed by its own Name().
func (r *Registry) Register(m Model) {
	r.models[m.Name()] = m
}

// RegisterPlugin adds a named plugin field resolver.
func (r *Registry) RegisterPlugin(name string, resolver PluginResolver) {
	r.plugins[name] = resolver
}

func (r *Registry) lookup(entity string) (Model, bool) {
	m, ok := r.models[entity]
	return m, ok
}

// Lookup exposes model resolution to callers outside the package (the
// Storage boundary's direct-CRUD file upload path).
func (r *Registry) Lookup(entity string) (Model, bool) {
	return r.lookup(entity)
}

// Dispatch executes every top-level selection in doc against registry,
// enforcing ctx's access rules, and returns one result keyed by alias.
func Dispatch(goCtx context.Context, ctx *authctx.Context, doc *Document, registry *Registry) (map[string]any, error) {
	runner := restapir.NewTaskRunner(goCtx, 0)
	results := make(map[string]any, len(doc.Selections))
	var mu taskResultGuard

	for _, sel := range doc.Selections {
		sel := sel
		runner.Go(func() error {
			out, err := dispatchOne(runner.GetContext(), ctx, sel, registry)
			if err != nil {
				return err
			}
			mu.set(results, sel.Alias, out)
			return nil
		})
	}
	if err := runner.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// taskResultGuard serializes writes into a shared map from concurrent
// dispatch goroutines.
type taskResultGuard struct{ mu sync.Mutex }

func (g *taskResultGuard) set(m map[string]any, key string, val any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m[key] = val
}

func (g *taskResultGuard) setLocked(f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f()
}

func dispatchOne(goCtx context.Context, ctx *authctx.Context, sel Selection, registry *Registry) (any, error) {
	operation, entity, err := SplitMethod(sel.Method)
	if err != nil {
		return nil, err
	}
	model, ok := registry.lookup(entity)
	if !ok {
		return nil, restapir.Newf(restapir.UnknownEntity, "query: unknown entity %q", entity)
	}

	params := sel.Args
	if params == nil {
		params = map[string]any{}
	}
	if operation == "read" && len(params) == 0 {
		if u := ctx.GetUser(); u != nil {
			if id, ok := u["id"]; ok {
				params = map[string]any{"id": id}
			}
		}
	}

	accessParams := params
	if operation != "list" && operation != "create" {
		accessParams = map[string]any{"id": params["id"]}
	}
	allowed, err := ctx.Access(entity, operation, accessParams, "")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, restapir.Newf(restapir.PermissionDenied, "query: access denied for %s on %s", operation, entity)
	}

	fieldNames := fieldNamesOf(sel.Selections)
	raw, err := model.Execute(ctx, operation, params, fieldNames)
	if err != nil {
		return nil, err
	}

	items, isArray := wrapItems(raw)
	out := make([]map[string]any, len(items))
	eg := &errgroup.Group{}
	for i, item := range items {
		i, item := i, item
		eg.Go(func() error {
			row, err := assembleRow(ctx, model, item, sel.Selections, registry)
			if err != nil {
				return err
			}
			out[i] = row
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if !isArray {
		if len(out) == 0 {
			return nil, nil
		}
		return out[0], nil
	}
	result := make([]any, len(out))
	for i, r := range out {
		result[i] = r
	}
	return result, nil
}

func fieldNamesOf(sels []Selection) []string {
	names := make([]string, len(sels))
	for i, s := range sels {
		names[i] = s.Method
	}
	sort.Strings(names)
	return names
}

func wrapItems(raw any) ([]map[string]any, bool) {
	switch v := raw.(type) {
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items, true
	case map[string]any:
		return []map[string]any{v}, false
	case nil:
		return nil, false
	default:
		return []map[string]any{{"value": v}}, false
	}
}

// assembleRow applies field-level access checks, reference expansion and
// plugin resolution to one row, with a single re-read of any field the
// model's initial Execute call left missing.
func assembleRow(ctx *authctx.Context, model Model, item map[string]any, sels []Selection, registry *Registry) (map[string]any, error) {
	schema := model.Schema()
	out := make(map[string]any, len(sels))
	var missing []string

	eg := &errgroup.Group{}
	var mu taskResultGuard
	for _, sub := range sels {
		sub := sub
		eg.Go(func() error {
			allowed, err := ctx.Access(model.Name(), "read", item, sub.Method)
			if err != nil {
				return err
			}
			if !allowed {
				return nil
			}

			fs := schema[sub.Method]
			val, present := item[sub.Method]

			switch {
			case fs.References != "":
				if !present || val == nil {
					return nil
				}
				id := val
				ref, ok := registry.lookup(fs.References)
				if !ok {
					return restapir.Newf(restapir.UnknownEntity, "query: reference to unknown entity %q", fs.References)
				}
				refOut, err := ref.Execute(ctx, "read", map[string]any{"id": id}, fieldNamesOf(sub.Selections))
				if err != nil {
					return err
				}
				refItem, _ := refOut.(map[string]any)
				if refItem == nil {
					mu.set(out, sub.Alias, nil)
					return nil
				}
				row, err := assembleRow(ctx, ref, refItem, sub.Selections, registry)
				if err != nil {
					return err
				}
				mu.set(out, sub.Alias, row)
				return nil

			case fs.Plugin != "":
				resolver, ok := registry.plugins[fs.Plugin]
				if !ok {
					return restapir.Newf(restapir.UnknownField, "query: unknown plugin %q for field %q", fs.Plugin, sub.Method)
				}
				id := item["id"]
				val, err := resolver(ctx, model, sub.Method, id)
				if err != nil {
					return err
				}
				mu.set(out, sub.Alias, val)
				return nil

			case present:
				mu.set(out, sub.Alias, val)
				return nil

			default:
				mu.setLocked(func() { missing = append(missing, sub.Method) })
				return nil
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		refreshed, err := model.Execute(ctx, "read", map[string]any{"id": item["id"]}, missing)
		if err != nil {
			return nil, err
		}
		refItem, _ := refreshed.(map[string]any)
		for _, name := range missing {
			if refItem != nil {
				out[aliasFor(sels, name)] = refItem[name]
			}
		}
	}

	return out, nil
}

func aliasFor(sels []Selection, method string) string {
	for _, s := range sels {
		if s.Method == method {
			return s.Alias
		}
	}
	return method
}
